// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package command

import (
	"fmt"
	"strings"

	"github.com/jvecore/editorcore/internal/validate"
)

// Options controls how ValidateAndNormalize treats caller input.
type Options struct {
	ApplyDefaults  bool
	AssertsEnabled bool
	UIContext      bool
}

// ValidateAndNormalize checks params against the registered schema for
// commandName and returns a normalized, alias-resolved, default-applied
// copy (spec.md §4.4). Ephemeral keys (prefixed "__") pass through
// validation untouched but are stripped before the result is returned,
// since they are never part of the persisted record.
//
// When opts.AssertsEnabled, a validation failure panics instead of
// returning ok=false; callers that want a hard fail-fast (tests, batch
// replay) set this, while interactive callers leave it false to surface
// the message to the user.
func ValidateAndNormalize(commandName string, params map[string]any, opts Options) (ok bool, normalized map[string]any, errMsg string) {
	schema, found := Lookup(commandName)
	if !found {
		msg := fmt.Sprintf("unknown command type %q", commandName)
		if opts.AssertsEnabled {
			panic("command: " + msg)
		}
		return false, nil, msg
	}

	v := validate.New()
	working := map[string]any{}
	for k, val := range params {
		if strings.HasPrefix(k, "__") {
			continue
		}
		working[k] = val
	}

	resolveAliases(schema.Args, working)
	rejectUnknownKeys(v, schema.Args, working)
	out := applyRules(v, schema.Args, working, opts)
	checkRequiresAny(v, schema.RequiresAny, out)

	if err := v.Err(); err != nil {
		msg := err.Error()
		if opts.AssertsEnabled {
			panic("command: " + commandName + ": " + msg)
		}
		return false, nil, msg
	}

	return true, out, ""
}

// resolveAliases renames any alias key present in working to its
// canonical form, in place. If both the canonical key and an alias are
// present, the canonical value wins and the alias is dropped.
func resolveAliases(rules map[string]KeyRule, working map[string]any) {
	for canonical, rule := range rules {
		if _, hasCanonical := working[canonical]; hasCanonical {
			for _, alias := range rule.Aliases {
				delete(working, alias)
			}
			continue
		}
		for _, alias := range rule.Aliases {
			if v, ok := working[alias]; ok {
				working[canonical] = v
				delete(working, alias)
				break
			}
		}
	}
}

func rejectUnknownKeys(v *validate.Validator, rules map[string]KeyRule, working map[string]any) {
	for k := range working {
		if _, ok := rules[k]; !ok {
			v.AddError(k, "unknown parameter", nil)
		}
	}
}

// rejectUnknownTableKeys is rejectUnknownKeys for a table's nested
// fields, tolerating legacy key names (spec.md §4.4 accept_legacy_keys)
// that aren't part of the current field set.
func rejectUnknownTableKeys(v *validate.Validator, rules map[string]KeyRule, working map[string]any, legacy map[string]bool) {
	for k := range working {
		if _, ok := rules[k]; ok {
			continue
		}
		if legacy[k] {
			continue
		}
		v.AddError(k, "unknown parameter", nil)
	}
}

func applyRules(v *validate.Validator, rules map[string]KeyRule, working map[string]any, opts Options) map[string]any {
	out := make(map[string]any, len(rules))
	for key, rule := range rules {
		val, present := working[key]

		if !present {
			required := rule.Required || (rule.RequiredOutsideUIContext && !opts.UIContext)
			if required {
				v.AddError(key, "required parameter missing", nil)
				continue
			}
			if opts.ApplyDefaults && rule.Default != nil {
				out[key] = rule.Default
			}
			continue
		}

		if rule.EmptyAsNil {
			if s, isStr := val.(string); isStr && s == "" {
				val = nil
				present = false
			}
		}
		if val == nil {
			if opts.ApplyDefaults && rule.Default != nil {
				out[key] = rule.Default
			}
			continue
		}

		if !checkKind(key, rule.Kind, val, v) {
			continue
		}

		if len(rule.OneOf) > 0 && !oneOfContains(rule.OneOf, val) {
			v.AddError(key, fmt.Sprintf("value must be one of %v", rule.OneOf), val)
			continue
		}

		if rule.Kind == KindTable && len(rule.Fields) > 0 {
			table, _ := val.(map[string]any)
			normalizedTable := normalizeTable(v, key, rule, table, opts)
			out[key] = normalizedTable
			continue
		}

		out[key] = val
	}
	return out
}

func normalizeTable(v *validate.Validator, key string, rule KeyRule, table map[string]any, opts Options) map[string]any {
	working := map[string]any{}
	for k, val := range table {
		working[k] = val
	}
	resolveAliases(rule.Fields, working)

	prefixed := fmt.Sprintf("%s.", key)
	nested := validate.New()
	legacy := map[string]bool{}
	for _, k := range rule.AcceptLegacyKeys {
		legacy[k] = true
	}
	rejectUnknownTableKeys(nested, rule.Fields, working, legacy)
	normalized := applyRules(nested, rule.Fields, working, opts)
	for _, e := range nested.Errors() {
		v.AddError(prefixed+e.Field, e.Message, e.Value)
	}

	for _, required := range rule.RequiresFields {
		if _, ok := normalized[required]; !ok {
			v.AddError(key, fmt.Sprintf("missing required field %q", required), nil)
		}
	}
	return normalized
}

func checkKind(key string, kind Kind, val any, v *validate.Validator) bool {
	switch kind {
	case KindAny, "":
		return true
	case KindString:
		if _, ok := val.(string); !ok {
			v.AddError(key, "expected a string", val)
			return false
		}
	case KindNumber:
		switch val.(type) {
		case int, int64, float64, float32:
		default:
			v.AddError(key, "expected a number", val)
			return false
		}
	case KindBoolean:
		if _, ok := val.(bool); !ok {
			v.AddError(key, "expected a boolean", val)
			return false
		}
	case KindTable:
		if _, ok := val.(map[string]any); !ok {
			v.AddError(key, "expected a table", val)
			return false
		}
	}
	return true
}

func oneOfContains(allowed []any, val any) bool {
	for _, a := range allowed {
		if a == val {
			return true
		}
	}
	return false
}

// checkRequiresAny enforces cross-field rules of the form "at least one
// of these keys must be present" (spec.md §4.4).
func checkRequiresAny(v *validate.Validator, groups [][]string, normalized map[string]any) {
	for _, group := range groups {
		anyPresent := false
		for _, k := range group {
			if _, ok := normalized[k]; ok {
				anyPresent = true
				break
			}
		}
		if !anyPresent {
			v.AddError(strings.Join(group, "|"), "at least one of these parameters is required", nil)
		}
	}
}

// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

// Package validate is a small accumulating validation-error collector used
// by internal/command to check and normalize command arguments against a
// registered schema (spec.md §4.4).
package validate

import (
	"fmt"
	"strings"
)

// Error is one field-level validation failure.
type Error struct {
	Field   string
	Value   interface{}
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// Validator accumulates Errors as a schema walk proceeds, so every problem
// with a command's arguments is reported at once instead of failing on the
// first bad field.
type Validator struct {
	errors []Error
}

// ValidationError bundles the errors accumulated by a Validator.
type ValidationError struct {
	errors []Error
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{errors: make([]Error, 0)}
}

// AddError records one field-level failure.
func (v *Validator) AddError(field, message string, value interface{}) {
	v.errors = append(v.errors, Error{Field: field, Value: value, Message: message})
}

// IsValid reports whether no errors have been recorded.
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns every accumulated Error.
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated errors into a ValidationError, or nil if
// none were recorded.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}
	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)
	return ValidationError{errors: copied}
}

// Errors returns the individual Errors making up the failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}
	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}
	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Copyright (c) 2026 jvecore
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// SPDX-License-Identifier: MIT

package keymap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesBindingsTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.jvekeys")
	require.NoError(t, os.WriteFile(path, []byte(`
[bindings]
"cmd+z" = "Undo"
"cmd+shift+z" = "Redo"
`), 0o600))

	b, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	cmd, ok := b.Lookup("cmd+z")
	require.True(t, ok)
	require.Equal(t, "Undo", cmd)

	_, ok = b.Lookup("unbound")
	require.False(t, ok)
}

func TestLoad_RejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jvekeys"))
	require.Error(t, err)
}

func TestFromMap_BuildsLookupDirectly(t *testing.T) {
	b := FromMap(map[string]string{"space": "SetPlayhead"})
	cmd, ok := b.Lookup("space")
	require.True(t, ok)
	require.Equal(t, "SetPlayhead", cmd)
}

func TestWatcher_ReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.jvekeys")
	require.NoError(t, os.WriteFile(path, []byte(`[bindings]
"a" = "Nudge"
`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := NewWatcher(ctx, path)
	require.NoError(t, err)
	defer w.Close()

	cmd, ok := w.Current().Lookup("a")
	require.True(t, ok)
	require.Equal(t, "Nudge", cmd)

	require.NoError(t, os.WriteFile(path, []byte(`[bindings]
"a" = "Nudge"
"b" = "Split"
`), 0o600))

	require.Eventually(t, func() bool {
		_, ok := w.Current().Lookup("b")
		return ok
	}, 2*time.Second, 20*time.Millisecond)
}

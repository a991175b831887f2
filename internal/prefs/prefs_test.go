// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SHARED BEHAVIOUR
// =============================================================================

func testKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, found, err := kv.Get(ctx, "ai-theme")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "ai-theme", "true"))
	v, found, err := kv.Get(ctx, "ai-theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", v)

	require.NoError(t, kv.Set(ctx, "ai-theme", "false"))
	v, _, err = kv.Get(ctx, "ai-theme")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	require.NoError(t, kv.Close())
	_, _, err = kv.Get(ctx, "ai-theme")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, kv.Set(ctx, "ai-theme", "true"), ErrClosed)
}

func TestMemory(t *testing.T) {
	testKV(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	kv, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	testKV(t, kv)
}

// =============================================================================
// SQLITE
// =============================================================================

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := OpenSQLite(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "ai-theme", "true"))
	require.NoError(t, kv.Close())

	_, err = os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)

	kv, err = OpenSQLite(dir)
	require.NoError(t, err)
	defer kv.Close()

	v, found, err := kv.Get(ctx, "ai-theme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", v)
}

func TestSQLite_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "lumi")
	kv, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer kv.Close()
	assert.Equal(t, filepath.Join(dir, FileName), kv.Path())
}

func TestSQLite_DoubleClose(t *testing.T) {
	kv, err := OpenSQLite(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, kv.Close())
	assert.NoError(t, kv.Close())
}

// =============================================================================
// MEMORY
// =============================================================================

func TestMemory_FailWrites(t *testing.T) {
	boom := errors.New("disk full")
	kv := NewMemory()
	kv.FailWrites = boom

	assert.ErrorIs(t, kv.Set(context.Background(), "k", "v"), boom)
	_, found, err := kv.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, found)
}

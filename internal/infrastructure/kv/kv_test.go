package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "active_topic")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "active_topic", "useRef"))
	require.NoError(t, s.Set(ctx, "active_topic", "useMemoCallback"))

	v, err := s.Get(ctx, "active_topic")
	require.NoError(t, err)
	assert.Equal(t, "useMemoCallback", v)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	exercise(t, s)
	assert.NoError(t, s.Close())
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hookify.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	exercise(t, s)
	require.NoError(t, s.Close())

	// values survive a reopen
	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(context.Background(), "active_topic")
	require.NoError(t, err)
	assert.Equal(t, "useMemoCallback", v)
}

func TestOpen(t *testing.T) {
	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open("sqlite", "")
	assert.Error(t, err)

	_, err = Open("redis", "")
	assert.ErrorContains(t, err, "unknown store driver")
}

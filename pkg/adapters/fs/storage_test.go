package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/capsule/pkg/adapters/fs"
	"github.com/aretw0/capsule/pkg/core"
)

func newStorage(t *testing.T, cfg fs.Config) *fs.Storage {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = t.TempDir()
	}
	s := fs.NewStorage(cfg)
	require.NoError(t, s.Initialize(context.TODO()))
	return s
}

func TestStorage_GetAbsent(t *testing.T) {
	s := newStorage(t, fs.Config{})
	v, found, err := s.Get(context.TODO(), core.DefaultSlot)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
}

func TestStorage_SetGet(t *testing.T) {
	s := newStorage(t, fs.Config{})
	ctx := context.TODO()

	require.NoError(t, s.Set(ctx, core.DefaultSlot, `[{"message":"a"}]`))
	v, found, err := s.Get(ctx, core.DefaultSlot)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"message":"a"}]`, v)

	onDisk, err := os.ReadFile(filepath.Join(s.Path, "capsules.json"))
	require.NoError(t, err)
	assert.Equal(t, v, string(onDisk))

	require.NoError(t, s.Set(ctx, core.DefaultSlot, `[]`))
	v, _, err = s.Get(ctx, core.DefaultSlot)
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)
}

func TestStorage_InvalidKey(t *testing.T) {
	s := newStorage(t, fs.Config{})
	for _, key := range []string{"", "../escape", `a\b`, "nested/slot", "..", ".hidden", fs.TempFilePrefix + "x", "backup~"} {
		assert.Error(t, s.Set(context.TODO(), key, "[]"), "key %q", key)
		_, _, err := s.Get(context.TODO(), key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestStorage_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capsules.json"), []byte("[]"), 0644))

	s := newStorage(t, fs.Config{Path: dir, ReadOnly: true})
	v, found, err := s.Get(context.TODO(), core.DefaultSlot)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)

	err = s.Set(context.TODO(), core.DefaultSlot, `[{"message":"nope"}]`)
	assert.True(t, errors.Is(err, core.ErrReadOnly))
}

func TestStorage_Initialize(t *testing.T) {
	t.Run("Creates Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		s := fs.NewStorage(fs.Config{Path: dir})
		require.NoError(t, s.Initialize(context.TODO()))
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("MustExist Missing", func(t *testing.T) {
		s := fs.NewStorage(fs.Config{Path: filepath.Join(t.TempDir(), "missing"), MustExist: true})
		assert.Error(t, s.Initialize(context.TODO()))
	})

	t.Run("Path Is A File", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0644))
		s := fs.NewStorage(fs.Config{Path: file, MustExist: true})
		assert.Error(t, s.Initialize(context.TODO()))
	})
}

func TestStorage_WithService(t *testing.T) {
	dir := t.TempDir()
	ctx := context.TODO()

	svc := core.NewService(ctx, core.NewAdapter(newStorage(t, fs.Config{Path: dir}), "", nil))
	_, err := svc.Add(ctx, "Hello future", "2099-01-01")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Hello past", "2000-01-01")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAt(ctx, 0))

	// A second process opening the same directory sees the persisted state.
	reopened := core.NewService(ctx, core.NewAdapter(newStorage(t, fs.Config{Path: dir}), "", nil))
	list := reopened.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Hello past", list[0].Message)
}

func TestStorage_CorruptFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capsules.json"), []byte("not json"), 0644))

	svc := core.NewService(context.TODO(), core.NewAdapter(newStorage(t, fs.Config{Path: dir}), "", nil))
	assert.Equal(t, 0, svc.Len())
}

func TestStorage_State(t *testing.T) {
	s := newStorage(t, fs.Config{})
	require.NoError(t, s.Set(context.TODO(), core.DefaultSlot, "[]"))

	state, ok := s.State().(fs.StorageState)
	require.True(t, ok)
	assert.Equal(t, s.Path, state.Path)
	assert.Equal(t, 1, state.Writes)
	assert.NotNil(t, state.LastWrite)
	assert.False(t, state.WatcherActive)
	assert.Equal(t, "fs", s.ComponentType())
}

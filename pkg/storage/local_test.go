package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLocalReadWriteDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "clients/01A.yaml", []byte("id: 01A")))

	data, err := s.Read(ctx, "clients/01A.yaml")
	require.NoError(t, err)
	assert.Equal(t, "id: 01A", string(data))

	exists, err := s.Exists(ctx, "clients/01A.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "clients/01A.yaml"))

	exists, err = s.Exists(ctx, "clients/01A.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalReadMissingIsNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Read(context.Background(), "clients/missing.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalDeleteMissingIsNotFound(t *testing.T) {
	s := newTestStorage(t)

	err := s.Delete(context.Background(), "clients/missing.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalListOnlyFilesUnderPrefix(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "tasks/01A.yaml", []byte("a")))
	require.NoError(t, s.Write(ctx, "tasks/01B.yaml", []byte("b")))
	require.NoError(t, s.Write(ctx, "clients/01C.yaml", []byte("c")))

	paths, err := s.List(ctx, "tasks")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tasks/01A.yaml", "tasks/01B.yaml"}, paths)
}

func TestLocalListMissingPrefixIsEmpty(t *testing.T) {
	s := newTestStorage(t)

	paths, err := s.List(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocalWriteOverwrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "settings/app.yaml", []byte("v1")))
	require.NoError(t, s.Write(ctx, "settings/app.yaml", []byte("v2")))

	data, err := s.Read(ctx, "settings/app.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

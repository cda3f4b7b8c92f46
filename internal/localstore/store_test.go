package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()
	out := map[string]Store{}
	for _, b := range []string{BackendFile, BackendSQLite, BackendMemory} {
		s, err := Open(b, filepath.Join(dir, b))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		out[b] = s
	}
	return out
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "farmGameCart")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, "farmGameCart", []byte(`[{"id":"1","count":2}]`)))
			require.NoError(t, s.Put(ctx, "farmGameCart", []byte(`[]`)))

			got, err := s.Get(ctx, "farmGameCart")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "a/b key", []byte("v1")))

	again, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := again.Get(ctx, "a/b key")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("v1")))
	require.NoError(t, s.Close())

	again, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.Close() })

	got, err := again.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("cloud", t.TempDir())
	assert.Error(t, err)
}

package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk-news/kiosk/internal/storage"
)

func newStorage(t *testing.T) storage.Storage {
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func TestLite_SetGet(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, storage.TokenKey, []byte("jwt")))

	v, err := s.Get(ctx, storage.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("jwt"), v)

	// overwrite
	require.NoError(t, s.Set(ctx, storage.TokenKey, []byte("jwt2")))

	v, err = s.Get(ctx, storage.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("jwt2"), v)
}

func TestLite_Get_notFound(t *testing.T) {
	s := newStorage(t)

	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLite_Delete(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, storage.TokenKey, []byte("jwt")))
	require.NoError(t, s.Set(ctx, storage.UserKey, []byte(`{"_id":"1"}`)))

	require.NoError(t, s.Delete(ctx, storage.TokenKey, storage.UserKey))

	_, err := s.Get(ctx, storage.TokenKey)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	_, err = s.Get(ctx, storage.UserKey)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, s.Delete(ctx))
}

func TestLite_Ping(t *testing.T) {
	s := newStorage(t)

	require.NoError(t, s.Ping(context.Background()))
}

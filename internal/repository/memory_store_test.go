package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_MissingKey(t *testing.T) {
	store := NewMemoryStateStore()

	value, found, err := store.Get(context.Background(), "epiceats_cart")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestMemoryStateStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v1")))
	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", string(value))

	require.NoError(t, store.Delete(ctx, "k", "never-written"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStateStore_SetManyAndCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStateStore()

	input := []byte("token-1")
	require.NoError(t, store.SetMany(ctx, map[string][]byte{
		"epiceats_token": input,
		"epiceats_user":  []byte(`{"fullName":"Asha"}`),
	}))
	input[0] = 'X'

	value, found, err := store.Get(ctx, "epiceats_token")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "token-1", string(value))

	value[0] = 'Y'
	again, _, _ := store.Get(ctx, "epiceats_token")
	assert.Equal(t, "token-1", string(again))
}

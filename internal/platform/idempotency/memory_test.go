package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHashDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RequestHash([]byte("payload")), RequestHash([]byte("payload")))
	assert.NotEqual(t, RequestHash([]byte("payload")), RequestHash([]byte("other")))
}

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	ctx := context.Background()
	hash := RequestHash([]byte(`{"name":"Ada"}`))

	resp, err := store.Begin(ctx, "k1", hash, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, err = store.Begin(ctx, "k1", hash, time.Minute)
	assert.ErrorIs(t, err, ErrInProgress)

	_, err = store.Begin(ctx, "k1", RequestHash([]byte("other")), time.Minute)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, store.Complete(ctx, "k1", hash, Response{Status: 201, ContentType: "application/json", Body: []byte(`{}`)}, time.Minute))

	resp, err = store.Begin(ctx, "k1", hash, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.Status)
}

func TestMemoryStoreReleaseAndExpiry(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := store.Begin(ctx, "k1", "h", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k1"))

	resp, err := store.Begin(ctx, "k1", "h", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)

	now = now.Add(2 * time.Minute)
	resp, err = store.Begin(ctx, "k1", "different", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

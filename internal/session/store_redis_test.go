package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	rec := Record{ID: "sess-1", User: User{ID: "u1", Email: "a@example.com", IsAdmin: true}, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Put(ctx, rec, time.Minute))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, rec.User, got.User)
	assert.True(t, mr.Exists(sessionKeyPrefix+"sess-1"))

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreExpiresSessions(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, Record{ID: "sess-1", User: User{ID: "u1"}}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreStateIsSingleUse(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutState(ctx, "nonce", time.Minute))

	ok, err := store.ConsumeState(ctx, "nonce")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeState(ctx, "nonce")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "sess-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
)

func newRedisStore(t *testing.T, clock *fakeClock) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, Options{Now: clock.Now}), mr
}

func TestRedisStoreGetOrCreate(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store, mr := newRedisStore(t, clock)

	s, err := store.GetOrCreate(ctx, "call:CA1", "+15145551234")
	require.NoError(t, err)
	assert.Equal(t, "+15145551234", s.CallerPhone)
	assert.True(t, s.CreatedAt.Equal(clock.Now()))
	assert.True(t, mr.Exists(metaKey("call:CA1")))
	assert.Equal(t, DefaultMaxAge, mr.TTL(metaKey("call:CA1")))

	clock.Advance(time.Minute)
	again, err := store.GetOrCreate(ctx, "call:CA1", "other")
	require.NoError(t, err)
	assert.True(t, again.CreatedAt.Equal(s.CreatedAt))
	assert.Equal(t, "+15145551234", again.CallerPhone)
}

func TestRedisStoreAppendTurnsCapsList(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, newFakeClock())
	_, err := store.GetOrCreate(ctx, "s", "")
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.AppendTurns(ctx, "s",
			Turn{Role: RoleCaller, Text: fmt.Sprintf("caller %d", i)},
			Turn{Role: RoleSystem, Text: fmt.Sprintf("system %d", i)},
		))
	}

	s, err := store.Get(ctx, "s")
	require.NoError(t, err)
	require.Len(t, s.Turns, DefaultMaxTurns)
	assert.Equal(t, "caller 3", s.Turns[0].Text)
	assert.Equal(t, "system 5", s.Turns[5].Text)
	assert.True(t, mr.TTL(turnsKey("s")) > 0)
}

func TestRedisStoreUpdateKnownKeepsTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, newFakeClock())
	_, _ = store.GetOrCreate(ctx, "s", "")
	mr.FastForward(10 * time.Minute)

	known := extract.Context{Service: "coloration", Price: "60 $", Intent: extract.IntentBooking}
	require.NoError(t, store.UpdateKnown(ctx, "s", known))

	s, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, known, s.Known)
	assert.Equal(t, 50*time.Minute, mr.TTL(metaKey("s")))
}

func TestRedisStoreMissingSession(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t, newFakeClock())

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.AppendTurns(ctx, "nope", Turn{Text: "x"}), ErrNotFound)
	assert.ErrorIs(t, store.UpdateKnown(ctx, "nope", extract.Context{}), ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, newFakeClock())
	_, _ = store.GetOrCreate(ctx, "s", "")
	require.NoError(t, store.AppendTurns(ctx, "s", Turn{Role: RoleCaller, Text: "allo"}))

	require.NoError(t, store.Delete(ctx, "s"))

	assert.False(t, mr.Exists(metaKey("s")))
	assert.False(t, mr.Exists(turnsKey("s")))
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRedisStoreEvictStale(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store, mr := newRedisStore(t, clock)

	_, _ = store.GetOrCreate(ctx, "old", "")
	clock.Advance(40 * time.Minute)
	_, _ = store.GetOrCreate(ctx, "young", "")

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	evicted, err := store.EvictStale(ctx, clock.Now().Add(21*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	assert.False(t, mr.Exists(metaKey("old")))

	_, err = store.Get(ctx, "young")
	assert.NoError(t, err)
}

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/Aidin1998/usersapi/internal/cache"
	"github.com/Aidin1998/usersapi/pkg/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*cache.UserCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewUserCache(client, ttl), mr
}

func TestUserCacheRoundTrip(t *testing.T) {
	c, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	user := &models.User{
		ID:        uuid.New(),
		Name:      "Samwise Gamgee",
		Bio:       "gardener",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	user.UpdatedAt = user.CreatedAt

	got, ok, err := c.Get(ctx, user.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, user))

	got, ok, err = c.Get(ctx, user.ID.String())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.Name, got.Name)
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.Delete(ctx, user.ID.String()))
	_, ok, err = c.Get(ctx, user.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, cache.Stats{Hits: 1, Misses: 2}, c.Stats())
}

func TestUserCacheExpires(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Name: "Pippin", Bio: "fool of a Took"}
	require.NoError(t, c.Set(ctx, user))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, user.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserCacheCorruptEntry(t *testing.T) {
	c, mr := setupCache(t, 0)
	id := uuid.NewString()
	require.NoError(t, mr.Set("usersapi:user:"+id, "{not json"))

	_, ok, err := c.Get(context.Background(), id)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Errors)
}

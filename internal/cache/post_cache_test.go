package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/linkboard/config"
	"github.com/d60-Lab/linkboard/internal/model"
)

func setupCache(t *testing.T) (*PostListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPostListCache(client, 30*time.Second), mr
}

func TestPostListCache_RoundTrip(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	_, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	posts := []*model.Post{
		{ID: 2, Title: "second", Source: "b.example", Author: model.User{ID: 1, Username: "alice"}, CommentCount: 3},
		{ID: 1, Title: "first", Source: "a.example"},
	}
	require.NoError(t, c.Set(ctx, posts))
	assert.Equal(t, 30*time.Second, mr.TTL(postListKey))

	got, hit, err := c.Get(ctx)
	require.NoError(t, err)
	require.True(t, hit)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, "alice", got[0].Author.Username)
	assert.Equal(t, int64(3), got[0].CommentCount)
}

func TestPostListCache_InvalidateAndExpire(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []*model.Post{{ID: 1}}))
	require.NoError(t, c.Invalidate(ctx))
	_, hit, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, []*model.Post{{ID: 1}}))
	mr.FastForward(time.Minute)
	_, hit, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPostListCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := setupCache(t)
	require.NoError(t, mr.Set(postListKey, "{not json"))

	_, hit, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists(postListKey))
}

func TestPostListCache_NilIsNoop(t *testing.T) {
	var c *PostListCache
	ctx := context.Background()

	assert.Nil(t, NewPostListCache(nil, time.Second))
	_, hit, err := c.Get(ctx)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Set(ctx, nil))
	assert.NoError(t, c.Invalidate(ctx))
}

func TestNewRedisClient(t *testing.T) {
	ctx := context.Background()

	client, err := NewRedisClient(ctx, config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err = NewRedisClient(ctx, config.RedisConfig{Enabled: true, Addr: addr})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()

	// 关闭后 Addr() 不可再调用，用之前记下的地址
	mr.Close()
	client, err = NewRedisClient(ctx, config.RedisConfig{Enabled: true, Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, client)
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/linkboard/internal/model"
)

const postListKey = "posts:recent"

// PostListCache caches the front-page post listing as a single JSON blob.
// A nil *PostListCache is valid and behaves as a permanent miss.
type PostListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostListCache(client *redis.Client, ttl time.Duration) *PostListCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PostListCache{client: client, ttl: ttl}
}

// Get reports a hit only when a decodable payload is present.
func (c *PostListCache) Get(ctx context.Context) ([]*model.Post, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, postListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []*model.Post
	if err := json.Unmarshal(data, &out); err != nil {
		// corrupt entry, drop it and fall through to the DB
		_ = c.client.Del(ctx, postListKey).Err()
		return nil, false, nil
	}
	return out, true, nil
}

func (c *PostListCache) Set(ctx context.Context, posts []*model.Post) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, postListKey, payload, c.ttl).Err()
}

func (c *PostListCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, postListKey).Err()
}

package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores each image as a hash with a TTL, so previews survive
// across server instances.
type RedisCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(token string) string { return c.prefix + ":" + token }

func (c *RedisCache) Put(ctx context.Context, img Image) (string, error) {
	token := newToken()
	key := c.key(token)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, map[string]any{
			"owner":        img.Owner,
			"filename":     img.Filename,
			"content_type": img.ContentType,
			"data":         img.Data,
		})
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store preview: %w", err)
	}
	return token, nil
}

func (c *RedisCache) Get(ctx context.Context, token string) (Image, error) {
	if !validToken(token) {
		return Image{}, ErrNotFound
	}
	fields, err := c.rdb.HGetAll(ctx, c.key(token)).Result()
	if err != nil {
		return Image{}, fmt.Errorf("load preview: %w", err)
	}
	if len(fields) == 0 {
		return Image{}, ErrNotFound
	}
	return Image{
		Owner:       fields["owner"],
		Filename:    fields["filename"],
		ContentType: fields["content_type"],
		Data:        []byte(fields["data"]),
	}, nil
}

func (c *RedisCache) Release(ctx context.Context, token string) error {
	if !validToken(token) {
		return nil
	}
	if err := c.rdb.Del(ctx, c.key(token)).Err(); err != nil {
		return fmt.Errorf("release preview: %w", err)
	}
	return nil
}

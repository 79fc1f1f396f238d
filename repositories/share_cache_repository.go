package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloudnest/models"

	"github.com/redis/go-redis/v9"
)

type RedisShareTokenCache struct {
	redis *redis.Client
}

func NewRedisShareTokenCache(redisClient *redis.Client) *RedisShareTokenCache {
	return &RedisShareTokenCache{redis: redisClient}
}

func shareTokenKey(token string) string {
	return fmt.Sprintf("share:token:%s", token)
}

func (r *RedisShareTokenCache) Get(ctx context.Context, token string) (models.ShareLink, bool, error) {
	data, err := r.redis.Get(ctx, shareTokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ShareLink{}, false, nil
		}
		return models.ShareLink{}, false, err
	}

	var link models.ShareLink
	if err := json.Unmarshal(data, &link); err != nil {
		// a corrupt entry is treated as a miss
		_ = r.redis.Del(ctx, shareTokenKey(token)).Err()
		return models.ShareLink{}, false, nil
	}
	return link, true, nil
}

func (r *RedisShareTokenCache) Set(ctx context.Context, link models.ShareLink, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, shareTokenKey(link.Token), data, ttl).Err()
}

func (r *RedisShareTokenCache) Invalidate(ctx context.Context, token string) error {
	return r.redis.Del(ctx, shareTokenKey(token)).Err()
}

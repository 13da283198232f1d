package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/confbooking/config"
	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client         *redis.Client
	conferencesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, conferencesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:         redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		conferencesTTL: conferencesTTL,
	}
}

func (c *RedisCache) GetConferences(ctx context.Context) ([]domain.Conference, error) {
	data, err := c.client.Get(ctx, conferencesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var conferences []domain.Conference
	if err := json.Unmarshal(data, &conferences); err != nil {
		return nil, err
	}
	return conferences, nil
}

func (c *RedisCache) SetConferences(ctx context.Context, conferences []domain.Conference) error {
	payload, err := json.Marshal(conferences)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, conferencesKey(), payload, c.conferencesTTL).Err()
}

func (c *RedisCache) InvalidateConferences(ctx context.Context) error {
	return c.client.Del(ctx, conferencesKey()).Err()
}

// AcquirePromotionLock serializes the promotion protocol per conference,
// so two concurrent cancellations cannot both promote for the same seat.
func (c *RedisCache) AcquirePromotionLock(ctx context.Context, conferenceName string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, promotionLockKey(conferenceName), "locked", ttl).Result()
}

func (c *RedisCache) ReleasePromotionLock(ctx context.Context, conferenceName string) error {
	return c.client.Del(ctx, promotionLockKey(conferenceName)).Err()
}

func conferencesKey() string {
	return "cache:conferences"
}

func promotionLockKey(conferenceName string) string {
	return fmt.Sprintf("lock:promotion:%s", conferenceName)
}

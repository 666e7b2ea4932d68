package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const adminTokenKeyPrefix = "exam:admin:"

// RedisAdminTokenStore keeps admin session tokens. Entries carry only a
// presence marker; the token value itself is the capability.
type RedisAdminTokenStore struct {
	client *redis.Client
}

func NewRedisAdminTokenStore(client *redis.Client) *RedisAdminTokenStore {
	return &RedisAdminTokenStore{client: client}
}

func (s *RedisAdminTokenStore) Put(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return s.client.Set(ctx, adminTokenKeyPrefix+token, "1", ttl).Err()
}

func (s *RedisAdminTokenStore) Validate(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, adminTokenKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Package cache holds the Redis-backed token stores for the exam service.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect builds a Redis client from either a redis:// / rediss:// URL or a
// bare host:port pair, so docker-compose and managed deployments share one
// config knob.
func Connect(_ context.Context, target string) (*redis.Client, error) {
	if strings.Contains(target, "://") {
		opt, err := redis.ParseURL(target)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: target}), nil
}

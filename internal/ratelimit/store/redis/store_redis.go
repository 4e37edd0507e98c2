// Package redis provides the redis-backed cooldown store. The timestamp is
// stored with a TTL equal to the cooldown window, so expired entries vanish
// on their own and a device changing instances still sees its cooldown.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Store struct {
	client *goredis.Client
}

func New(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) LastAccepted(ctx context.Context, key string) (time.Time, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("cooldown get: %w", err)
	}
	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("cooldown parse %q: %w", val, err)
	}
	return time.UnixMilli(millis), nil
}

func (s *Store) Record(ctx context.Context, key string, t time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, strconv.FormatInt(t.UnixMilli(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("cooldown set: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bundle_scan_backend/internal/scanning/domain"
)

const templateKeyPrefix = "scan:process-template:"

// RedisTemplateStore shares fetched process templates between service
// instances. Entries carry the remaining lifetime of the window they were
// fetched in, so a copy never outlives the original TTL.
type RedisTemplateStore struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisTemplateStore creates a template store on client.
func NewRedisTemplateStore(client redis.Cmdable) *RedisTemplateStore {
	return &RedisTemplateStore{client: client, now: time.Now}
}

func templateKey(orderID string) string {
	return templateKeyPrefix + orderID
}

// Get returns the stored template and its expiry. ok is false on a miss.
func (s *RedisTemplateStore) Get(ctx context.Context, orderID string) ([]domain.ProcessConfigEntry, time.Time, bool, error) {
	key := templateKey(orderID)

	var getCmd *redis.StringCmd
	var ttlCmd *redis.DurationCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.Get(ctx, key)
		ttlCmd = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, time.Time{}, false, fmt.Errorf("get process template: %w", err)
	}

	payload, err := getCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read process template: %w", err)
	}

	remaining := ttlCmd.Val()
	if remaining <= 0 {
		// Keys without expiry are not ours to trust.
		return nil, time.Time{}, false, nil
	}

	var entries []domain.ProcessConfigEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode process template: %w", err)
	}
	return entries, s.now().Add(remaining), true, nil
}

// Put stores entries for ttl.
func (s *RedisTemplateStore) Put(ctx context.Context, orderID string, entries []domain.ProcessConfigEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode process template: %w", err)
	}
	if err := s.client.Set(ctx, templateKey(orderID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("put process template: %w", err)
	}
	return nil
}

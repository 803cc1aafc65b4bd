package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists access tokens by app key. Expired entries must not be returned.
type Store interface {
	Get(ctx context.Context, appKey string) (string, bool, error)
	Set(ctx context.Context, appKey, token string, ttl time.Duration) error
	Delete(ctx context.Context, appKey string) error
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore keeps tokens in process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, appKey string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[appKey]
	if !ok || !s.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.token, true, nil
}

func (s *MemoryStore) Set(_ context.Context, appKey, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[appKey] = memoryEntry{token: token, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, appKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, appKey)
	return nil
}

// RedisStore shares tokens between replicas so a fleet refreshes once per
// app rather than once per process.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(appKey string) string {
	return s.prefix + appKey
}

func (s *RedisStore) Get(ctx context.Context, appKey string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(appKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get token: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, appKey, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(appKey), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, appKey string) error {
	if err := s.client.Del(ctx, s.key(appKey)).Err(); err != nil {
		return fmt.Errorf("redis delete token: %w", err)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

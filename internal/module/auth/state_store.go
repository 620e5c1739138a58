package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore defines the interface for OAuth state management.
type StateStore interface {
	Set(ctx context.Context, state string, data string) error
	Get(ctx context.Context, state string) (string, error)
	Delete(ctx context.Context, state string) error
}

// MemoryStateStore is an in-memory implementation of StateStore.
// Suitable for single-instance deployments.
// For production multi-instance deployments, use RedisStateStore.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]*stateEntry
	ttl    time.Duration
}

type stateEntry struct {
	data      string
	expiresAt time.Time
}

// NewMemoryStateStore creates a new in-memory state store.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	store := &MemoryStateStore{
		states: make(map[string]*stateEntry),
		ttl:    ttl,
	}
	// Start cleanup goroutine
	go store.cleanup()
	return store
}

// Set stores a state with data.
func (s *MemoryStateStore) Set(_ context.Context, state string, data string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state] = &stateEntry{
		data:      data,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Get retrieves data for a state.
func (s *MemoryStateStore) Get(_ context.Context, state string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.states[state]
	if !ok {
		return "", ErrInvalidOAuthState
	}

	if time.Now().After(entry.expiresAt) {
		return "", ErrInvalidOAuthState
	}

	return entry.data, nil
}

// Delete removes a state.
func (s *MemoryStateStore) Delete(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, state)
	return nil
}

// cleanup periodically removes expired states.
func (s *MemoryStateStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, entry := range s.states {
			if now.After(entry.expiresAt) {
				delete(s.states, key)
			}
		}
		s.mu.Unlock()
	}
}

// RedisStateStore is a Redis-backed implementation of StateStore.
type RedisStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStateStore creates a new Redis-backed state store.
func NewRedisStateStore(client redis.UniversalClient, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) key(state string) string {
	return "oauth:state:" + state
}

// Set stores a state with data.
func (s *RedisStateStore) Set(ctx context.Context, state string, data string) error {
	if err := s.client.Set(ctx, s.key(state), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set oauth state: %w", err)
	}
	return nil
}

// Get retrieves data for a state.
func (s *RedisStateStore) Get(ctx context.Context, state string) (string, error) {
	data, err := s.client.Get(ctx, s.key(state)).Result()
	if err == redis.Nil {
		return "", ErrInvalidOAuthState
	}
	if err != nil {
		return "", fmt.Errorf("get oauth state: %w", err)
	}
	return data, nil
}

// Delete removes a state.
func (s *RedisStateStore) Delete(ctx context.Context, state string) error {
	if err := s.client.Del(ctx, s.key(state)).Err(); err != nil {
		return fmt.Errorf("delete oauth state: %w", err)
	}
	return nil
}

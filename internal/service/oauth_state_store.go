package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OAuthStateStore guarda nonces de state para el redirect de autorización y
// permite consumirlos una sola vez.
type OAuthStateStore interface {
	Store(state, userID string, ttl time.Duration) error
	// Consume devuelve el userID asociado y elimina el state; devuelve false
	// si no existe o ya fue usado.
	Consume(state string) (string, bool, error)
}

type memoryOAuthStateStore struct {
	mu    sync.Mutex
	items map[string]stateEntry
}

type stateEntry struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryOAuthStateStore() OAuthStateStore {
	return &memoryOAuthStateStore{
		items: make(map[string]stateEntry),
	}
}

func (s *memoryOAuthStateStore) Store(state, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(state) == "" {
		return nil
	}
	s.items[state] = stateEntry{
		userID:    userID,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryOAuthStateStore) Consume(state string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[state]
	if !ok {
		return "", false, nil
	}
	delete(s.items, state)
	if time.Now().UTC().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.userID, true, nil
}

type redisOAuthStateStore struct {
	client *redis.Client
	prefix string
}

func NewRedisOAuthStateStore(client *redis.Client) OAuthStateStore {
	if client == nil {
		return nil
	}
	return &redisOAuthStateStore{
		client: client,
		prefix: "oauth:state:",
	}
}

func (s *redisOAuthStateStore) Store(state, userID string, ttl time.Duration) error {
	if strings.TrimSpace(state) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+state, userID, ttl).Err()
}

func (s *redisOAuthStateStore) Consume(state string) (string, bool, error) {
	if strings.TrimSpace(state) == "" {
		return "", false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	userID, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

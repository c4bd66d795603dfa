package credential

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "credential:session:"
	credentialTTL = 24 * time.Hour
)

// Store - 세션별 선택된 API 키 저장소
type Store interface {
	Save(ctx context.Context, sessionID, apiKey string) error
	Lookup(ctx context.Context, sessionID string) (string, bool, error)
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore - Redis 기반 저장소 (TTL 24시간)
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore - Redis 저장소 생성
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: credentialTTL}
}

func credentialKey(sessionID string) string {
	return keyPrefix + sessionID
}

// Save - API 키 저장
func (s *RedisStore) Save(ctx context.Context, sessionID, apiKey string) error {
	if err := s.rdb.Set(ctx, credentialKey(sessionID), apiKey, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	log.Printf("🔑 [Credential] Saved API key for session %s (ttl: %s)", sessionID, s.ttl)
	return nil
}

// Lookup - API 키 조회
func (s *RedisStore) Lookup(ctx context.Context, sessionID string) (string, bool, error) {
	apiKey, err := s.rdb.Get(ctx, credentialKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to lookup credential: %w", err)
	}
	return apiKey, apiKey != "", nil
}

// Clear - API 키 삭제
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, credentialKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// MemoryStore - Redis 비활성화 시 사용하는 인메모리 저장소
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]string
}

// NewMemoryStore - 인메모리 저장소 생성
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]string)}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[sessionID] = apiKey
	return nil
}

func (s *MemoryStore) Lookup(ctx context.Context, sessionID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apiKey, ok := s.keys[sessionID]
	return apiKey, ok && apiKey != "", nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, sessionID)
	return nil
}

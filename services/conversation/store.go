package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"styledesk/models"
)

const sessionPrefix = "chat:session:"

// Store holds per-user conversation sessions. Implementations return a fresh
// greeting-state session for unknown users; sessions are ephemeral and safe
// to lose on restart.
type Store interface {
	Get(ctx context.Context, userID string) (*models.ConversationSession, error)
	Set(ctx context.Context, session *models.ConversationSession) error
	Clear(ctx context.Context, userID string) error
}

// RedisSessionStore caches sessions in Redis with a soft TTL. The TTL is a
// cache property, not a conversation timeout; an expired session simply
// restarts from greeting.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, userID string) (*models.ConversationSession, error) {
	data, err := s.client.Get(ctx, sessionPrefix+userID).Result()
	if err == redis.Nil {
		return models.NewConversationSession(userID), nil
	}
	if err != nil {
		return nil, err
	}
	var session models.ConversationSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, session *models.ConversationSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+session.UserID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionPrefix+userID).Err()
}

// MemorySessionStore keeps sessions in process memory, for tests and
// single-node deployments without Redis.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.ConversationSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.ConversationSession)}
}

func (s *MemorySessionStore) Get(_ context.Context, userID string) (*models.ConversationSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[userID]; ok {
		return &session, nil
	}
	return models.NewConversationSession(userID), nil
}

func (s *MemorySessionStore) Set(_ context.Context, session *models.ConversationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = *session
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

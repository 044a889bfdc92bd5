// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"eventura/models"

	"github.com/go-redis/redis/v8"
)

const conversationPrefix = "ai:conv:"

// RedisConversationStore keeps each session as a Redis list of JSON turns.
type RedisConversationStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

// NewRedisConversationStore stores sessions for ttl after their last write, keeping at
// most maxTurns turns (0 keeps everything).
func NewRedisConversationStore(client *redis.Client, ttl time.Duration, maxTurns int) *RedisConversationStore {
	return &RedisConversationStore{client: client, ttl: ttl, maxTurns: maxTurns}
}

func (s *RedisConversationStore) Append(ctx context.Context, sessionID string, turns ...models.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		b, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("marshal turn: %w", err)
		}
		values = append(values, b)
	}

	key := conversationPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append conversation %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisConversationStore) ReadAll(ctx context.Context, sessionID string) ([]models.ConversationTurn, error) {
	raw, err := s.client.LRange(ctx, conversationPrefix+sessionID, 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read conversation %s: %w", sessionID, err)
	}
	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisConversationStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, conversationPrefix+sessionID).Err()
}

// MemoryConversationStore is a process-local ConversationStore.
type MemoryConversationStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.ConversationTurn
	maxTurns int
}

func NewMemoryConversationStore(maxTurns int) *MemoryConversationStore {
	return &MemoryConversationStore{sessions: make(map[string][]models.ConversationTurn), maxTurns: maxTurns}
}

func (s *MemoryConversationStore) Append(_ context.Context, sessionID string, turns ...models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.sessions[sessionID], turns...)
	if s.maxTurns > 0 && len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.sessions[sessionID] = history
	return nil
}

func (s *MemoryConversationStore) ReadAll(_ context.Context, sessionID string) ([]models.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.sessions[sessionID]
	out := make([]models.ConversationTurn, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemoryConversationStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Package flash keeps one-shot notices between a form submission and the
// page it redirects to.
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Notice levels, matching the alert styles used by the templates.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelDanger  = "danger"
)

// Message is a single notice.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Store keeps pending messages per browser session.
type Store interface {
	Push(ctx context.Context, session string, messages ...Message) error
	// Pop returns and forgets every pending message of session.
	Pop(ctx context.Context, session string) ([]Message, error)
}

// RedisStore keeps messages in a redis list per session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a redis backed store. Pending messages expire
// after ttl.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(session string) string {
	return "flash:" + session
}

func (s *RedisStore) Push(ctx context.Context, session string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(messages))
	for _, message := range messages {
		payload, err := json.Marshal(message)
		if err != nil {
			return err
		}
		values = append(values, payload)
	}

	key := s.key(session)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push flash messages: %w", err)
	}
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, session string) ([]Message, error) {
	key := s.key(session)
	pipe := s.client.TxPipeline()
	values := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pop flash messages: %w", err)
	}

	raw := values.Val()
	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var message Message
		if err := json.Unmarshal([]byte(item), &message); err != nil {
			continue
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// MemoryStore keeps messages in process memory. It is used when redis is
// not configured. Like RedisStore, a session's messages expire ttl after the
// last push.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	messages  []Message
	expiresAt time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: map[string]memorySession{}}
}

func (s *MemoryStore) Push(_ context.Context, session string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	entry := s.sessions[session]
	entry.messages = append(entry.messages, messages...)
	entry.expiresAt = now.Add(s.ttl)
	s.sessions[session] = entry
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, session string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, ok := s.sessions[session]
	delete(s.sessions, session)
	s.sweep(now)
	if !ok || !now.Before(entry.expiresAt) {
		return nil, nil
	}
	return entry.messages, nil
}

// sweep drops every expired session. Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	for session, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, session)
		}
	}
}

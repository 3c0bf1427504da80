package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateTTL bounds the time between redirecting to Google and the callback.
const StateTTL = 5 * time.Minute

var ErrInvalidState = errors.New("invalid or expired oauth state")

// StateStore issues single-use OAuth state values.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) error
}

func newState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MemoryStateStore keeps states in process. Suitable for a single instance.
type MemoryStateStore struct {
	states sync.Map
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{ttl: ttl, now: time.Now}
}

func (s *MemoryStateStore) Issue(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}
	s.sweep()
	s.states.Store(state, s.now().Add(s.ttl))
	return state, nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	value, ok := s.states.LoadAndDelete(state)
	if !ok {
		return ErrInvalidState
	}
	if s.now().After(value.(time.Time)) {
		return ErrInvalidState
	}
	return nil
}

func (s *MemoryStateStore) sweep() {
	now := s.now()
	s.states.Range(func(key, value interface{}) bool {
		if now.After(value.(time.Time)) {
			s.states.Delete(key)
		}
		return true
	})
}

// RedisStateStore shares states between instances.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func stateKey(state string) string {
	return "oauth_state:" + state
}

func (s *RedisStateStore) Issue(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, stateKey(state), "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return state, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	err := s.client.GetDel(ctx, stateKey(state)).Err()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("failed to read oauth state: %w", err)
	}
	return nil
}

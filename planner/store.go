package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrPlanNotFound is returned when no plan is stored under a UUID
var ErrPlanNotFound = errors.New("plan not found")

// Store persists finished plans
type Store interface {
	Save(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
}

// RedisStore keeps plans as JSON strings with a TTL
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. Keys live under bgloop:plan:.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "bgloop:plan:",
		ttl:    ttl,
	}
}

// Save writes the plan, replacing any previous plan with the same UUID
func (s *RedisStore) Save(ctx context.Context, plan *Plan) error {
	b, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+plan.UUID, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Get loads a plan or returns ErrPlanNotFound
func (s *RedisStore) Get(ctx context.Context, id string) (*Plan, error) {
	b, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var plan Plan
	if err := json.Unmarshal(b, &plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", id, err)
	}
	return &plan, nil
}

// MemoryStore is an in-process Store used when Redis is unavailable
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]*Plan)}
}

// Save stores the plan
func (s *MemoryStore) Save(ctx context.Context, plan *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.UUID] = plan
	return nil
}

// Get returns the stored plan or ErrPlanNotFound
func (s *MemoryStore) Get(ctx context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

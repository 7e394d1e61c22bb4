package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// VoteLedger remembers which voter has upvoted which prompt.
type VoteLedger interface {
	// Record marks voter as having upvoted promptID. first is false when the
	// pair was already recorded.
	Record(ctx context.Context, promptID, voter string) (first bool, err error)

	// Forget removes a recorded vote, used to roll back a failed increment.
	Forget(ctx context.Context, promptID, voter string) error
}

// MemoryVoteLedger keeps votes for the lifetime of the process.
type MemoryVoteLedger struct {
	mu    sync.Mutex
	votes map[string]struct{}
}

// NewMemoryVoteLedger creates an empty in-process ledger.
func NewMemoryVoteLedger() *MemoryVoteLedger {
	return &MemoryVoteLedger{votes: make(map[string]struct{})}
}

func (m *MemoryVoteLedger) Record(_ context.Context, promptID, voter string) (bool, error) {
	key := promptID + "|" + voter
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.votes[key]; ok {
		return false, nil
	}
	m.votes[key] = struct{}{}
	return true, nil
}

func (m *MemoryVoteLedger) Forget(_ context.Context, promptID, voter string) error {
	m.mu.Lock()
	delete(m.votes, promptID+"|"+voter)
	m.mu.Unlock()
	return nil
}

// RedisVoteLedger stores votes as keys "<prefix><promptID>:<voter>".
// A zero ttl keeps votes forever.
type RedisVoteLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisVoteLedger creates a Redis-backed ledger. Prefix may be empty.
func NewRedisVoteLedger(client *redis.Client, prefix string, ttl time.Duration) *RedisVoteLedger {
	if prefix == "" {
		prefix = "vote:"
	}
	return &RedisVoteLedger{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisVoteLedger) key(promptID, voter string) string {
	return r.prefix + promptID + ":" + voter
}

func (r *RedisVoteLedger) Record(ctx context.Context, promptID, voter string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(promptID, voter), time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record vote: %w", err)
	}
	return ok, nil
}

func (r *RedisVoteLedger) Forget(ctx context.Context, promptID, voter string) error {
	return r.client.Del(ctx, r.key(promptID, voter)).Err()
}

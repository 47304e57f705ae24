package service

import (
	"context"
	"sync"
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
)

// StoreTx provides a transactional boundary for project mutations. The
// callback runs with a context that carries the transaction, so every store
// reached through it joins the same unit of work. Implementations may wrap a
// database transaction or, in-memory, a per-project lock.
type StoreTx interface {
	RunInTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error
}

// shardedTx serializes mutations per project using sharded mutexes keyed by
// the project id. It provides mutual exclusion, not rollback: callers must
// validate before mutating so rejected operations leave no partial state.
const numProjectShards = 128

// defaultTxTimeout is the maximum duration for a project transaction.
const defaultTxTimeout = 5 * time.Second

type shardedTx struct {
	shards  [numProjectShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx constructs the in-memory StoreTx used by the memory backend
// and unit tests.
func NewShardedTx() StoreTx {
	return &shardedTx{}
}

func (t *shardedTx) RunInTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashProjectID(projectID) % numProjectShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashProjectID uses FNV-1a over the id bytes for even shard distribution.
func hashProjectID(projectID id.ProjectID) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	s := projectID.String()
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// Package registry provides the serialization boundary for every registry
// mutation. A transaction is scoped either to one patient (grants, documents)
// or to the identity tables (doctor and patient registration); transactions
// in different patient scopes run in parallel.
package registry

import (
	"context"
	"sync"
	"time"

	"medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
	txcontext "medledger/pkg/platform/tx"
)

// StoreTx runs fn atomically. fn must use the context it is given so stores
// join the transaction. A non-nil error from fn leaves no state change.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

const (
	numPatientShards = 128

	// DefaultTxTimeout bounds a transaction when the caller set no deadline.
	DefaultTxTimeout = 5 * time.Second
)

type patientScopeKey struct{}

// WithPatientScope marks ctx so the next transaction serializes on patientID.
func WithPatientScope(ctx context.Context, patientID domain.PatientID) context.Context {
	return context.WithValue(ctx, patientScopeKey{}, patientID)
}

// PatientScope returns the patient a transaction is scoped to, if any.
func PatientScope(ctx context.Context) (domain.PatientID, bool) {
	id, ok := ctx.Value(patientScopeKey{}).(domain.PatientID)
	return id, ok && !id.IsNil()
}

// ShardedTx is the in-memory StoreTx: one mutex per patient shard plus a
// dedicated identity mutex. Stores record undo steps in the context journal
// and ShardedTx replays them when fn fails.
type ShardedTx struct {
	shards   [numPatientShards]sync.Mutex
	identity sync.Mutex
	timeout  time.Duration
}

type TxOption func(*ShardedTx)

func WithTimeout(d time.Duration) TxOption {
	return func(t *ShardedTx) {
		t.timeout = d
	}
}

func NewShardedTx(opts ...TxOption) *ShardedTx {
	t := &ShardedTx{timeout: DefaultTxTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	// Joining keeps nested calls from self-deadlocking on the same shard.
	if txcontext.InJournal(ctx) {
		return fn(ctx)
	}

	ctx, cancel := withDefaultTimeout(ctx, t.timeout)
	defer cancel()

	mu := t.lockFor(ctx)
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	txCtx, journal := txcontext.WithJournal(ctx)
	if err := fn(txCtx); err != nil {
		journal.Rollback()
		return err
	}
	return nil
}

func (t *ShardedTx) lockFor(ctx context.Context) *sync.Mutex {
	if patientID, ok := PatientScope(ctx); ok {
		return &t.shards[shardFor(patientID)]
	}
	return &t.identity
}

func shardFor(patientID domain.PatientID) int {
	return int(hashString(patientID.String()) % numPatientShards)
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

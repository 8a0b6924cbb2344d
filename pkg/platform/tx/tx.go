package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Executor returns the transaction carried by ctx, falling back to db so
// stores behave the same inside and outside RunInTx.
func Executor(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Journal collects undo steps for in-memory transactions. Stores register an
// undo for every mutation made under a journaled context; the transaction
// runner replays them in reverse when the transaction fails.
type Journal struct {
	undo []func()
}

type journalKey struct{}

// WithJournal attaches a fresh journal to ctx.
func WithJournal(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalKey{}, j), j
}

// InJournal reports whether ctx already carries a journal.
func InJournal(ctx context.Context) bool {
	_, ok := ctx.Value(journalKey{}).(*Journal)
	return ok
}

// OnRollback registers undo against the journal in ctx. Outside a journaled
// transaction the mutation is final and undo is dropped.
func OnRollback(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*Journal); ok {
		j.undo = append(j.undo, undo)
	}
}

// Rollback runs the registered undo steps newest first.
func (j *Journal) Rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dErrors "medledger/pkg/domain-errors"
	txcontext "medledger/pkg/platform/tx"
)

// identityLockKey is the advisory lock taken by unscoped transactions.
// Patient ids are positive so the keys never collide.
const identityLockKey int64 = -1

// PostgresTx runs each transaction in a sql.Tx carried on the context and
// serializes same-scope transactions with a transaction-level advisory lock.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, timeout time.Duration) *PostgresTx {
	return &PostgresTx{db: db, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := txcontext.From(ctx); ok {
		return fn(ctx)
	}

	ctx, cancel := withDefaultTimeout(ctx, t.timeout)
	defer cancel()

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return translateTxErr(ctx, err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey(ctx)); err != nil {
		return translateTxErr(ctx, err, "acquire registry lock")
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translateTxErr(ctx, err, "commit transaction")
	}
	return nil
}

func lockKey(ctx context.Context) int64 {
	if patientID, ok := PatientScope(ctx); ok {
		return int64(patientID)
	}
	return identityLockKey
}

func translateTxErr(ctx context.Context, err error, op string) error {
	if ctx.Err() != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": deadline exceeded")
	}
	return dErrors.Wrap(fmt.Errorf("%s: %w", op, err), dErrors.CodeInternal, "registry unavailable")
}

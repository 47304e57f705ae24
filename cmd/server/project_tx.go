package main

import (
	"context"
	"database/sql"
	"time"

	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	txcontext "cascade/pkg/platform/tx"
)

const defaultProjectTxTimeout = 5 * time.Second

// projectPostgresTx runs project mutations inside a database transaction. The
// transaction rides the context, so every store the callback touches joins
// the same unit of work. The project id is unused here: the database provides
// isolation, per-project locking is a memory-backend concern.
type projectPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newProjectPostgresTx(db *sql.DB) *projectPostgresTx {
	return &projectPostgresTx{db: db}
}

func (t *projectPostgresTx) RunInTx(ctx context.Context, _ id.ProjectID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultProjectTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

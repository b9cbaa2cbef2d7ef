package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTransaction executes fn inside a database transaction
func WithTransaction(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ContextWithTx returns a context that makes GetQuerier use tx.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db.Pool
}

const defaultTxAttempts = 3

type transactorImpl struct {
	db          *database.DB
	maxAttempts int
}

// NewTransactor returns a Transactor that reruns the whole unit of work when
// the store reports a serialization failure or deadlock.
func NewTransactor(db *database.DB) database.Transactor {
	return &transactorImpl{db: db, maxAttempts: defaultTxAttempts}
}

// WithinTransaction implements database.Transactor. A ctx that already carries
// a transaction joins it instead of opening a new one.
func (t *transactorImpl) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= t.maxAttempts; attempt++ {
		err = WithTransaction(ctx, t.db, func(tx pgx.Tx) error {
			return fn(ContextWithTx(ctx, tx))
		})
		if err == nil || !database.IsRetryable(err) || ctx.Err() != nil {
			return err
		}
		slog.Warn("transaction conflict, retrying", "attempt", attempt, "error", err)
	}
	return err
}

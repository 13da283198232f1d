package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Domenick1991/confbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every store
// method can run standalone or inside a caller-owned transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner is the transaction boundary handed to the service layer, so
// multi-store sequences commit or roll back as one unit.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type PGTxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &PGTxRunner{pool: pool}
}

// InTx runs fn inside a single transaction. The transaction is rolled back
// when fn returns an error and committed otherwise.
func (r *PGTxRunner) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return opFailed("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return opFailed("commit tx", err)
	}
	return nil
}

var _ TxRunner = (*PGTxRunner)(nil)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// opFailed logs the underlying database error and hides it behind
// ErrOperationFailed, which is all a synchronous caller gets to see.
func opFailed(op string, err error) error {
	log.Printf("repository: %s: %v", op, err)
	return fmt.Errorf("%s: %w", op, domain.ErrOperationFailed)
}

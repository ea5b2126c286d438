package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
)

// Transaction is a connection handed to the caller with an open
// transaction on it. The caller must finish it with Commit, Rollback or End.
//
// A Transaction is not safe for concurrent use; statements on one
// connection are serialised by the driver anyway.
type Transaction struct {
	id     string
	conn   *sql.Conn
	tx     *sql.Tx
	logger *slog.Logger

	mu   sync.Mutex
	done bool
}

// Transaction borrows a connection and begins a transaction on it.
// The connection stays checked out until Commit, Rollback or End.
func (s *Store) Transaction(ctx context.Context) (*Transaction, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.KindConnectionAcquisition, err, "acquiring transaction connection")
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	id := newTransactionID()
	logger := s.logger.With("tx", id)
	logger.DebugContext(ctx, "transaction started")

	return &Transaction{
		id:     id,
		conn:   conn,
		tx:     tx,
		logger: logger,
	}, nil
}

// newTransactionID returns a time-ordered ID so log lines sort by start.
func newTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ID returns the transaction's log correlation ID.
func (t *Transaction) ID() string {
	return t.id
}

// Done reports whether the transaction has been committed or rolled back.
func (t *Transaction) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Query runs a row-returning statement inside the transaction.
func (t *Transaction) Query(ctx context.Context, query string) (*ResultSet, error) {
	t.logger.DebugContext(ctx, "executing query", "sql", query)
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return readRows(rows)
}

// Exec runs a statement that returns no rows inside the transaction.
func (t *Transaction) Exec(ctx context.Context, query string) (Result, error) {
	t.logger.DebugContext(ctx, "executing statement", "sql", query)
	res, err := t.tx.ExecContext(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("executing statement: %w", err)
	}
	return toResult(res), nil
}

// Commit commits the transaction and releases its connection.
func (t *Transaction) Commit() error {
	return t.finish("committed", t.tx.Commit)
}

// Rollback aborts the transaction and releases its connection.
func (t *Transaction) Rollback() error {
	return t.finish("rolled back", t.tx.Rollback)
}

// End releases the transaction, rolling it back if still open.
// It is safe to call more than once and after Commit or Rollback,
// which makes it suitable for defer.
func (t *Transaction) End() error {
	if t.Done() {
		return nil
	}
	err := t.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (t *Transaction) finish(outcome string, fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true

	err := fn()
	if cerr := t.conn.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("releasing connection: %w", cerr)
	}
	if err != nil {
		t.logger.Error("transaction finish failed", "outcome", outcome, "error", err)
		return fmt.Errorf("transaction %s: %w", outcome, err)
	}
	t.logger.Debug("transaction " + outcome)
	return nil
}

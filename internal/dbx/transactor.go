package dbx

import (
	"context"
	"database/sql"
	"sync"
)

// Transactor runs a unit of work atomically. Services depend on it rather
// than on *sql.DB so the same code runs against PostgreSQL and the
// in-memory store.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLTransactor opens a database/sql transaction per unit of work.
type SQLTransactor struct {
	DB   TxBeginner
	Opts *sql.TxOptions
}

func NewSQLTransactor(db TxBeginner) *SQLTransactor {
	return &SQLTransactor{DB: db}
}

func (t *SQLTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, t.DB, t.Opts, fn)
}

// LockTransactor serializes units of work with a mutex. It has no rollback:
// fn must not mutate anything before its last check can fail. The tx handed
// to fn is nil; in-memory repositories ignore it.
type LockTransactor struct {
	mu sync.Mutex
}

func (t *LockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, nil)
}

package tx

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dErrors "tenantry/pkg/domain-errors"
)

// DefaultTimeout bounds a transaction whose caller set no deadline.
const DefaultTimeout = 5 * time.Second

// Option configures a runner.
type Option func(*settings)

type settings struct {
	timeout   time.Duration
	isolation sql.IsolationLevel
}

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithIsolation sets the Postgres isolation level; the default is read committed.
func WithIsolation(level sql.IsolationLevel) Option {
	return func(s *settings) { s.isolation = level }
}

func configure(opts []Option) settings {
	s := settings{timeout: DefaultTimeout, isolation: sql.LevelReadCommitted}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// bounded applies the runner timeout unless ctx already carries a deadline.
func (s settings) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// failure classifies err: context expiry is a timeout, anything else is internal.
func failure(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// Postgres runs fn inside a *sql.Tx carried on the context. A call made
// while a transaction is already open joins it.
type Postgres struct {
	db  *sql.DB
	cfg settings
}

func NewPostgres(db *sql.DB, opts ...Option) *Postgres {
	return &Postgres{db: db, cfg: configure(opts)}
}

func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return failure(err, "transaction not started")
	}
	if _, open := From(ctx); open {
		return fn(ctx)
	}

	ctx, cancel := p.cfg.bounded(ctx)
	defer cancel()

	sqlTx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: p.cfg.isolation})
	if err != nil {
		return failure(err, "begin transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return failure(err, "commit transaction")
	}
	committed = true
	return nil
}

// InMemory gives in-memory stores transaction semantics by running one fn
// at a time. Those stores stage their writes, so fn applies fully or not at
// all.
type InMemory struct {
	slot chan struct{}
	cfg  settings
}

func NewInMemory(opts ...Option) *InMemory {
	return &InMemory{slot: make(chan struct{}, 1), cfg: configure(opts)}
}

func (m *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return failure(err, "transaction not started")
	}

	ctx, cancel := m.cfg.bounded(ctx)
	defer cancel()

	select {
	case m.slot <- struct{}{}:
	case <-ctx.Done():
		return failure(ctx.Err(), "waiting for transaction")
	}
	defer func() { <-m.slot }()

	return fn(ctx)
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/tablesync/internal/config"
)

var (
	// ErrPoolClosed is returned when borrowing from a pool after Close.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrAcquireTimeout is returned when no connection frees up within the acquire timeout.
	ErrAcquireTimeout = errors.New("timed out waiting for a connection")
)

// DB is the subset of *Pool used by the query, schema and writer packages.
// It is implemented by *Pool, pgx.Tx and pgxmock pools.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Option configures Connect.
type Option func(*pgxpool.Config)

// WithTracer attaches a query tracer to every connection in the pool.
func WithTracer(t pgx.QueryTracer) Option {
	return func(c *pgxpool.Config) {
		c.ConnConfig.Tracer = t
	}
}

// Pool owns a bounded set of reusable connections.
type Pool struct {
	pgx            *pgxpool.Pool
	acquireTimeout time.Duration
	logger         *slog.Logger
	closed         atomic.Bool
}

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig, logger *slog.Logger, opts ...Option) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	return connect(ctx, poolCfg, cfg.AcquireTimeout, logger, opts)
}

// ConnectURL creates a pool from a postgres:// URL or key=value DSN. Pool sizing
// comes from the pool_max_conns and pool_min_conns parameters, if present.
func ConnectURL(ctx context.Context, url string, acquireTimeout time.Duration, logger *slog.Logger, opts ...Option) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	return connect(ctx, poolCfg, acquireTimeout, logger, opts)
}

func connect(ctx context.Context, poolCfg *pgxpool.Config, acquireTimeout time.Duration, logger *slog.Logger, opts []Option) (*Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, opt := range opts {
		opt(poolCfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Debug("connection pool ready",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"min_conns", poolCfg.MinConns,
		"max_conns", poolCfg.MaxConns,
	)

	return &Pool{
		pgx:            pool,
		acquireTimeout: acquireTimeout,
		logger:         logger,
	}, nil
}

// Conn is a connection borrowed from a Pool. It belongs to one caller until Release.
type Conn struct {
	*pgxpool.Conn
	once sync.Once
}

// Release returns the connection to the pool. Calls after the first are no-ops.
func (c *Conn) Release() {
	c.once.Do(c.Conn.Release)
}

// Acquire borrows a connection, waiting for one to free up if all are in use.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	c, err := p.pgx.Acquire(ctx)
	if err != nil {
		if p.closed.Load() {
			return nil, ErrPoolClosed
		}
		if p.acquireTimeout > 0 && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, p.acquireTimeout)
		}
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{Conn: c}, nil
}

// Release returns a borrowed connection to the pool.
func (p *Pool) Release(c *Conn) {
	if c != nil {
		c.Release()
	}
}

// WithConn borrows a connection for the duration of fn. The connection is
// released when fn returns, including on error or panic.
func (p *Pool) WithConn(ctx context.Context, fn func(*Conn) error) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()
	return fn(c)
}

// Begin starts a transaction on a pooled connection. The connection returns
// to the pool when the transaction commits or rolls back.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	c, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := c.Begin(ctx)
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &releasingTx{Tx: tx, conn: c}, nil
}

// Exec runs a statement on a pooled connection.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c, err := p.Acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer c.Release()
	return c.Exec(ctx, sql, args...)
}

// Query runs a statement on a pooled connection. The connection is released
// when the returned rows are closed or fully read.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := c.Query(ctx, sql, args...)
	if err != nil {
		c.Release()
		return nil, err
	}
	return &releasingRows{Rows: rows, conn: c}, nil
}

// QueryRow runs a statement expected to return at most one row. Acquire
// errors surface from Scan.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c, err := p.Acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &releasingRow{row: c.QueryRow(ctx, sql, args...), conn: c}
}

// Ping verifies the database is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	return p.pgx.Ping(ctx)
}

// Stat returns pool statistics.
func (p *Pool) Stat() *pgxpool.Stat {
	return p.pgx.Stat()
}

// Close closes all connections. Borrowed connections are closed as they are released.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.pgx.Close()
	p.logger.Debug("connection pool closed")
}

// releasingTx returns its connection to the pool once the transaction ends.
type releasingTx struct {
	pgx.Tx
	conn *Conn
}

func (t *releasingTx) Commit(ctx context.Context) error {
	defer t.conn.Release()
	return t.Tx.Commit(ctx)
}

func (t *releasingTx) Rollback(ctx context.Context) error {
	defer t.conn.Release()
	return t.Tx.Rollback(ctx)
}

// releasingRows returns its connection to the pool once the rows are done.
type releasingRows struct {
	pgx.Rows
	conn *Conn
}

func (r *releasingRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.conn.Release()
	return false
}

func (r *releasingRows) Close() {
	r.Rows.Close()
	r.conn.Release()
}

type releasingRow struct {
	row  pgx.Row
	conn *Conn
}

func (r *releasingRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return r.row.Scan(dest...)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

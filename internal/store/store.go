package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Supinic/supi-core-sub000/internal/querysql"
	"github.com/Supinic/supi-core-sub000/internal/schema"
	"github.com/Supinic/supi-core-sub000/internal/sqlerr"
	"github.com/Supinic/supi-core-sub000/internal/sqlvalue"
)

// connectionTimeout bounds the connectivity check in Open.
const connectionTimeout = 5 * time.Second

// Config holds connection settings.
type Config struct {
	// Dialect selects the driver: MySQL or SQLite.
	Dialect Dialect

	// DSN is the driver data source name.
	DSN string

	// MaxOpenConns and MaxIdleConns size the pool; 0 keeps the driver default.
	MaxOpenConns int
	MaxIdleConns int

	// ConnMaxLifetime recycles connections; 0 means forever.
	ConnMaxLifetime time.Duration

	// Attach maps schema names to database files (SQLite only), so that
	// "name.table" paths resolve the way MySQL database names do.
	Attach map[string]string
}

// Executor runs SQL text. Both *Store and *Transaction implement it.
type Executor interface {
	Query(ctx context.Context, query string) (*ResultSet, error)
	Exec(ctx context.Context, query string) (Result, error)
}

// Store is the coordinator every builder talks to. It owns the connection
// pool and the table definition cache.
//
// Each statement borrows one pooled connection for its execution only
// (acquire, run, release). Multi-statement work goes through Transaction.
//
// Thread-safety: all methods are safe for concurrent use.
type Store struct {
	db      *sql.DB
	dialect Dialect
	cache   *schema.Cache
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for statement and failure logging.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIntrospector replaces the introspection used to fill the definition cache.
func WithIntrospector(i schema.Introspector) Option {
	return func(s *Store) {
		s.cache = schema.NewCache(i)
	}
}

// Open creates a pool for cfg and verifies connectivity.
func Open(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Dialect.Validate(); err != nil {
		return nil, err
	}

	var db *sql.DB
	switch cfg.Dialect {
	case MySQL:
		mcfg, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parsing mysql dsn: %w", err)
		}
		connector, err := mysql.NewConnector(mcfg)
		if err != nil {
			return nil, fmt.Errorf("creating mysql connector: %w", err)
		}
		db = sql.OpenDB(connector)
	case SQLite:
		db = sql.OpenDB(newSQLiteConnector(cfg.DSN, cfg.Attach))
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := New(db, cfg.Dialect, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		db.Close() //nolint:errcheck // best effort cleanup on error path
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool.
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		logger:  slog.Default(),
	}
	s.cache = schema.NewCache(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Ping verifies a connection can be acquired and used.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return sqlerr.Wrap(sqlerr.KindConnectionAcquisition, err, "verifying database connection")
	}
	return nil
}

// Stats returns pool statistics.
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store's dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Converter returns the value converter for the store's dialect.
func (s *Store) Converter() sqlvalue.Converter {
	return s.dialect.Converter()
}

// Formatter returns the format-symbol expander for the store's dialect.
func (s *Store) Formatter() querysql.Formatter {
	return s.dialect.Formatter()
}

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Definition returns the cached definition of database.table, introspecting
// it on first use.
func (s *Store) Definition(ctx context.Context, database, table string) (*schema.TableDefinition, error) {
	return s.cache.Definition(ctx, database, table)
}

// InvalidateDefinition drops one cached definition.
func (s *Store) InvalidateDefinition(database, table string) {
	s.cache.Invalidate(database, table)
}

// InvalidateAllDefinitions drops every cached definition.
func (s *Store) InvalidateAllDefinitions() {
	s.cache.InvalidateAll()
}

// Query runs a row-returning statement on a freshly borrowed connection.
func (s *Store) Query(ctx context.Context, query string) (*ResultSet, error) {
	return s.query(ctx, query)
}

// Exec runs a statement that returns no rows on a freshly borrowed connection.
func (s *Store) Exec(ctx context.Context, query string) (Result, error) {
	var out Result
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		s.logger.DebugContext(ctx, "executing statement", "sql", query)
		res, err := conn.ExecContext(ctx, query)
		if err != nil {
			return fmt.Errorf("executing statement: %w", err)
		}
		out = toResult(res)
		return nil
	})
	return out, err
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	var rs *ResultSet
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		s.logger.DebugContext(ctx, "executing query", "sql", query)
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("executing query: %w", err)
		}
		rs, err = readRows(rows)
		return err
	})
	return rs, err
}

// withConn borrows a connection for the duration of fn.
func (s *Store) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return sqlerr.Wrap(sqlerr.KindConnectionAcquisition, err, "acquiring connection")
	}
	defer conn.Close()
	return fn(conn)
}

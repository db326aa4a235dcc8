// Package adapter provides the SQL engines the cleaned movie table can be
// loaded into and queried from.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type specifies the database type (e.g., "duckdb", "sqlite", "postgres")
	Type string

	// Path is the file path for file-based databases (DuckDB, SQLite).
	// Empty or ":memory:" selects an in-memory database.
	Path string

	// DSN is a full connection string for network databases. When set it
	// takes precedence over the individual connection fields.
	DSN string

	Host     string
	Port     int
	Database string
	Username string
	Password string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, query string, args ...any) error

	// Query executes a SQL statement that returns rows. The caller closes
	// the rows and checks rows.Err().
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// DB exposes the underlying connection pool.
	DB() *sql.DB

	// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
	Placeholder(n int) string

	// DialectName returns the SQL dialect name for this adapter.
	DialectName() string
}

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed it in concrete adapters to get Close, Exec, Query and DB.
type BaseSQLAdapter struct {
	Conn   *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.Conn != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", slog.String("type", b.Cfg.Type))
		}
		return b.Conn.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, query string, args ...any) error {
	if b.Conn == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := b.Conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if b.Conn == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := b.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return rows, nil
}

// DB returns the underlying connection pool.
func (b *BaseSQLAdapter) DB() *sql.DB {
	return b.Conn
}

// Placeholder returns "?", the marker used by DuckDB and SQLite.
func (b *BaseSQLAdapter) Placeholder(int) string {
	return "?"
}

func (b *BaseSQLAdapter) open(ctx context.Context, driver, dsn string, cfg Config) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", cfg.Type, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", cfg.Type, err)
	}
	b.Conn = db
	b.Cfg = cfg
	return nil
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

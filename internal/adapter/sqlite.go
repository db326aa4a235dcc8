package adapter

import (
	"context"
	"log/slog"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLiteAdapter(logger) })
}

// SQLiteAdapter implements the Adapter interface for SQLite.
type SQLiteAdapter struct {
	BaseSQLAdapter
}

// NewSQLiteAdapter creates a new SQLite adapter instance.
func NewSQLiteAdapter(logger *slog.Logger) *SQLiteAdapter {
	return &SQLiteAdapter{BaseSQLAdapter: BaseSQLAdapter{Logger: loggerOrDiscard(logger)}}
}

// Connect opens the SQLite database at cfg.Path, in memory when empty.
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	a.Logger.Debug("connecting to sqlite", slog.String("path", path))
	if err := a.open(ctx, "sqlite", path, cfg); err != nil {
		return err
	}
	// Each pooled connection to ":memory:" would get its own database.
	a.Conn.SetMaxOpenConns(1)
	return nil
}

// DialectName returns the SQL dialect for this adapter.
func (a *SQLiteAdapter) DialectName() string {
	return "sqlite"
}

var _ Adapter = (*SQLiteAdapter)(nil)

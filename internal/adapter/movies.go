package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/boxoffice/internal/movies"
)

// DefaultTable is the table name the cleaned dataset is loaded into.
const DefaultTable = "movies"

// movieColumns keeps the dataset's column names so SQL reads like the CSV.
// Release_Date holds ISO dates, which order correctly as text on every engine.
var movieColumns = []struct {
	name    string
	sqlType string
}{
	{movies.ColRank, "BIGINT"},
	{movies.ColReleaseDate, "VARCHAR(10)"},
	{movies.ColTitle, "VARCHAR"},
	{movies.ColBudget, "DOUBLE PRECISION"},
	{movies.ColWorldwide, "DOUBLE PRECISION"},
	{movies.ColDomestic, "DOUBLE PRECISION"},
	{movies.ColDecade, "BIGINT"},
}

// QuoteIdent quotes a SQL identifier with double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateMoviesTableSQL returns the DDL for the movies table.
func CreateMoviesTableSQL(table string) string {
	defs := make([]string, len(movieColumns))
	for i, c := range movieColumns {
		defs[i] = QuoteIdent(c.name) + " " + c.sqlType
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(table), strings.Join(defs, ", "))
}

func insertMovieSQL(a Adapter, table string) string {
	names := make([]string, len(movieColumns))
	marks := make([]string, len(movieColumns))
	for i, c := range movieColumns {
		names[i] = QuoteIdent(c.name)
		marks[i] = a.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

// LoadMovies replaces table with rows in a single transaction. The Decade
// column is derived from the release year when a row does not carry one.
func LoadMovies(ctx context.Context, a Adapter, table string, rows []movies.Movie) error {
	if table == "" {
		table = DefaultTable
	}
	db := a.DB()
	if db == nil {
		return fmt.Errorf("database connection not established")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, CreateMoviesTableSQL(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertMovieSQL(a, table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, m := range rows {
		decade := m.Decade
		if decade == 0 {
			decade = movies.DecadeOf(m.ReleaseDate.Year())
		}
		if _, err := stmt.ExecContext(ctx,
			int64(m.Rank),
			m.ReleaseDate.Format(movies.DateLayout),
			m.Title,
			m.Budget,
			m.Worldwide,
			m.Domestic,
			int64(decade),
		); err != nil {
			return fmt.Errorf("failed to insert row %d (%s): %w", i, m.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movies: %w", err)
	}
	return nil
}

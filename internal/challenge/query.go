package challenge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/leapstack-labs/boxoffice/internal/movies"
)

var selectedColumns = []string{
	movies.ColRank,
	movies.ColReleaseDate,
	movies.ColTitle,
	movies.ColBudget,
	movies.ColWorldwide,
	movies.ColDomestic,
}

// queryMovies runs a filtered SELECT against the movies table and returns
// the matching rows as a cleaned frame in release order.
func queryMovies(ctx context.Context, a adapter.Adapter, table, where string, args ...any) (*movies.Frame, error) {
	cols := make([]string, len(selectedColumns))
	for i, c := range selectedColumns {
		cols[i] = adapter.QuoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s, %s",
		strings.Join(cols, ", "), adapter.QuoteIdent(table), where,
		adapter.QuoteIdent(movies.ColReleaseDate), adapter.QuoteIdent(movies.ColRank))

	rows, err := a.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []movies.Movie
	for rows.Next() {
		var (
			m       movies.Movie
			rank    int64
			release string
		)
		if err := rows.Scan(&rank, &release, &m.Title, &m.Budget, &m.Worldwide, &m.Domestic); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		m.Rank = int(rank)
		if m.ReleaseDate, err = time.Parse(movies.DateLayout, release); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", movies.ColReleaseDate, release, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies.FromMovies(out)
}

// countMovies counts rows of table matching where.
func countMovies(ctx context.Context, a adapter.Adapter, table, where string, args ...any) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", adapter.QuoteIdent(table), where)
	var n int64
	if err := a.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

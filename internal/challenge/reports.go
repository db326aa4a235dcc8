package challenge

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"github.com/leapstack-labs/boxoffice/internal/numfmt"
)

func exploreData(_ context.Context, s *Session, r Report) error {
	data := s.Raw()
	rows, cols := data.Shape()
	r.Fact("Shape", fmt.Sprintf("(%d, %d)", rows, cols))
	r.Table(fmt.Sprintf("Sample %d rows", s.Options().SampleSize), s.Sample(data).DataFrame())
	r.Table("Last 5 rows", data.Tail(5).DataFrame())
	r.Fact("Any NaN values?", data.HasNaN())

	duplicates := data.Duplicates()
	r.Fact("Any duplicates?", duplicates.Nrow() > 0)
	r.Fact("Number of duplicates", duplicates.Nrow())
	r.Columns(data.Info())
	return nil
}

func cleanData(_ context.Context, s *Session, r Report) error {
	cleaned, err := s.Cleaned()
	if err != nil {
		return err
	}
	r.Columns(cleaned.Info())
	return nil
}

func descriptiveStats(_ context.Context, s *Session, r Report) error {
	data, err := s.Cleaned()
	if err != nil {
		return err
	}
	desc, err := data.Describe()
	if err != nil {
		return err
	}
	r.Table("Descriptive statistics", desc)
	r.Table("Lowest budget", data.WhereEq(movies.ColBudget, 1100.0).DataFrame())
	r.Table("Highest budget", data.WhereEq(movies.ColBudget, 425_000_000.0).DataFrame())
	return nil
}

func zeroRevenue(_ context.Context, s *Session, r Report) error {
	data, err := s.Cleaned()
	if err != nil {
		return err
	}

	zeroDomestic := data.WhereEq(movies.ColDomestic, 0.0)
	r.Fact("Number of films that grossed $0 domestically", zeroDomestic.Nrow())
	r.Table("Zero domestic gross", zeroDomestic.SortBy(movies.ColBudget, true).DataFrame())

	zeroWorldwide := data.WhereEq(movies.ColWorldwide, 0.0)
	r.Fact("Number of films that grossed $0 worldwide", zeroWorldwide.Nrow())
	r.Table("Zero worldwide gross", zeroWorldwide.SortBy(movies.ColBudget, true).DataFrame())
	return nil
}

func internationalReleases(ctx context.Context, s *Session, r Report) error {
	data, err := s.Cleaned()
	if err != nil {
		return err
	}

	international := data.WhereAll(
		movies.Eq(movies.ColDomestic, 0.0),
		movies.Neq(movies.ColWorldwide, 0.0),
	)
	r.Fact("Number of international releases", international.Nrow())
	r.Table("International releases", international.Head(5).DataFrame())

	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	queried, err := queryMovies(ctx, store, s.Options().Table,
		fmt.Sprintf("%s = 0 AND %s <> 0",
			adapter.QuoteIdent(movies.ColDomestic), adapter.QuoteIdent(movies.ColWorldwide)))
	if err != nil {
		return err
	}
	r.Fact("Number of international releases (query)", queried.Nrow())
	r.Table("International releases (query)", queried.Tail(5).DataFrame())
	return nil
}

func unreleasedFilms(_ context.Context, s *Session, r Report) error {
	cleaned, err := s.Cleaned()
	if err != nil {
		return err
	}
	future, err := s.Unreleased()
	if err != nil {
		return err
	}
	r.Fact("Number of unreleased movies", future.Nrow())
	r.Table("Unreleased movies", future.DataFrame())

	released, err := s.Released()
	if err != nil {
		return err
	}
	r.Fact("Number of rows dropped", cleaned.Nrow()-released.Nrow())
	return nil
}

func moneyLosing(ctx context.Context, s *Session, r Report) error {
	released, err := s.Released()
	if err != nil {
		return err
	}
	if released.Nrow() == 0 {
		return fmt.Errorf("no released films to compare")
	}
	losing, err := released.WhereFunc(func(m movies.Movie) bool {
		return m.Budget > m.Worldwide
	})
	if err != nil {
		return err
	}
	r.Fact("Fraction money losing (loc)", numfmt.Fixed(float64(losing.Nrow())/float64(released.Nrow()), 4))

	store, err := s.Store(ctx)
	if err != nil {
		return err
	}
	releasedBefore := fmt.Sprintf("%s < %s", adapter.QuoteIdent(movies.ColReleaseDate), store.Placeholder(1))
	scrape := s.Options().ScrapeDate.Format(movies.DateLayout)

	total, err := countMovies(ctx, store, s.Options().Table, releasedBefore, scrape)
	if err != nil {
		return err
	}
	lost, err := countMovies(ctx, store, s.Options().Table,
		fmt.Sprintf("%s AND %s > %s", releasedBefore,
			adapter.QuoteIdent(movies.ColBudget), adapter.QuoteIdent(movies.ColWorldwide)),
		scrape)
	if err != nil {
		return err
	}
	if total == 0 {
		return fmt.Errorf("no released films in table %s", s.Options().Table)
	}
	r.Fact("Fraction money losing (query)", numfmt.Fixed(float64(lost)/float64(total), 4))
	return nil
}

func addDecades(_ context.Context, s *Session, r Report) error {
	f, err := s.WithDecades()
	if err != nil {
		return err
	}
	r.Table("Release decades", f.Select(movies.ColReleaseDate, movies.ColDecade).Head(5).DataFrame())
	return nil
}

func splitOldNew(_ context.Context, s *Session, r Report) error {
	oldFilms, err := s.Old()
	if err != nil {
		return err
	}
	newFilms, err := s.New()
	if err != nil {
		return err
	}
	r.Fact("Old films count", oldFilms.Nrow())
	r.Fact("New films count", newFilms.Nrow())

	if oldFilms.Nrow() > 0 {
		desc, err := oldFilms.Describe()
		if err != nil {
			return err
		}
		r.Table("Old films statistics", desc)
	}
	r.Table("Old films by budget", oldFilms.SortBy(movies.ColBudget, true).Head(5).DataFrame())
	return nil
}

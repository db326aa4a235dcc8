package challenge

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/boxoffice/internal/movies"
	"github.com/leapstack-labs/boxoffice/internal/numfmt"
	"github.com/leapstack-labs/boxoffice/internal/regression"
)

// FitBudgetRevenue regresses worldwide gross on production budget.
func FitBudgetRevenue(f *movies.Frame) (*regression.Model, error) {
	m, err := regression.Fit(f.Floats(movies.ColBudget), f.Floats(movies.ColWorldwide))
	if err != nil {
		return nil, fmt.Errorf("failed to fit budget against worldwide gross: %w", err)
	}
	return m, nil
}

// ReportModel writes the fitted intercept, slope and r-squared.
func ReportModel(r Report, m *regression.Model) {
	r.Fact("The intercept is", numfmt.Grouped(m.Intercept, 2))
	r.Fact("The slope coefficient is", numfmt.Grouped(m.Slope, 6))
	r.Fact("The r-squared is", numfmt.Fixed(m.RSquared, 4))
}

func regressNew(_ context.Context, s *Session, r Report) error {
	newFilms, err := s.New()
	if err != nil {
		return err
	}
	m, err := FitBudgetRevenue(newFilms)
	if err != nil {
		return err
	}
	s.Logger().Debug("fitted regression", "n", m.N, "r_squared", m.RSquared)
	ReportModel(r, m)
	return nil
}

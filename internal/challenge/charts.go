package challenge

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leapstack-labs/boxoffice/internal/chart"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"gonum.org/v1/plot"
)

const (
	budgetLabel  = "Budget in $100 millions"
	revenueLabel = "Revenue in $ billions"
	maxBudget    = 450_000_000
	maxRevenue   = 3_000_000_000
)

// budgetRevenueAxes are the fixed axes of the budget against revenue charts.
var budgetRevenueAxes = chart.Axes{
	XLabel: budgetLabel,
	YLabel: revenueLabel,
	XRange: &chart.Range{Min: 0, Max: maxBudget},
	YRange: &chart.Range{Min: 0, Max: maxRevenue},
	XScale: 1e8,
	YScale: 1e9,
}

func budgetRevenuePoints(f *movies.Frame) ([]chart.Point, error) {
	rows, err := f.Movies()
	if err != nil {
		return nil, err
	}
	points := make([]chart.Point, len(rows))
	for i, m := range rows {
		points[i] = chart.Point{X: m.Budget, Y: m.Worldwide, Value: m.Worldwide}
	}
	return points, nil
}

func scatterReleased(s *Session, r Report, number int, opts chart.ScatterOptions) error {
	released, err := s.Released()
	if err != nil {
		return err
	}
	points, err := budgetRevenuePoints(released)
	if err != nil {
		return err
	}
	p, err := chart.Scatter(points, opts)
	if err != nil {
		return err
	}
	return s.saveChallengeFigure(number, p, r)
}

func scatterBasic(_ context.Context, s *Session, r Report) error {
	return scatterReleased(s, r, 8, chart.ScatterOptions{Axes: budgetRevenueAxes})
}

func scatterHueSize(_ context.Context, s *Session, r Report) error {
	return scatterReleased(s, r, 9, chart.ScatterOptions{Axes: budgetRevenueAxes, Hue: true, Size: true})
}

func scatterStyled(_ context.Context, s *Session, r Report) error {
	return scatterReleased(s, r, 10, chart.ScatterOptions{
		Axes:  budgetRevenueAxes,
		Hue:   true,
		Size:  true,
		Style: chart.StyleDarkGrid,
	})
}

func bubbleOverTime(_ context.Context, s *Session, r Report) error {
	released, err := s.Released()
	if err != nil {
		return err
	}
	rows, err := released.Movies()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no released films to plot")
	}

	points := make([]chart.Point, len(rows))
	first, last := rows[0].ReleaseDate, rows[0].ReleaseDate
	for i, m := range rows {
		points[i] = chart.Point{X: float64(m.ReleaseDate.Unix()), Y: m.Budget, Value: m.Worldwide}
		if m.ReleaseDate.Before(first) {
			first = m.ReleaseDate
		}
		if m.ReleaseDate.After(last) {
			last = m.ReleaseDate
		}
	}

	p, err := chart.Scatter(points, chart.ScatterOptions{
		Axes: chart.Axes{
			XLabel: "Year",
			YLabel: budgetLabel,
			XRange: &chart.Range{Min: float64(first.Unix()), Max: float64(last.Unix())},
			YRange: &chart.Range{Min: 0, Max: maxBudget},
			YScale: 1e8,
			TimeX:  true,
		},
		Style: chart.StyleDarkGrid,
		Hue:   true,
		Size:  true,
	})
	if err != nil {
		return err
	}
	return s.saveChallengeFigure(11, p, r)
}

func regPlotOld(_ context.Context, s *Session, r Report) error {
	oldFilms, err := s.Old()
	if err != nil {
		return err
	}
	return s.regPlot(14, oldFilms, chart.RegOptions{
		Axes: chart.Axes{XLabel: movies.ColBudget, YLabel: movies.ColWorldwide},
	}, r)
}

func regPlotOldStyled(_ context.Context, s *Session, r Report) error {
	oldFilms, err := s.Old()
	if err != nil {
		return err
	}
	black, err := chart.Hex("#000000")
	if err != nil {
		return err
	}
	return s.regPlot(15, oldFilms, chart.RegOptions{
		Axes:       chart.Axes{XLabel: movies.ColBudget, YLabel: movies.ColWorldwide},
		Style:      chart.StyleWhiteGrid,
		PointAlpha: 0.4,
		LineColor:  black,
	}, r)
}

func regPlotNew(_ context.Context, s *Session, r Report) error {
	newFilms, err := s.New()
	if err != nil {
		return err
	}
	pointColor, err := chart.Hex("#2f4b7c")
	if err != nil {
		return err
	}
	lineColor, err := chart.Hex("#ff7c43")
	if err != nil {
		return err
	}
	return s.regPlot(16, newFilms, chart.RegOptions{
		Axes:       budgetRevenueAxes,
		Style:      chart.StyleDarkGrid,
		PointColor: pointColor,
		PointAlpha: 0.3,
		LineColor:  lineColor,
	}, r)
}

func (s *Session) regPlot(number int, f *movies.Frame, opts chart.RegOptions, r Report) error {
	p, _, err := chart.RegPlot(f.Floats(movies.ColBudget), f.Floats(movies.ColWorldwide), opts)
	if err != nil {
		return err
	}
	return s.saveChallengeFigure(number, p, r)
}

func (s *Session) saveChallengeFigure(number int, p *plot.Plot, r Report) error {
	c, ok := Lookup(strconv.Itoa(number))
	if !ok {
		return fmt.Errorf("unknown challenge %d", number)
	}
	return s.SaveFigure(c, p, r)
}

package movies

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Eq builds a column == value filter.
func Eq(col string, v any) dataframe.F {
	return dataframe.F{Colname: col, Comparator: series.Eq, Comparando: v}
}

// Neq builds a column != value filter.
func Neq(col string, v any) dataframe.F {
	return dataframe.F{Colname: col, Comparator: series.Neq, Comparando: v}
}

// WhereEq keeps rows where col == v.
func (f *Frame) WhereEq(col string, v any) *Frame {
	return f.derive(f.df.Filter(Eq(col, v)))
}

// WhereNeq keeps rows where col != v.
func (f *Frame) WhereNeq(col string, v any) *Frame {
	return f.derive(f.df.Filter(Neq(col, v)))
}

// WhereAll keeps rows matching every filter.
func (f *Frame) WhereAll(filters ...dataframe.F) *Frame {
	return f.derive(f.df.FilterAggregation(dataframe.And, filters...))
}

// WhereFunc keeps rows whose typed Movie satisfies pred. It is meant for
// predicates spanning several columns.
func (f *Frame) WhereFunc(pred func(Movie) bool) (*Frame, error) {
	rows, err := f.Movies()
	if err != nil {
		return nil, err
	}
	idx := make([]int, 0, len(rows))
	for i, m := range rows {
		if pred(m) {
			idx = append(idx, i)
		}
	}
	return f.derive(f.df.Subset(idx)), nil
}

// releaseDateFilter keeps rows whose parsed Release_Date satisfies keep.
func releaseDateFilter(keep func(release time.Time) bool) dataframe.F {
	return dataframe.F{
		Colname:    ColReleaseDate,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool {
			release, err := time.Parse(DateLayout, el.String())
			if err != nil {
				return false
			}
			return keep(release)
		},
	}
}

// ReleasedOnOrAfter keeps films released on or after t.
func (f *Frame) ReleasedOnOrAfter(t time.Time) (*Frame, error) {
	if !f.cleaned {
		return nil, fmt.Errorf("release dates are not cleaned yet")
	}
	day := truncateDay(t)
	return f.derive(f.df.Filter(releaseDateFilter(func(r time.Time) bool {
		return !r.Before(day)
	}))), nil
}

// ReleasedBefore keeps films released strictly before t.
func (f *Frame) ReleasedBefore(t time.Time) (*Frame, error) {
	if !f.cleaned {
		return nil, fmt.Errorf("release dates are not cleaned yet")
	}
	day := truncateDay(t)
	return f.derive(f.df.Filter(releaseDateFilter(func(r time.Time) bool {
		return r.Before(day)
	}))), nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DecadeOf returns the decade a year falls in, e.g. 1994 -> 1990.
func DecadeOf(year int) int {
	return (year / 10) * 10
}

// WithDecade adds the Decade column derived from Release_Date.
func (f *Frame) WithDecade() (*Frame, error) {
	if !f.cleaned {
		return nil, fmt.Errorf("release dates are not cleaned yet")
	}
	raw := f.df.Col(ColReleaseDate).Records()
	decades := make([]int, len(raw))
	for i, s := range raw {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, &ParseError{Row: i, Column: ColReleaseDate, Value: s, Err: err}
		}
		decades[i] = DecadeOf(t.Year())
	}
	df := f.df.Mutate(series.New(decades, series.Int, ColDecade))
	if df.Err != nil {
		return nil, df.Err
	}
	return f.derive(df), nil
}

// DecadeAtMost keeps films from decade d or earlier.
func (f *Frame) DecadeAtMost(d int) (*Frame, error) {
	if !f.HasColumn(ColDecade) {
		return nil, fmt.Errorf("frame has no %s column", ColDecade)
	}
	return f.derive(f.df.Filter(dataframe.F{Colname: ColDecade, Comparator: series.LessEq, Comparando: d})), nil
}

// DecadeAfter keeps films from decades after d.
func (f *Frame) DecadeAfter(d int) (*Frame, error) {
	if !f.HasColumn(ColDecade) {
		return nil, fmt.Errorf("frame has no %s column", ColDecade)
	}
	return f.derive(f.df.Filter(dataframe.F{Colname: ColDecade, Comparator: series.Greater, Comparando: d})), nil
}

// Movies returns the rows as typed values. The frame must be cleaned.
func (f *Frame) Movies() ([]Movie, error) {
	if !f.cleaned {
		return nil, fmt.Errorf("frame is not cleaned yet")
	}
	n := f.Nrow()
	ranks, err := f.df.Col(ColRank).Int()
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", ColRank, err)
	}
	dates := f.df.Col(ColReleaseDate).Records()
	titles := f.df.Col(ColTitle).Records()
	budget := f.df.Col(ColBudget).Float()
	worldwide := f.df.Col(ColWorldwide).Float()
	domestic := f.df.Col(ColDomestic).Float()

	var decades []int
	if f.HasColumn(ColDecade) {
		if decades, err = f.df.Col(ColDecade).Int(); err != nil {
			return nil, fmt.Errorf("column %s: %w", ColDecade, err)
		}
	}

	out := make([]Movie, n)
	for i := 0; i < n; i++ {
		release, err := time.Parse(DateLayout, dates[i])
		if err != nil {
			return nil, &ParseError{Row: i, Column: ColReleaseDate, Value: dates[i], Err: err}
		}
		out[i] = Movie{
			Rank:        ranks[i],
			ReleaseDate: release,
			Title:       titles[i],
			Budget:      budget[i],
			Worldwide:   worldwide[i],
			Domestic:    domestic[i],
		}
		if decades != nil {
			out[i].Decade = decades[i]
		}
	}
	return out, nil
}

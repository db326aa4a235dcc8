// Package movies holds the movie budget/revenue dataset and the dataframe
// operations the analysis runs over it.
package movies

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Dataset column names.
const (
	ColRank        = "Rank"
	ColReleaseDate = "Release_Date"
	ColTitle       = "Movie_Title"
	ColBudget      = "USD_Production_Budget"
	ColWorldwide   = "USD_Worldwide_Gross"
	ColDomestic    = "USD_Domestic_Gross"
	ColDecade      = "Decade"
)

// MoneyColumns are the currency-formatted columns cleaned into floats.
var MoneyColumns = []string{ColBudget, ColWorldwide, ColDomestic}

// RequiredColumns must be present in every loaded dataset.
var RequiredColumns = []string{ColRank, ColReleaseDate, ColTitle, ColBudget, ColWorldwide, ColDomestic}

// Movie is one typed row of a cleaned frame.
type Movie struct {
	Rank        int       `json:"rank"`
	ReleaseDate time.Time `json:"release_date"`
	Title       string    `json:"title"`
	Budget      float64   `json:"budget"`
	Worldwide   float64   `json:"worldwide_gross"`
	Domestic    float64   `json:"domestic_gross"`
	Decade      int       `json:"decade,omitempty"`
}

// Frame is an immutable view over a gota dataframe. Every operation
// returns a new Frame.
type Frame struct {
	df      dataframe.DataFrame
	cleaned bool
}

// ColumnInfo describes one column, like pandas' DataFrame.info().
type ColumnInfo struct {
	Name     string `json:"name"`
	NonNull  int    `json:"non_null"`
	Type     string `json:"dtype"`
	Position int    `json:"position"`
}

// NewFrame wraps an existing dataframe. cleaned reports whether the money
// and date columns are already normalised.
func NewFrame(df dataframe.DataFrame, cleaned bool) (*Frame, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Frame{df: df, cleaned: cleaned}, nil
}

func (f *Frame) derive(df dataframe.DataFrame) *Frame {
	return &Frame{df: df, cleaned: f.cleaned}
}

// DataFrame returns the underlying gota dataframe.
func (f *Frame) DataFrame() dataframe.DataFrame { return f.df }

// Cleaned reports whether the money and date columns have been normalised.
func (f *Frame) Cleaned() bool { return f.cleaned }

// Err returns any error carried by the underlying dataframe.
func (f *Frame) Err() error { return f.df.Err }

// Nrow returns the number of rows.
func (f *Frame) Nrow() int { return f.df.Nrow() }

// Shape returns (rows, columns).
func (f *Frame) Shape() (int, int) { return f.df.Dims() }

// Columns returns the column names in order.
func (f *Frame) Columns() []string { return f.df.Names() }

// HasColumn reports whether name is a column of the frame.
func (f *Frame) HasColumn(name string) bool {
	for _, n := range f.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	return f.rows(0, min(n, f.Nrow()))
}

// Tail returns the last n rows.
func (f *Frame) Tail(n int) *Frame {
	total := f.Nrow()
	return f.rows(max(total-n, 0), total)
}

func (f *Frame) rows(from, to int) *Frame {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return f.derive(f.df.Subset(idx))
}

// Sample returns n rows drawn without replacement.
func (f *Frame) Sample(n int, rng *rand.Rand) *Frame {
	n = min(n, f.Nrow())
	perm := rng.Perm(f.Nrow())
	return f.derive(f.df.Subset(perm[:n]))
}

// Select keeps only the named columns.
func (f *Frame) Select(cols ...string) *Frame {
	return f.derive(f.df.Select(cols))
}

// HasNaN reports whether any cell holds a missing value.
func (f *Frame) HasNaN() bool {
	for _, name := range f.df.Names() {
		for _, na := range f.df.Col(name).IsNaN() {
			if na {
				return true
			}
		}
	}
	return false
}

// Duplicated flags every row identical to an earlier row. The first
// occurrence of a row is never flagged.
func (f *Frame) Duplicated() []bool {
	records := f.df.Records()
	flags := make([]bool, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	// Records()[0] is the header row.
	for _, rec := range records[1:] {
		key := strings.Join(rec, "\x1f")
		_, dup := seen[key]
		flags = append(flags, dup)
		seen[key] = struct{}{}
	}
	return flags
}

// Duplicates returns the rows flagged by Duplicated.
func (f *Frame) Duplicates() *Frame {
	var idx []int
	for i, dup := range f.Duplicated() {
		if dup {
			idx = append(idx, i)
		}
	}
	return f.derive(f.df.Subset(idx))
}

// Info reports name, non-null count and dtype for every column.
func (f *Frame) Info() []ColumnInfo {
	names := f.df.Names()
	types := f.df.Types()
	out := make([]ColumnInfo, 0, len(names))
	for i, name := range names {
		nonNull := 0
		for _, na := range f.df.Col(name).IsNaN() {
			if !na {
				nonNull++
			}
		}
		out = append(out, ColumnInfo{
			Name:     name,
			NonNull:  nonNull,
			Type:     string(types[i]),
			Position: i,
		})
	}
	return out
}

// NumericColumns returns the int and float columns.
func (f *Frame) NumericColumns() []string {
	var cols []string
	names := f.df.Names()
	for i, t := range f.df.Types() {
		if t == series.Int || t == series.Float {
			cols = append(cols, names[i])
		}
	}
	return cols
}

// Describe computes descriptive statistics of the numeric columns. The
// result has a leading "column" label column and one row per statistic,
// starting with count.
func (f *Frame) Describe() (dataframe.DataFrame, error) {
	numeric := f.NumericColumns()
	if len(numeric) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no numeric columns to describe")
	}
	if f.Nrow() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("cannot describe an empty frame")
	}

	desc := f.df.Select(numeric).Describe()
	if desc.Err != nil {
		return desc, desc.Err
	}

	counts := make([]series.Series, 0, len(numeric)+1)
	counts = append(counts, series.New([]string{"count"}, series.String, desc.Names()[0]))
	for _, name := range numeric {
		n := 0
		for _, na := range f.df.Col(name).IsNaN() {
			if !na {
				n++
			}
		}
		counts = append(counts, series.New([]float64{float64(n)}, series.Float, name))
	}
	countRow := dataframe.New(counts...)
	out := countRow.RBind(desc)
	return out, out.Err
}

// SortBy orders rows by col.
func (f *Frame) SortBy(col string, desc bool) *Frame {
	order := dataframe.Sort(col)
	if desc {
		order = dataframe.RevSort(col)
	}
	return f.derive(f.df.Arrange(order))
}

// Floats returns a numeric column as float64 values.
func (f *Frame) Floats(col string) []float64 {
	return f.df.Col(col).Float()
}

// String renders the frame with gota's default formatting.
func (f *Frame) String() string {
	return f.df.String()
}

// FromMovies builds a cleaned frame from typed rows. The Decade column is
// included when any row carries one.
func FromMovies(rows []Movie) (*Frame, error) {
	n := len(rows)
	ranks := make([]int, n)
	dates := make([]string, n)
	titles := make([]string, n)
	budget := make([]float64, n)
	worldwide := make([]float64, n)
	domestic := make([]float64, n)
	decades := make([]int, n)
	withDecade := false
	for i, m := range rows {
		ranks[i] = m.Rank
		dates[i] = m.ReleaseDate.Format(DateLayout)
		titles[i] = m.Title
		budget[i] = m.Budget
		worldwide[i] = m.Worldwide
		domestic[i] = m.Domestic
		decades[i] = m.Decade
		withDecade = withDecade || m.Decade != 0
	}

	cols := []series.Series{
		series.New(ranks, series.Int, ColRank),
		series.New(dates, series.String, ColReleaseDate),
		series.New(titles, series.String, ColTitle),
		series.New(budget, series.Float, ColBudget),
		series.New(worldwide, series.Float, ColWorldwide),
		series.New(domestic, series.Float, ColDomestic),
	}
	if withDecade {
		cols = append(cols, series.New(decades, series.Int, ColDecade))
	}
	return NewFrame(dataframe.New(cols...), true)
}

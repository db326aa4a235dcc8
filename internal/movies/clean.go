package movies

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"
)

// DateLayout is the storage format of Release_Date after cleaning.
const DateLayout = "2006-01-02"

// releaseDateLayouts are tried in order when parsing raw release dates.
var releaseDateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	DateLayout,
	"2006-01-02 15:04:05",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
}

// moneyReplacer strips the characters that keep currency values from
// parsing as numbers.
var moneyReplacer = strings.NewReplacer(",", "", "$", "")

// ParseError reports a cell that could not be converted during cleaning.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d column %s: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseMoney converts a currency string such as "$1,100,000" to a float.
func ParseMoney(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(moneyReplacer.Replace(s)), 64)
}

// ParseReleaseDate parses a release date in any of the accepted layouts.
func ParseReleaseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date format")
}

// Clean strips "," and "$" from the money columns, converts them to floats
// and normalises Release_Date to ISO dates. The input frame is unchanged.
func Clean(f *Frame) (*Frame, error) {
	if f.cleaned {
		return f, nil
	}
	df := f.df

	for _, col := range MoneyColumns {
		raw := df.Col(col).Records()
		values := make([]float64, len(raw))
		for i, s := range raw {
			v, err := ParseMoney(s)
			if err != nil {
				return nil, &ParseError{Row: i, Column: col, Value: s, Err: err}
			}
			values[i] = v
		}
		df = df.Mutate(series.New(values, series.Float, col))
		if df.Err != nil {
			return nil, fmt.Errorf("failed to replace column %s: %w", col, df.Err)
		}
	}

	raw := df.Col(ColReleaseDate).Records()
	dates := make([]string, len(raw))
	for i, s := range raw {
		t, err := ParseReleaseDate(s)
		if err != nil {
			return nil, &ParseError{Row: i, Column: ColReleaseDate, Value: s, Err: err}
		}
		dates[i] = t.Format(DateLayout)
	}
	df = df.Mutate(series.New(dates, series.String, ColReleaseDate))
	if df.Err != nil {
		return nil, fmt.Errorf("failed to replace column %s: %w", ColReleaseDate, df.Err)
	}

	return &Frame{df: df, cleaned: true}, nil
}

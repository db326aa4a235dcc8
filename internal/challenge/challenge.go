// Package challenge implements the numbered analysis steps over the movie
// dataset and the walkthrough that runs them.
package challenge

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/leapstack-labs/boxoffice/internal/movies"
)

// Kind classifies what a challenge produces.
type Kind string

// Challenge kinds.
const (
	KindReport Kind = "report"
	KindChart  Kind = "chart"
	KindModel  Kind = "model"
)

// Report receives the results of a challenge.
type Report interface {
	Section(number int, title string)
	Fact(label string, value any)
	Table(title string, df dataframe.DataFrame)
	Columns(info []movies.ColumnInfo)
	Figure(title, path string)
}

// Challenge is one numbered analysis step.
type Challenge struct {
	Number      int
	Slug        string
	Description string
	Kind        Kind
	Run         func(ctx context.Context, s *Session, r Report) error
}

// All returns every challenge in walkthrough order.
func All() []Challenge {
	return []Challenge{
		{1, "explore", "Explore data shape, samples, duplicates, and data types", KindReport, exploreData},
		{2, "clean", "Clean monetary columns and convert dates", KindReport, cleanData},
		{3, "describe", "Generate descriptive statistics and investigate outliers", KindReport, descriptiveStats},
		{4, "zero-revenue", "Analyze films with zero domestic or worldwide gross", KindReport, zeroRevenue},
		{5, "international", "Filter films zero domestic gross but non-zero worldwide gross", KindReport, internationalReleases},
		{6, "unreleased", "Identify unreleased films as of scrape date and clean data", KindReport, unreleasedFilms},
		{7, "money-losing", "Calculate fraction of money-losing films by comparing budget and worldwide gross", KindReport, moneyLosing},
		{8, "scatter", "Plot scatterplot of production budget vs worldwide gross", KindChart, scatterBasic},
		{9, "scatter-hue", "Plot scatterplot with color and size mapped to worldwide gross", KindChart, scatterHueSize},
		{10, "scatter-styled", "Scatterplot with seaborn style context", KindChart, scatterStyled},
		{11, "bubble", "Bubble chart showing releases over time with budget and revenue", KindChart, bubbleOverTime},
		{12, "decades", "Add a Decade column for release decade", KindReport, addDecades},
		{13, "old-new", "Split data into old films (<=1960s) and new films (>1960s)", KindReport, splitOldNew},
		{14, "regplot-old", "Regression plot for old films", KindChart, regPlotOld},
		{15, "regplot-old-styled", "Styled regression plot for old films", KindChart, regPlotOldStyled},
		{16, "regplot-new", "Regression plot for new films with styling", KindChart, regPlotNew},
		{17, "regress-new", "Fit linear regression for new films and print stats", KindModel, regressNew},
	}
}

// Lookup finds a challenge by number or slug.
func Lookup(key string) (Challenge, bool) {
	key = strings.TrimSpace(key)
	n, numErr := strconv.Atoi(key)
	for _, c := range All() {
		if (numErr == nil && c.Number == n) || c.Slug == key {
			return c, true
		}
	}
	return Challenge{}, false
}

// Select parses a comma separated list of numbers, slugs and ranges such
// as "1,5-7,regress-new". The result is in walkthrough order without
// repeats. An empty selection means every challenge.
func Select(selection string) ([]Challenge, error) {
	if strings.TrimSpace(selection) == "" {
		return All(), nil
	}

	picked := make(map[int]bool)
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			from, errLo := strconv.Atoi(lo)
			to, errHi := strconv.Atoi(hi)
			if errLo == nil && errHi == nil {
				if from > to {
					return nil, fmt.Errorf("invalid challenge range %q", part)
				}
				for n := from; n <= to; n++ {
					c, found := Lookup(strconv.Itoa(n))
					if !found {
						return nil, fmt.Errorf("unknown challenge %d in range %q", n, part)
					}
					picked[c.Number] = true
				}
				continue
			}
		}
		c, found := Lookup(part)
		if !found {
			return nil, fmt.Errorf("unknown challenge %q", part)
		}
		picked[c.Number] = true
	}

	var out []Challenge
	for _, c := range All() {
		if picked[c.Number] {
			out = append(out, c)
		}
	}
	return out, nil
}

// OfKind filters challenges by kind.
func OfKind(cs []Challenge, kind Kind) []Challenge {
	var out []Challenge
	for _, c := range cs {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

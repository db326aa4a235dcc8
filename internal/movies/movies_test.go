package movies

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/go-gota/gota/series"
	"github.com/leapstack-labs/boxoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Frame {
	t.Helper()
	f, err := LoadFile(testutil.MoviesCSV(t))
	require.NoError(t, err)
	return f
}

func cleanFixture(t *testing.T) *Frame {
	t.Helper()
	f, err := Clean(loadFixture(t))
	require.NoError(t, err)
	return f
}

func TestLoad_Shape(t *testing.T) {
	f := loadFixture(t)
	rows, cols := f.Shape()
	assert.Equal(t, testutil.FixtureRows, rows)
	assert.Equal(t, testutil.FixtureColumns, cols)
	assert.Equal(t, RequiredColumns, f.Columns())
	assert.False(t, f.Cleaned())
}

func TestLoad_MissingColumns(t *testing.T) {
	_, err := Load(strings.NewReader("Rank,Movie_Title\n1,Avatar\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColBudget)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("does-not-exist.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open dataset")
}

func TestFrame_HeadTailSample(t *testing.T) {
	f := loadFixture(t)

	assert.Equal(t, 5, f.Head(5).Nrow())
	assert.Equal(t, 5, f.Tail(5).Nrow())
	assert.Equal(t, f.Nrow(), f.Head(100).Nrow())

	tail := f.Tail(1).DataFrame().Col(ColTitle).Records()
	assert.Equal(t, []string{"Singularity"}, tail)

	rng := rand.New(rand.NewPCG(1, 2))
	sample := f.Sample(5, rng)
	assert.Equal(t, 5, sample.Nrow())
}

func TestFrame_NaNAndDuplicates(t *testing.T) {
	f := loadFixture(t)

	assert.False(t, f.HasNaN())

	flags := f.Duplicated()
	require.Len(t, flags, testutil.FixtureRows)
	count := 0
	for _, dup := range flags {
		if dup {
			count++
		}
	}
	assert.Equal(t, testutil.FixtureDuplicates, count)
	assert.True(t, flags[6], "second Flop row is the duplicate")
	assert.False(t, flags[5], "first occurrence is not a duplicate")

	dups := f.Duplicates()
	assert.Equal(t, testutil.FixtureDuplicates, dups.Nrow())
}

func TestFrame_Info(t *testing.T) {
	f := loadFixture(t)
	info := f.Info()
	require.Len(t, info, testutil.FixtureColumns)

	byName := map[string]ColumnInfo{}
	for _, ci := range info {
		byName[ci.Name] = ci
	}
	assert.Equal(t, string(series.Int), byName[ColRank].Type)
	assert.Equal(t, string(series.String), byName[ColBudget].Type)
	assert.Equal(t, testutil.FixtureRows, byName[ColTitle].NonNull)
}

func TestLoad_BlankCellsAreMissing(t *testing.T) {
	csv := `Rank,Release_Date,Movie_Title,USD_Production_Budget,USD_Worldwide_Gross,USD_Domestic_Gross
1,12/18/2009,Avatar,"$425,000,000","$2,783,918,982","$760,507,625"
2,5/1/2018,,"$10,000,000",$0,$0
`
	f, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	assert.True(t, f.HasNaN())

	byName := map[string]ColumnInfo{}
	for _, ci := range f.Info() {
		byName[ci.Name] = ci
	}
	assert.Equal(t, 1, byName[ColTitle].NonNull)
	assert.Equal(t, 2, byName[ColBudget].NonNull)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "$110,000", want: 110000},
		{in: "$0", want: 0},
		{in: "$2,783,918,982", want: 2783918982},
		{in: " 1100 ", want: 1100},
		{in: "n/a", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseReleaseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8/2/1915", "1915-08-02"},
		{"12/31/2020", "2020-12-31"},
		{"2018-05-01", "2018-05-01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReleaseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(DateLayout))
		})
	}

	_, err := ParseReleaseDate("sometime in May")
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	raw := loadFixture(t)
	f, err := Clean(raw)
	require.NoError(t, err)

	assert.True(t, f.Cleaned())
	assert.False(t, raw.Cleaned(), "input frame is left untouched")

	for _, col := range MoneyColumns {
		assert.Equal(t, series.Float, f.DataFrame().Col(col).Type(), col)
	}
	budgets := f.Floats(ColBudget)
	assert.InDelta(t, 110000, budgets[0], 1e-9)

	dates := f.DataFrame().Col(ColReleaseDate).Records()
	assert.Equal(t, "1915-08-02", dates[0])

	again, err := Clean(f)
	require.NoError(t, err)
	assert.Same(t, f, again)
}

func TestClean_BadMoney(t *testing.T) {
	csv := "Rank,Release_Date,Movie_Title,USD_Production_Budget,USD_Worldwide_Gross,USD_Domestic_Gross\n" +
		"1,1/1/2000,Broken,\"$1,000\",unknown,$0\n"
	f, err := Load(strings.NewReader(csv))
	require.NoError(t, err)

	_, err = Clean(f)
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ColWorldwide, pe.Column)
	assert.Equal(t, 0, pe.Row)
	assert.Equal(t, "unknown", pe.Value)
}

func TestFrame_Filters(t *testing.T) {
	f := cleanFixture(t)

	assert.Equal(t, 1, f.WhereEq(ColBudget, 1100.0).Nrow())
	avatar := f.WhereEq(ColBudget, 425000000.0)
	require.Equal(t, 1, avatar.Nrow())
	assert.Equal(t, "Avatar", avatar.DataFrame().Col(ColTitle).Records()[0])

	zeroDomestic := f.WhereEq(ColDomestic, 0.0)
	assert.Equal(t, testutil.FixtureZeroDomestic, zeroDomestic.Nrow())
	assert.Equal(t, testutil.FixtureZeroWorldwide, f.WhereEq(ColWorldwide, 0.0).Nrow())

	sorted := zeroDomestic.SortBy(ColBudget, true)
	titles := sorted.DataFrame().Col(ColTitle).Records()
	assert.Equal(t, []string{"Singularity", "Boundary Film", "Overseas Hit", "Intolerance"}, titles)

	intl := f.WhereAll(Eq(ColDomestic, 0.0), Neq(ColWorldwide, 0.0))
	require.Equal(t, testutil.FixtureInternational, intl.Nrow())
	assert.Equal(t, "Overseas Hit", intl.DataFrame().Col(ColTitle).Records()[0])
}

func TestFrame_ReleaseWindow(t *testing.T) {
	f := cleanFixture(t)
	scrape := time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC)

	future, err := f.ReleasedOnOrAfter(scrape)
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureUnreleased, future.Nrow(), "a film released on the scrape date counts as unreleased")

	released, err := f.ReleasedBefore(scrape)
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureReleased, released.Nrow())
	assert.Equal(t, f.Nrow(), future.Nrow()+released.Nrow())

	_, err = loadFixture(t).ReleasedBefore(scrape)
	assert.Error(t, err, "raw frames cannot be filtered by date")
}

func TestFrame_WhereFunc(t *testing.T) {
	f := cleanFixture(t)
	released, err := f.ReleasedBefore(time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	losing, err := released.WhereFunc(func(m Movie) bool { return m.Budget > m.Worldwide })
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureMoneyLosing, losing.Nrow())

	none, err := released.WhereFunc(func(Movie) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, 0, none.Nrow())
}

func TestFrame_Decades(t *testing.T) {
	f := cleanFixture(t)
	released, err := f.ReleasedBefore(time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = released.DecadeAtMost(1960)
	assert.Error(t, err, "split requires the Decade column")

	withDecade, err := released.WithDecade()
	require.NoError(t, err)
	decades, err := withDecade.DataFrame().Col(ColDecade).Int()
	require.NoError(t, err)
	assert.Equal(t, []int{1910, 1910, 1910, 1920, 1960, 1990, 1990, 2000, 2000, 2000}, decades)

	old, err := withDecade.DecadeAtMost(1960)
	require.NoError(t, err)
	recent, err := withDecade.DecadeAfter(1960)
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureOldFilms, old.Nrow())
	assert.Equal(t, testutil.FixtureNewFilms, recent.Nrow())
}

func TestDecadeOf(t *testing.T) {
	assert.Equal(t, 1990, DecadeOf(1994))
	assert.Equal(t, 1960, DecadeOf(1960))
	assert.Equal(t, 2000, DecadeOf(2009))
}

func TestFrame_Movies(t *testing.T) {
	_, err := loadFixture(t).Movies()
	assert.Error(t, err)

	rows, err := cleanFixture(t).Movies()
	require.NoError(t, err)
	require.Len(t, rows, testutil.FixtureRows)

	avatar := rows[9]
	assert.Equal(t, "Avatar", avatar.Title)
	assert.Equal(t, 1, avatar.Rank)
	assert.Equal(t, 2009, avatar.ReleaseDate.Year())
	assert.InDelta(t, 760507625, avatar.Domestic, 1e-6)
}

func TestFrame_Describe(t *testing.T) {
	f := cleanFixture(t)
	desc, err := f.Describe()
	require.NoError(t, err)

	labels := desc.Col(desc.Names()[0]).Records()
	require.NotEmpty(t, labels)
	assert.Equal(t, "count", labels[0])
	assert.Contains(t, labels, "mean")
	assert.Contains(t, labels, "max")

	assert.Contains(t, desc.Names(), ColBudget)
	assert.NotContains(t, desc.Names(), ColTitle)

	counts := desc.Col(ColBudget).Float()
	assert.InDelta(t, float64(testutil.FixtureRows), counts[0], 1e-9)
}

func TestFromMovies(t *testing.T) {
	rows, err := cleanFixture(t).Movies()
	require.NoError(t, err)

	f, err := FromMovies(rows)
	require.NoError(t, err)
	assert.True(t, f.Cleaned())
	assert.Equal(t, RequiredColumns, f.Columns())

	back, err := f.Movies()
	require.NoError(t, err)
	assert.Equal(t, rows, back)

	rows[0].Decade = 1990
	withDecade, err := FromMovies(rows)
	require.NoError(t, err)
	assert.True(t, withDecade.HasColumn(ColDecade))

	empty, err := FromMovies(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Nrow())
}

package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/leapstack-labs/boxoffice/internal/chart"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"gonum.org/v1/plot"
)

// Defaults for Options fields left at their zero value.
var (
	DefaultScrapeDate   = time.Date(2018, time.May, 1, 0, 0, 0, 0, time.UTC)
	DefaultDecadeCutoff = 1960
	DefaultSampleSize   = 5
	DefaultPlotFormat   = "png"
)

// Options configures a Session.
type Options struct {
	// ScrapeDate is the day the dataset was collected. Films released on
	// or after it are unreleased.
	ScrapeDate time.Time
	// DecadeCutoff is the last decade counted as old films.
	DecadeCutoff int
	SampleSize   int
	// SampleSeed makes sampling reproducible when non-zero.
	SampleSeed uint64

	PlotsDir   string
	PlotFormat string
	PlotSize   chart.Size

	// Engine configures the SQL store used by the query steps.
	Engine adapter.Config
	Table  string

	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.ScrapeDate.IsZero() {
		o.ScrapeDate = DefaultScrapeDate
	}
	if o.DecadeCutoff == 0 {
		o.DecadeCutoff = DefaultDecadeCutoff
	}
	if o.SampleSize <= 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.PlotFormat == "" {
		o.PlotFormat = DefaultPlotFormat
	}
	if o.PlotSize.Width == 0 || o.PlotSize.Height == 0 {
		o.PlotSize = chart.DefaultSize
	}
	if o.Engine.Type == "" {
		o.Engine.Type = "duckdb"
	}
	if o.Table == "" {
		o.Table = adapter.DefaultTable
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
}

// Session owns the dataset and derives each analysis stage on first use,
// so any challenge can run without its predecessors.
type Session struct {
	ID     string
	opts   Options
	logger *slog.Logger
	rng    *rand.Rand

	raw         *movies.Frame
	cleaned     *movies.Frame
	released    *movies.Frame
	withDecades *movies.Frame
	oldFilms    *movies.Frame
	newFilms    *movies.Frame
	store       adapter.Adapter
}

// NewSession creates a session over the raw dataset.
func NewSession(raw *movies.Frame, opts Options) *Session {
	opts.setDefaults()
	id := uuid.NewString()

	seed1, seed2 := opts.SampleSeed, opts.SampleSeed
	if opts.SampleSeed == 0 {
		seed1, seed2 = rand.Uint64(), rand.Uint64()
	}

	return &Session{
		ID:     id,
		opts:   opts,
		logger: opts.Logger.With(slog.String("session", id)),
		rng:    rand.New(rand.NewPCG(seed1, seed2)), //nolint:gosec // sampling for display only
		raw:    raw,
	}
}

// Options returns the session options with defaults applied.
func (s *Session) Options() Options { return s.opts }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Raw returns the dataset as loaded.
func (s *Session) Raw() *movies.Frame { return s.raw }

// Cleaned returns the dataset with numeric money columns and ISO dates.
func (s *Session) Cleaned() (*movies.Frame, error) {
	if s.cleaned != nil {
		return s.cleaned, nil
	}
	f, err := movies.Clean(s.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to clean dataset: %w", err)
	}
	s.logger.Debug("cleaned dataset", slog.Int("rows", f.Nrow()))
	s.cleaned = f
	return f, nil
}

// Unreleased returns films released on or after the scrape date.
func (s *Session) Unreleased() (*movies.Frame, error) {
	cleaned, err := s.Cleaned()
	if err != nil {
		return nil, err
	}
	return cleaned.ReleasedOnOrAfter(s.opts.ScrapeDate)
}

// Released returns the cleaned dataset without unreleased films.
func (s *Session) Released() (*movies.Frame, error) {
	if s.released != nil {
		return s.released, nil
	}
	cleaned, err := s.Cleaned()
	if err != nil {
		return nil, err
	}
	f, err := cleaned.ReleasedBefore(s.opts.ScrapeDate)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("dropped unreleased films",
		slog.Int("dropped", cleaned.Nrow()-f.Nrow()),
		slog.String("scrape_date", s.opts.ScrapeDate.Format(movies.DateLayout)))
	s.released = f
	return f, nil
}

// WithDecades returns the released films with a Decade column.
func (s *Session) WithDecades() (*movies.Frame, error) {
	if s.withDecades != nil {
		return s.withDecades, nil
	}
	released, err := s.Released()
	if err != nil {
		return nil, err
	}
	f, err := released.WithDecade()
	if err != nil {
		return nil, err
	}
	s.withDecades = f
	return f, nil
}

// Old returns films from the cutoff decade or earlier.
func (s *Session) Old() (*movies.Frame, error) {
	if s.oldFilms != nil {
		return s.oldFilms, nil
	}
	f, err := s.WithDecades()
	if err != nil {
		return nil, err
	}
	if s.oldFilms, err = f.DecadeAtMost(s.opts.DecadeCutoff); err != nil {
		return nil, err
	}
	return s.oldFilms, nil
}

// New returns films from decades after the cutoff.
func (s *Session) New() (*movies.Frame, error) {
	if s.newFilms != nil {
		return s.newFilms, nil
	}
	f, err := s.WithDecades()
	if err != nil {
		return nil, err
	}
	if s.newFilms, err = f.DecadeAfter(s.opts.DecadeCutoff); err != nil {
		return nil, err
	}
	return s.newFilms, nil
}

// Sample draws the configured number of random rows from f.
func (s *Session) Sample(f *movies.Frame) *movies.Frame {
	return f.Sample(s.opts.SampleSize, s.rng)
}

// Store returns the SQL store holding the cleaned dataset, connecting and
// loading it on first use.
func (s *Session) Store(ctx context.Context) (adapter.Adapter, error) {
	if s.store != nil {
		return s.store, nil
	}
	cleaned, err := s.Cleaned()
	if err != nil {
		return nil, err
	}
	rows, err := cleaned.Movies()
	if err != nil {
		return nil, err
	}

	a, err := adapter.NewAdapter(s.opts.Engine, s.logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, s.opts.Engine); err != nil {
		return nil, err
	}
	if err := adapter.LoadMovies(ctx, a, s.opts.Table, rows); err != nil {
		_ = a.Close()
		return nil, err
	}
	s.logger.Debug("loaded store",
		slog.String("engine", a.DialectName()),
		slog.String("table", s.opts.Table),
		slog.Int("rows", len(rows)))
	s.store = a
	return a, nil
}

// Close releases the SQL store if one was opened.
func (s *Session) Close() error {
	if s.store == nil {
		return nil
	}
	err := s.store.Close()
	s.store = nil
	return err
}

// FigurePath returns where the figure of challenge c is written.
func (s *Session) FigurePath(c Challenge) string {
	name := fmt.Sprintf("%02d-%s.%s", c.Number, c.Slug, s.opts.PlotFormat)
	return filepath.Join(s.opts.PlotsDir, name)
}

// SaveFigure writes p for challenge c and reports its path.
func (s *Session) SaveFigure(c Challenge, p *plot.Plot, r Report) error {
	path := s.FigurePath(c)
	if err := chart.Save(p, path, s.opts.PlotSize); err != nil {
		return err
	}
	s.logger.Info("saved figure", slog.Int("challenge", c.Number), slog.String("path", path))
	r.Figure(c.Description, path)
	return nil
}

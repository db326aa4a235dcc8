// Package config loads boxoffice settings from defaults, boxoffice.yaml,
// BOXOFFICE_* environment variables and command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/leapstack-labs/boxoffice/internal/chart"
	"gonum.org/v1/plot/vg"
)

// PlotConfig holds figure dimensions.
type PlotConfig struct {
	// Width and Height are in inches.
	Width  float64 `koanf:"width" yaml:"width"`
	Height float64 `koanf:"height" yaml:"height"`
	DPI    int     `koanf:"dpi" yaml:"dpi"`
}

// Config holds all CLI configuration options.
type Config struct {
	DataPath     string     `koanf:"data_path" yaml:"data_path"`
	PlotsDir     string     `koanf:"plots_dir" yaml:"plots_dir"`
	PlotFormat   string     `koanf:"plot_format" yaml:"plot_format"`
	Plot         PlotConfig `koanf:"plot" yaml:"plot"`
	ScrapeDate   time.Time  `koanf:"scrape_date" yaml:"scrape_date"`
	DecadeCutoff int        `koanf:"decade_cutoff" yaml:"decade_cutoff"`
	SampleSize   int        `koanf:"sample_size" yaml:"sample_size"`
	SampleSeed   uint64     `koanf:"sample_seed" yaml:"sample_seed"`
	Engine       string     `koanf:"engine" yaml:"engine"`
	Database     string     `koanf:"database" yaml:"database"`
	DSN          string     `koanf:"dsn" yaml:"dsn,omitempty"`
	HistoryPath  string     `koanf:"history_path" yaml:"history_path"`
	OutputFormat string     `koanf:"output" yaml:"output"`
	Verbose      bool       `koanf:"verbose" yaml:"verbose"`
	LogLevel     string     `koanf:"log_level" yaml:"log_level"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values.
const (
	DefaultDataPath     = "data/cost_revenue_dirty.csv"
	DefaultPlotsDir     = "plots"
	DefaultPlotFormat   = "png"
	DefaultPlotWidth    = 8.0
	DefaultPlotHeight   = 4.0
	DefaultPlotDPI      = 200
	DefaultScrapeDate   = "2018-05-01"
	DefaultDecadeCutoff = 1960
	DefaultSampleSize   = 5
	DefaultEngine       = "duckdb"
	DefaultDatabase     = ":memory:"
	DefaultHistoryPath  = ".boxoffice/history.db"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "warn"
)

// PlotFormats lists the supported figure file extensions.
var PlotFormats = []string{"png", "svg", "pdf", "jpg"}

// defaults returns the lowest-priority configuration layer.
func defaults() map[string]any {
	return map[string]any{
		"data_path":     DefaultDataPath,
		"plots_dir":     DefaultPlotsDir,
		"plot_format":   DefaultPlotFormat,
		"plot.width":    DefaultPlotWidth,
		"plot.height":   DefaultPlotHeight,
		"plot.dpi":      DefaultPlotDPI,
		"scrape_date":   DefaultScrapeDate,
		"decade_cutoff": DefaultDecadeCutoff,
		"sample_size":   DefaultSampleSize,
		"sample_seed":   0,
		"engine":        DefaultEngine,
		"database":      DefaultDatabase,
		"dsn":           "",
		"history_path":  DefaultHistoryPath,
		"output":        DefaultOutput,
		"verbose":       false,
		"log_level":     DefaultLogLevel,
	}
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DataPath:     DefaultDataPath,
		PlotsDir:     DefaultPlotsDir,
		PlotFormat:   DefaultPlotFormat,
		Plot:         PlotConfig{Width: DefaultPlotWidth, Height: DefaultPlotHeight, DPI: DefaultPlotDPI},
		ScrapeDate:   time.Date(2018, time.May, 1, 0, 0, 0, 0, time.UTC),
		DecadeCutoff: DefaultDecadeCutoff,
		SampleSize:   DefaultSampleSize,
		Engine:       DefaultEngine,
		Database:     DefaultDatabase,
		HistoryPath:  DefaultHistoryPath,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
	}
}

// AdapterConfig returns the SQL engine settings.
func (c *Config) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type: c.Engine,
		Path: c.Database,
		DSN:  c.DSN,
	}
}

// PlotSize returns the figure size for chart.Save.
func (c *Config) PlotSize() chart.Size {
	return chart.Size{
		Width:  vg.Length(c.Plot.Width) * vg.Inch,
		Height: vg.Length(c.Plot.Height) * vg.Inch,
		DPI:    c.Plot.DPI,
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/leapstack-labs/boxoffice/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return fmt.Errorf("data_path is required")
	}
	if !adapter.IsRegistered(c.Engine) {
		return &adapter.UnknownAdapterError{Type: c.Engine, Available: adapter.ListAdapters()}
	}
	if c.Engine == "postgres" && c.DSN == "" {
		return fmt.Errorf("dsn is required for the postgres engine")
	}
	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("plot width and height must be positive, got %gx%g", c.Plot.Width, c.Plot.Height)
	}
	if c.Plot.DPI <= 0 {
		return fmt.Errorf("plot dpi must be positive, got %d", c.Plot.DPI)
	}
	if !slices.Contains(PlotFormats, c.PlotFormat) {
		return fmt.Errorf("unknown plot_format %q (want one of %v)", c.PlotFormat, PlotFormats)
	}
	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("unknown output mode %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", c.SampleSize)
	}
	if c.DecadeCutoff%10 != 0 {
		return fmt.Errorf("decade_cutoff must be a decade such as 1960, got %d", c.DecadeCutoff)
	}
	if c.ScrapeDate.IsZero() {
		return fmt.Errorf("scrape_date is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// ValidateDataPath checks that the dataset exists.
func (c *Config) ValidateDataPath() error {
	if _, err := os.Stat(c.DataPath); os.IsNotExist(err) {
		return fmt.Errorf("dataset does not exist: %s\nHint: use --data or data_path in boxoffice.yaml to point at the CSV", c.DataPath)
	}
	return nil
}

// SlogLevel parses LogLevel. Verbose lowers the level to debug.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
		}
	} else {
		level = slog.LevelWarn
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	return level, nil
}

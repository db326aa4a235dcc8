package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

// newFlags mirrors the persistent flags of the root command.
func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data", "", "")
	flags.String("plots-dir", "", "")
	flags.String("engine", "", "")
	flags.StringP("output", "o", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("log-level", "", "")
	return flags
}

// inTempDir runs the test from an empty directory with no config file.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	ResetConfig()
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "boxoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := inTempDir(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	// t.TempDir may sit behind a symlink, so compare against the resolved root.
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultDataPath), cfg.DataPath)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultPlotsDir), cfg.PlotsDir)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultHistoryPath), cfg.HistoryPath)
	assert.Equal(t, filepath.Base(dir), filepath.Base(cfg.ProjectRoot))
	assert.Equal(t, DefaultEngine, cfg.Engine)
	assert.Equal(t, ":memory:", cfg.Database)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultDecadeCutoff, cfg.DecadeCutoff)
	assert.Equal(t, DefaultSampleSize, cfg.SampleSize)
	assert.Equal(t, time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC), cfg.ScrapeDate)
	assert.Equal(t, PlotConfig{Width: 8, Height: 4, DPI: 200}, cfg.Plot)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	dir := inTempDir(t)
	path := writeConfig(t, dir, `
data_path: datasets/movies.csv
plots_dir: out/figures
plot_format: SVG
plot:
  width: 6
  dpi: 100
scrape_date: "2019-01-15"
decade_cutoff: 1970
sample_seed: 7
engine: SQLite
database: store.db
history_path: ""
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	root := cfg.ProjectRoot
	assert.Equal(t, filepath.Join(root, "datasets/movies.csv"), cfg.DataPath)
	assert.Equal(t, filepath.Join(root, "out/figures"), cfg.PlotsDir)
	assert.Equal(t, filepath.Join(root, "store.db"), cfg.Database)
	assert.Empty(t, cfg.HistoryPath)
	assert.Equal(t, "svg", cfg.PlotFormat)
	assert.Equal(t, "sqlite", cfg.Engine)
	assert.Equal(t, PlotConfig{Width: 6, Height: DefaultPlotHeight, DPI: 100}, cfg.Plot)
	assert.Equal(t, time.Date(2019, 1, 15, 0, 0, 0, 0, time.UTC), cfg.ScrapeDate)
	assert.Equal(t, 1970, cfg.DecadeCutoff)
	assert.Equal(t, uint64(7), cfg.SampleSeed)
	assert.Equal(t, path, GetConfigFileUsed())

	size := cfg.PlotSize()
	assert.Equal(t, 6*vg.Inch, size.Width)
	assert.Equal(t, 100, size.DPI)

	ac := cfg.AdapterConfig()
	assert.Equal(t, "sqlite", ac.Type)
	assert.Equal(t, cfg.Database, ac.Path)
}

func TestLoadConfig_FoundUpward(t *testing.T) {
	dir := inTempDir(t)
	writeConfig(t, dir, "sample_size: 3\n")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SampleSize)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultDataPath), cfg.DataPath)
	assert.Equal(t, "boxoffice.yaml", filepath.Base(GetConfigFileUsed()))
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := inTempDir(t)
	writeConfig(t, dir, "engine: duckdb\noutput: text\nsample_size: 3\n")
	t.Setenv("BOXOFFICE_ENGINE", "sqlite")
	t.Setenv("BOXOFFICE_OUTPUT", "markdown")
	t.Setenv("BOXOFFICE_PLOT__DPI", "72")
	t.Setenv("BOXOFFICE_SCRAPE_DATE", "2017-12-31")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"-o", "json", "--data", "other.csv", "-v"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Engine, "env overrides file")
	assert.Equal(t, "json", cfg.OutputFormat, "flag overrides env")
	assert.Equal(t, 3, cfg.SampleSize, "file overrides defaults")
	assert.Equal(t, 72, cfg.Plot.DPI)
	assert.Equal(t, time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC), cfg.ScrapeDate)
	assert.True(t, cfg.Verbose)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "other.csv"), cfg.DataPath)
}

func TestLoadConfig_UnsetFlagsIgnored(t *testing.T) {
	dir := inTempDir(t)
	writeConfig(t, dir, "output: text\n")

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.OutputFormat)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{name: "unknown engine", content: "engine: oracle\n", errSubstr: "Available engines"},
		{name: "postgres without dsn", content: "engine: postgres\n", errSubstr: "dsn is required"},
		{name: "bad plot size", content: "plot:\n  width: 0\n", errSubstr: "must be positive"},
		{name: "bad dpi", content: "plot:\n  dpi: -1\n", errSubstr: "dpi must be positive"},
		{name: "bad format", content: "plot_format: gif\n", errSubstr: "unknown plot_format"},
		{name: "bad output", content: "output: yaml\n", errSubstr: "unknown output mode"},
		{name: "bad sample", content: "sample_size: 0\n", errSubstr: "sample_size"},
		{name: "bad cutoff", content: "decade_cutoff: 1965\n", errSubstr: "decade_cutoff"},
		{name: "bad date", content: "scrape_date: someday\n", errSubstr: "invalid date"},
		{name: "bad log level", content: "log_level: loud\n", errSubstr: "invalid log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := inTempDir(t)
			path := writeConfig(t, dir, tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	inTempDir(t)
	_, err := LoadConfig("missing.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_PostgresDSNExpansion(t *testing.T) {
	dir := inTempDir(t)
	t.Setenv("BOXOFFICE_TEST_PG_PASSWORD", "s3cret")
	path := writeConfig(t, dir, "engine: postgres\ndsn: postgres://analyst:${BOXOFFICE_TEST_PG_PASSWORD}@db/films\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://analyst:s3cret@db/films", cfg.DSN)
	assert.Equal(t, ":memory:", cfg.Database)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BOXOFFICE_TEST_HOST", "db.local")
	assert.Equal(t, "host=db.local", expandEnvVars("host=${BOXOFFICE_TEST_HOST}"))
	assert.Equal(t, "host=${BOXOFFICE_TEST_UNSET}", expandEnvVars("host=${BOXOFFICE_TEST_UNSET}"))
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level   string
		verbose bool
		want    slog.Level
	}{
		{level: "", want: slog.LevelWarn},
		{level: "info", want: slog.LevelInfo},
		{level: "ERROR", want: slog.LevelError},
		{level: "error", verbose: true, want: slog.LevelDebug},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.LogLevel = tt.level
		cfg.Verbose = tt.verbose
		got, err := cfg.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateDataPath(t *testing.T) {
	cfg := Default()
	cfg.DataPath = filepath.Join(t.TempDir(), "missing.csv")
	err := cfg.ValidateDataPath()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--data")
}

func TestGetLogger_Fallback(t *testing.T) {
	logger := GetLogger(context.Background())
	require.NotNil(t, logger)

	custom := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), custom)
	assert.Same(t, custom, GetLogger(ctx))
}

func TestConfigContext(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))

	cfg := Default()
	cfg.Engine = "sqlite"
	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}

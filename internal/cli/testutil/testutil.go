// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/boxoffice/internal/cli/config"
	"github.com/leapstack-labs/boxoffice/internal/cli/output"
	"github.com/leapstack-labs/boxoffice/internal/testutil"
)

// SetupTestProject creates a temporary project holding the movie fixture at
// the default data path and a boxoffice.yaml using the sqlite engine.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	dataPath := filepath.Join(tmpDir, config.DefaultDataPath)
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o750); err != nil {
		t.Fatalf("failed to create data directory: %v", err)
	}

	fixture, err := os.ReadFile(testutil.MoviesCSV(t))
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	if err := os.WriteFile(dataPath, fixture, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", dataPath, err)
	}

	cfg := `engine: sqlite
sample_seed: 42
plot:
  width: 3
  height: 2
  dpi: 40
`
	if err := os.WriteFile(filepath.Join(tmpDir, "boxoffice.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to write boxoffice.yaml: %v", err)
	}

	return tmpDir
}

// NewTestConfig returns a valid config over the movie fixture using the
// sqlite engine, small figures and a temporary plots directory.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataPath = testutil.MoviesCSV(t)
	cfg.PlotsDir = t.TempDir()
	cfg.HistoryPath = filepath.Join(t.TempDir(), "history.db")
	cfg.Engine = "sqlite"
	cfg.Database = ""
	cfg.SampleSeed = 42
	cfg.Plot = config.PlotConfig{Width: 3, Height: 2, DPI: 40}
	cfg.OutputFormat = string(output.ModeText)
	return cfg
}

// NewTestContext returns a context carrying cfg and a test logger, as the
// root command would set up.
func NewTestContext(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()
	ctx := config.WithConfig(context.Background(), cfg)
	return context.WithValue(ctx, config.LoggerKey(), testutil.NewTestLogger(t))
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the captured stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

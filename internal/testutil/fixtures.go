package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Facts about testdata/cost_revenue_dirty.csv that tests assert against.
const (
	FixtureRows          = 12
	FixtureColumns       = 6
	FixtureDuplicates    = 1
	FixtureZeroDomestic  = 4
	FixtureZeroWorldwide = 3
	FixtureInternational = 1
	FixtureUnreleased    = 2
	FixtureReleased      = 10
	FixtureMoneyLosing   = 4
	FixtureOldFilms      = 5
	FixtureNewFilms      = 5
)

// RepoRoot returns the repository root, located relative to this file.
func RepoRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate testutil source file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// MoviesCSV returns the path of the dirty movie dataset fixture.
func MoviesCSV(t testing.TB) string {
	t.Helper()
	return filepath.Join(RepoRoot(t), "testdata", "cost_revenue_dirty.csv")
}

// WriteCSV writes content to name inside a fresh temp dir and returns the path.
func WriteCSV(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	clitestutil "github.com/leapstack-labs/boxoffice/internal/cli/testutil"
	"github.com/leapstack-labs/boxoffice/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countSQL = `SELECT COUNT(*) AS n FROM movies`

func TestQueryCommand_Args(t *testing.T) {
	cfg := clitestutil.NewTestConfig(t)
	out, _, err := execute(t, NewQueryCommand(), cfg, "", countSQL, "--format", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, testutil.FixtureRows, rows[0]["n"])
}

func TestQueryCommand_AcceptsArbitraryArgs(t *testing.T) {
	cmd := NewQueryCommand()
	require.NotNil(t, cmd.Args)
	assert.NoError(t, cmd.Args(cmd, []string{countSQL}))
	assert.NoError(t, cmd.Args(cmd, []string{"SELECT 1", "extra"}))
}

func TestQueryCommand_PipedStdin(t *testing.T) {
	cfg := clitestutil.NewTestConfig(t)
	query := `SELECT "Movie_Title" FROM movies WHERE "USD_Domestic_Gross" = 0 AND "USD_Worldwide_Gross" <> 0;`
	out, _, err := execute(t, NewQueryCommand(), cfg, query, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Movie_Title\nOverseas Hit\n", out)
}

func TestQueryCommand_InputFile(t *testing.T) {
	cfg := clitestutil.NewTestConfig(t)
	path := filepath.Join(t.TempDir(), "q.sql")
	require.NoError(t, os.WriteFile(path, []byte(`SELECT "Movie_Title", "USD_Production_Budget" FROM movies ORDER BY "USD_Production_Budget" DESC LIMIT 1`), 0o600))

	out, _, err := execute(t, NewQueryCommand(), cfg, "", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Avatar")
	assert.Contains(t, out, "425,000,000.00")
	assert.Contains(t, out, "(1 rows)")
}

func TestQueryCommand_Errors(t *testing.T) {
	cfg := clitestutil.NewTestConfig(t)

	_, _, err := execute(t, NewQueryCommand(), cfg, "", countSQL, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = execute(t, NewQueryCommand(), cfg, "", "SELECT * FROM nowhere")
	assert.ErrorContains(t, err, "query failed")

	_, _, err = execute(t, NewQueryCommand(), cfg, "  ;  ")
	assert.ErrorContains(t, err, "no SQL")
}

func TestQueryCommand_TablesAndSchema(t *testing.T) {
	cfg := clitestutil.NewTestConfig(t)

	out, _, err := execute(t, NewQueryCommand(), cfg, "", "tables", "--format", "json")
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{adapter.DefaultTable}, names)

	out, _, err = execute(t, NewQueryCommand(), cfg, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Table: movies (12 rows, sqlite)")
	assert.Contains(t, out, "USD_Worldwide_Gross")
}

// openFixtureStore returns a sqlite store loaded with the cleaned fixture.
func openFixtureStore(t *testing.T) adapter.Adapter {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(clitestutil.NewTestContext(t, clitestutil.NewTestConfig(t)))
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	a, err := cmdCtx.Session.Store(context.Background())
	require.NoError(t, err)
	return a
}

func TestRenderResults_Formats(t *testing.T) {
	a := openFixtureStore(t)
	ctx := context.Background()
	query := `SELECT "Movie_Title", "USD_Worldwide_Gross" FROM movies WHERE "Rank" = 5230`

	tests := []struct {
		format string
		want   []string
	}{
		{format: "table", want: []string{"Movie_Title", "8,000,000.00", "(1 rows)"}},
		{format: "csv", want: []string{"Movie_Title,USD_Worldwide_Gross", `"20,000 Leagues Under the Sea",8000000`}},
		{format: "md", want: []string{"| Movie_Title | USD_Worldwide_Gross |", "| --- | --- |"}},
		{format: "json", want: []string{`"Movie_Title": "20,000 Leagues Under the Sea"`, `"USD_Worldwide_Gross": 8000000`}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, executeAndRender(ctx, buf, a, query, tt.format))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRenderResults_Empty(t *testing.T) {
	a := openFixtureStore(t)
	ctx := context.Background()
	query := `SELECT "Movie_Title" FROM movies WHERE "Rank" < 0`

	buf := new(bytes.Buffer)
	require.NoError(t, executeAndRender(ctx, buf, a, query, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())

	buf.Reset()
	require.NoError(t, executeAndRender(ctx, buf, a, query, "json"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeCSV(tt.in))
	}
}

func TestRawValue(t *testing.T) {
	assert.Equal(t, "", rawValue(nil))
	assert.Equal(t, "425000000", rawValue(425_000_000.0))
	assert.Equal(t, "0.5", rawValue(0.5))
	assert.Equal(t, "abc", rawValue("abc"))
	assert.Equal(t, "7", rawValue(int64(7)))
}

func TestHandleDotCommand(t *testing.T) {
	a := openFixtureStore(t)
	ctx := context.Background()

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	format := "table"

	assert.True(t, handleDotCommand(ctx, cmd, a, ".quit", &format))
	assert.True(t, handleDotCommand(ctx, cmd, a, ".exit", &format))

	assert.False(t, handleDotCommand(ctx, cmd, a, ".help", &format))
	assert.Contains(t, out.String(), ".schema [name]")

	out.Reset()
	assert.False(t, handleDotCommand(ctx, cmd, a, ".format csv", &format))
	assert.Equal(t, "csv", format)
	assert.False(t, handleDotCommand(ctx, cmd, a, ".format xml", &format))
	assert.Equal(t, "csv", format)
	assert.Contains(t, errOut.String(), "unknown format")

	assert.False(t, handleDotCommand(ctx, cmd, a, ".tables", &format))
	assert.Equal(t, "name\nmovies\n", out.String())

	errOut.Reset()
	assert.False(t, handleDotCommand(ctx, cmd, a, ".bogus", &format))
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("")))

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.False(t, isTerminal(f))
}

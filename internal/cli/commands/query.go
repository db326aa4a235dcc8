package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// QueryFormats lists the supported result formats.
var QueryFormats = []string{"table", "json", "csv", "md"}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Query the movie dataset with SQL",
		Long: `Query the cleaned movie dataset with SQL.

The dataset is loaded into the configured engine (duckdb, sqlite or
postgres) as the table "movies", with the columns of the CSV file and
dates as YYYY-MM-DD strings.

When invoked without arguments and stdin is a terminal, enters an
interactive REPL.`,
		Example: `  # Execute SQL directly
  boxoffice query 'SELECT COUNT(*) FROM movies'

  # Money-losing films as CSV
  boxoffice query 'SELECT "Movie_Title" FROM movies WHERE "USD_Production_Budget" > "USD_Worldwide_Gross"' --format csv

  # List tables and show the schema
  boxoffice query tables
  boxoffice query schema movies

  # Interactive mode
  boxoffice query`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return QueryFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newQueryTablesCommand(opts))
	cmd.AddCommand(newQuerySchemaCommand(opts))

	return cmd
}

func validateFormat(format string) error {
	for _, f := range QueryFormats {
		if format == f || (format == "markdown" && f == "md") {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want %s)", format, strings.Join(QueryFormats, ", "))
}

// withStore opens a session for cmd and calls fn with its loaded store.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cmdCtx *CommandContext, a adapter.Adapter) error) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	a, err := cmdCtx.Session.Store(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, cmdCtx, a)
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	if err := validateFormat(opts.Format); err != nil {
		return err
	}

	var sqlQuery string
	stdin := cmd.InOrStdin()

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return withStore(cmd, func(ctx context.Context, cmdCtx *CommandContext, a adapter.Adapter) error {
			return runQueryREPL(ctx, cmd, cmdCtx, a, opts)
		})
	}

	sqlQuery = strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";")
	if sqlQuery == "" {
		return fmt.Errorf("no SQL given")
	}

	return withStore(cmd, func(ctx context.Context, _ *CommandContext, a adapter.Adapter) error {
		return executeAndRender(ctx, cmd.OutOrStdout(), a, sqlQuery, opts.Format)
	})
}

// executeAndRender runs query and renders its rows, closing them before returning.
func executeAndRender(ctx context.Context, w io.Writer, a adapter.Adapter, query, format string) error {
	rows, err := a.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return renderResults(w, rows, format)
}

// newQueryTablesCommand creates the tables subcommand.
func newQueryTablesCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(opts.Format); err != nil {
				return err
			}
			return withStore(cmd, func(ctx context.Context, _ *CommandContext, a adapter.Adapter) error {
				return listTables(ctx, cmd.OutOrStdout(), a, opts.Format)
			})
		},
	}
}

// newQuerySchemaCommand creates the schema subcommand.
func newQuerySchemaCommand(opts *QueryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the columns of a table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.Format); err != nil {
				return err
			}
			table := adapter.DefaultTable
			if len(args) > 0 {
				table = args[0]
			}
			return withStore(cmd, func(ctx context.Context, _ *CommandContext, a adapter.Adapter) error {
				return showSchema(ctx, cmd.OutOrStdout(), a, table, opts.Format)
			})
		},
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "boxoffice> "
	replContPrompt = "      ...> "
)

// historyFileName is written to the project root.
const historyFileName = ".boxoffice_history"

func runQueryREPL(ctx context.Context, cmd *cobra.Command, cmdCtx *CommandContext, a adapter.Adapter, opts *QueryOptions) error {
	historyFile := filepath.Join(cmdCtx.Cfg.ProjectRoot, historyFileName)
	if cmdCtx.Cfg.ProjectRoot == "" {
		historyFile = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newTableCompleter(ctx, a),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "boxoffice SQL REPL (%s, table %s)\n", a.DialectName(), adapter.DefaultTable)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	format := opts.Format
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if multiLineBuffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := handleDotCommand(ctx, cmd, a, line, &format); quit {
				break
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		query := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := executeAndRender(ctx, out, a, query, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// handleDotCommand runs a REPL command. It reports whether the REPL should exit.
func handleDotCommand(ctx context.Context, cmd *cobra.Command, a adapter.Adapter, line string, format *string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)

	case ".tables":
		if err := listTables(ctx, out, a, *format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".schema":
		table := adapter.DefaultTable
		if len(parts) > 1 {
			table = parts[1]
		}
		if err := showSchema(ctx, out, a, table, *format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(out, "format: %s\n", *format)
			break
		}
		if err := validateFormat(parts[1]); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
			break
		}
		*format = parts[1]

	case ".clear":
		_, _ = fmt.Fprint(out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .tables           List all tables
  .schema [name]    Show the columns of a table (default movies)
  .format [name]    Show or set the output format (table, json, csv, md)
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Quote column names: "USD_Production_Budget"
  - Use arrow keys to navigate history
  - Tab completion works for table and column names
`
	_, _ = fmt.Fprintln(w, help)
}

// newTableCompleter creates a readline completer for table and column names.
func newTableCompleter(ctx context.Context, a adapter.Adapter) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	// Completion is best effort; catalog errors leave it empty.
	if names, err := adapter.ListTables(ctx, a); err == nil {
		for _, name := range names {
			items = append(items, readline.PcItem(name))
		}
	}
	if meta, err := adapter.GetTableMetadata(ctx, a, adapter.DefaultTable); err == nil {
		for _, col := range meta.Columns {
			items = append(items, readline.PcItem(adapter.QuoteIdent(col.Name)))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".format"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}

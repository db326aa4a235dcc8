package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/boxoffice/internal/cli/output"
	"github.com/leapstack-labs/boxoffice/internal/history"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
	Prune int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past walkthrough runs",
		Long: `Show walkthrough runs recorded in the history database.

Without arguments the most recent runs are listed. Pass a run id, or a
unique prefix of one, to see the challenges that run completed. Use
--prune to keep only the newest runs.`,
		Example: `  # Recent runs
  boxoffice history

  # Challenges of one run
  boxoffice history 3f2a9c1d

  # Keep the last 20 runs
  boxoffice history --prune 20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Number of runs to list (0 for all)")
	cmd.Flags().IntVar(&opts.Prune, "prune", -1, "Delete all but the newest N runs")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	cmdCtx := NewCommandContextWithoutSession(cmd)
	ctx := cmd.Context()

	store, err := openHistory(ctx, cmdCtx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	r := cmdCtx.Renderer
	if opts.Prune >= 0 {
		n, err := store.Prune(ctx, opts.Prune)
		if err != nil {
			return err
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(map[string]any{"pruned": n})
		}
		r.Success(fmt.Sprintf("Pruned %d runs", n))
		return nil
	}

	if len(args) == 1 {
		return showRun(cmd, store, args[0], r)
	}

	runs, err := store.ListRuns(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*history.Run{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println(r.Muted("No runs recorded yet. Start one with 'boxoffice run'."))
		return nil
	}

	t := output.FrameTable{Columns: []string{"Run", "Started", "Status", "Completed", "Selection", "Duration"}}
	for _, run := range runs {
		t.Rows = append(t.Rows, []any{
			shortID(run.ID),
			run.StartedAt.Local().Format(time.DateTime),
			string(run.Status),
			fmt.Sprintf("%d/%d", run.Completed, run.Planned),
			selectionLabel(run.Selection),
			formatDuration(run.Duration()),
		})
	}
	return r.RenderTable(t)
}

func showRun(cmd *cobra.Command, store *history.Store, id string, r *output.Renderer) error {
	ctx := cmd.Context()
	run, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	crs, err := store.ListChallengeRuns(ctx, run.ID)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		if crs == nil {
			crs = []history.ChallengeRun{}
		}
		return r.JSON(struct {
			*history.Run
			Challenges []history.ChallengeRun `json:"challenges"`
		}{Run: run, Challenges: crs})
	}

	r.Header(1, "Run "+run.ID)
	r.KeyValue("Session", run.SessionID)
	r.KeyValue("Started", run.StartedAt.Local().Format(time.DateTime))
	r.KeyValue("Status", string(run.Status))
	r.KeyValue("Completed", fmt.Sprintf("%d/%d", run.Completed, run.Planned))
	r.KeyValue("Selection", selectionLabel(run.Selection))
	r.KeyValue("Duration", formatDuration(run.Duration()))
	if run.Error != "" {
		r.Error(run.Error)
	}
	r.Println()

	t := output.FrameTable{Columns: []string{"Number", "Slug", "Status", "Duration", "Error"}}
	for _, cr := range crs {
		t.Rows = append(t.Rows, []any{cr.Number, cr.Slug, string(cr.Status), formatDuration(cr.Duration), cr.Error})
	}
	return r.RenderTable(t)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func selectionLabel(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

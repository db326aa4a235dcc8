package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leapstack-labs/boxoffice/internal/challenge"
	"github.com/leapstack-labs/boxoffice/internal/history"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Only    string
	NoPause bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the challenge walkthrough",
		Long: `Run the analysis challenges in order.

Each challenge prints its description and waits for ENTER before showing
its result. Use --only to run a subset and --no-pause to run straight
through. Figures are written to the plots directory.`,
		Example: `  # Interactive walkthrough of all seventeen challenges
  boxoffice run

  # Run selected challenges without pausing
  boxoffice run --only 1,5-7,regress-new --no-pause

  # Markdown report for a CI artifact
  boxoffice run --no-pause -o markdown > report.md`,
		Aliases: []string{"walkthrough"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Only, "only", "", "Comma-separated challenge numbers, ranges or slugs to run")
	cmd.Flags().BoolVar(&opts.NoPause, "no-pause", false, "Do not wait for ENTER between challenges")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	challenges := challenge.All()
	if opts.Only != "" {
		var err error
		if challenges, err = challenge.Select(opts.Only); err != nil {
			return err
		}
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var gate challenge.Gate = challenge.NoGate{}
	if !opts.NoPause {
		gate = challenge.NewTerminalGate(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	cmdCtx.Logger.Info("starting walkthrough",
		slog.String("session", cmdCtx.Session.ID),
		slog.Int("challenges", len(challenges)))

	rec := startRunRecord(cmd.Context(), cmdCtx, opts.Only, len(challenges))
	defer rec.close()

	runner := &challenge.Runner{
		Session:   cmdCtx.Session,
		Report:    cmdCtx.Renderer,
		Gate:      gate,
		AfterEach: rec.observe,
	}
	runErr := runner.Run(cmd.Context(), challenges)
	rec.finish(runErr)
	if err := cmdCtx.Renderer.Flush(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

// runRecord writes a walkthrough to the run history. History problems are
// logged and never fail the walkthrough.
type runRecord struct {
	ctx     context.Context
	store   *history.Store
	run     *history.Run
	logger  *slog.Logger
	planned int
	done    int
}

func startRunRecord(ctx context.Context, cmdCtx *CommandContext, selection string, planned int) *runRecord {
	rec := &runRecord{ctx: context.WithoutCancel(ctx), logger: cmdCtx.Logger, planned: planned}

	store, err := openHistory(ctx, cmdCtx)
	if err != nil {
		if !errors.Is(err, history.ErrDisabled) {
			rec.logger.Warn("run history unavailable", slog.Any("error", err))
		}
		return rec
	}

	run, err := store.CreateRun(ctx, cmdCtx.Session.ID, selection, planned)
	if err != nil {
		rec.logger.Warn("failed to record run", slog.Any("error", err))
		_ = store.Close()
		return rec
	}
	rec.store, rec.run = store, run
	return rec
}

func (r *runRecord) observe(c challenge.Challenge, elapsed time.Duration, err error) {
	if err == nil {
		r.done++
	}
	if r.store == nil {
		return
	}
	if recErr := r.store.RecordChallenge(r.ctx, r.run.ID, c.Number, c.Slug, elapsed, err); recErr != nil {
		r.logger.Warn("failed to record challenge", slog.Any("error", recErr))
	}
}

func (r *runRecord) finish(runErr error) {
	if r.store == nil {
		return
	}

	status := history.StatusCompleted
	var msg string
	switch {
	case runErr != nil:
		status, msg = history.StatusFailed, runErr.Error()
	case r.done < r.planned:
		status = history.StatusStopped
	}

	if err := r.store.CompleteRun(r.ctx, r.run.ID, status, msg); err != nil {
		r.logger.Warn("failed to complete run record", slog.Any("error", err))
		return
	}
	r.logger.Debug("run recorded", slog.String("run", r.run.ID), slog.String("status", string(status)))
}

func (r *runRecord) close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

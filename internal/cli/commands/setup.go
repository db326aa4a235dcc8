package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/boxoffice/internal/adapter"
	"github.com/leapstack-labs/boxoffice/internal/challenge"
	"github.com/leapstack-labs/boxoffice/internal/cli/config"
	"github.com/leapstack-labs/boxoffice/internal/cli/output"
	"github.com/leapstack-labs/boxoffice/internal/history"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Session  *challenge.Session
	Renderer *output.Renderer
}

// NewCommandContext loads the dataset and creates a session and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutSession(cmd)
	cfg := cmdCtx.Cfg

	if err := cfg.ValidateDataPath(); err != nil {
		return nil, nil, err
	}
	raw, err := movies.LoadFile(cfg.DataPath)
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Logger.Debug("loaded dataset",
		slog.String("path", cfg.DataPath),
		slog.Int("rows", raw.Nrow()))

	cmdCtx.Session = challenge.NewSession(raw, sessionOptions(cfg, cmdCtx.Logger))

	cleanup := func() {
		if err := cmdCtx.Session.Close(); err != nil {
			cmdCtx.Logger.Warn("failed to close store", slog.Any("error", err))
		}
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutSession creates a CommandContext without loading data.
// Useful for commands that don't need the dataset.
func NewCommandContextWithoutSession(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd)
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the configuration loaded by the root command, or the
// defaults when the command runs on its own.
func getConfig(cmd *cobra.Command) *config.Config {
	return config.FromContext(cmd.Context())
}

func sessionOptions(cfg *config.Config, logger *slog.Logger) challenge.Options {
	return challenge.Options{
		ScrapeDate:   cfg.ScrapeDate,
		DecadeCutoff: cfg.DecadeCutoff,
		SampleSize:   cfg.SampleSize,
		SampleSeed:   cfg.SampleSeed,
		PlotsDir:     cfg.PlotsDir,
		PlotFormat:   cfg.PlotFormat,
		PlotSize:     cfg.PlotSize(),
		Engine:       cfg.AdapterConfig(),
		Table:        adapter.DefaultTable,
		Logger:       logger,
	}
}

// openHistory opens the run history database, or returns
// history.ErrDisabled when history_path is empty.
func openHistory(ctx context.Context, cmdCtx *CommandContext) (*history.Store, error) {
	if cmdCtx.Cfg.HistoryPath == "" {
		return nil, history.ErrDisabled
	}
	return history.Open(ctx, cmdCtx.Cfg.HistoryPath, cmdCtx.Logger)
}

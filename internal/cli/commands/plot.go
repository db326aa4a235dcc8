package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/boxoffice/internal/challenge"
	"github.com/spf13/cobra"
)

// NewPlotCommand creates the plot command.
func NewPlotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [challenge...]",
		Short: "Render the chart challenges",
		Long: `Render the figures of the chart challenges without pausing.

With no arguments every chart is rendered. Arguments are challenge
numbers, ranges or slugs; non-chart challenges are rejected.`,
		Example: `  boxoffice plot
  boxoffice plot bubble regplot-new
  boxoffice plot 8-11 --plots-dir out/figures`,
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			var slugs []string
			for _, c := range challenge.OfKind(challenge.All(), challenge.KindChart) {
				slugs = append(slugs, c.Slug)
			}
			return slugs, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runPlot,
	}
	return cmd
}

func chartChallenges(args []string) ([]challenge.Challenge, error) {
	selected, err := challenge.Select(strings.Join(args, ","))
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return challenge.OfKind(selected, challenge.KindChart), nil
	}
	for _, c := range selected {
		if c.Kind != challenge.KindChart {
			return nil, fmt.Errorf("challenge %d (%s) does not draw a chart", c.Number, c.Slug)
		}
	}
	return selected, nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	charts, err := chartChallenges(args)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := &challenge.Runner{
		Session: cmdCtx.Session,
		Report:  cmdCtx.Renderer,
		Gate:    challenge.NoGate{},
	}
	runErr := runner.Run(cmd.Context(), charts)
	if err := cmdCtx.Renderer.Flush(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

package commands

import (
	"github.com/leapstack-labs/boxoffice/internal/challenge"
	"github.com/leapstack-labs/boxoffice/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewChallengesCommand creates the challenges command.
func NewChallengesCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "challenges",
		Aliases: []string{"ls"},
		Short:   "List the analysis challenges",
		Long: `List every challenge with its number, slug and kind.

Numbers and slugs can be passed to 'boxoffice run --only' and
'boxoffice plot'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutSession(cmd)

			cs := challenge.All()
			if kind != "" {
				cs = challenge.OfKind(cs, challenge.Kind(kind))
			}

			t := output.FrameTable{Columns: []string{"Number", "Slug", "Kind", "Description"}}
			for _, c := range cs {
				t.Rows = append(t.Rows, []any{c.Number, c.Slug, string(c.Kind), c.Description})
			}
			return cmdCtx.Renderer.RenderTable(t)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list challenges of this kind (report|chart|model)")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(challenge.KindReport), string(challenge.KindChart), string(challenge.KindModel)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/boxoffice/internal/cli/output"
	"github.com/leapstack-labs/boxoffice/internal/export"
	"github.com/spf13/cobra"
)

// DefaultExportPath is where export writes when --out is not given.
const DefaultExportPath = "boxoffice.xlsx"

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the analysis subsets to an Excel workbook",
		Long: `Write an .xlsx workbook with one sheet per analysis subset
(released, zero domestic, zero worldwide, international, unreleased,
old films, new films) and a Regression sheet for the new films model.`,
		Example: `  boxoffice export
  boxoffice export --out reports/movies.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if filepath.Ext(out) != ".xlsx" {
				return fmt.Errorf("export path %s must end in .xlsx", out)
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			wb, err := export.FromSession(cmdCtx.Session)
			if err != nil {
				return err
			}
			if err := wb.Save(out); err != nil {
				return err
			}
			cmdCtx.Logger.Info("exported workbook", "path", out, "sheets", len(wb.Sheets()))
			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]any{"path": out, "sheets": wb.Sheets()})
			}
			r.Success(fmt.Sprintf("Wrote %s (%d sheets)", out, len(wb.Sheets())))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", DefaultExportPath, "Output workbook path")
	return cmd
}

package commands

import (
	"fmt"

	"github.com/leapstack-labs/boxoffice/internal/challenge"
	"github.com/leapstack-labs/boxoffice/internal/cli/output"
	"github.com/leapstack-labs/boxoffice/internal/movies"
	"github.com/leapstack-labs/boxoffice/internal/numfmt"
	"github.com/leapstack-labs/boxoffice/internal/regression"
	"github.com/spf13/cobra"
)

// Regression subsets.
const (
	SubsetNew = "new"
	SubsetOld = "old"
	SubsetAll = "all"
)

// RegressOptions holds options for the regress command.
type RegressOptions struct {
	Subset  string
	Predict []float64
}

type regressResult struct {
	Subset      string              `json:"subset"`
	Films       int                 `json:"films"`
	Intercept   float64             `json:"intercept"`
	Slope       float64             `json:"slope"`
	RSquared    float64             `json:"r_squared"`
	ResidualSE  float64             `json:"residual_standard_error"`
	Predictions []regressPrediction `json:"predictions,omitempty"`
}

type regressPrediction struct {
	Budget    float64 `json:"budget"`
	Worldwide float64 `json:"worldwide_gross"`
}

// NewRegressCommand creates the regress command.
func NewRegressCommand() *cobra.Command {
	opts := &RegressOptions{}

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Fit worldwide gross against production budget",
		Long: `Fit an ordinary least squares regression of worldwide gross on
production budget and print the intercept, slope and r-squared.

The subset is one of:
  new   films released after the decade cutoff (default)
  old   films released in or before the decade cutoff
  all   every released film`,
		Example: `  boxoffice regress
  boxoffice regress --subset old
  boxoffice regress --predict 350000000 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegress(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Subset, "subset", SubsetNew, "Films to fit (new|old|all)")
	cmd.Flags().Float64SliceVar(&opts.Predict, "predict", nil, "Budgets to estimate worldwide gross for")
	_ = cmd.RegisterFlagCompletionFunc("subset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{SubsetNew, SubsetOld, SubsetAll}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func subsetFrame(s *challenge.Session, subset string) (*movies.Frame, error) {
	switch subset {
	case SubsetNew:
		return s.New()
	case SubsetOld:
		return s.Old()
	case SubsetAll:
		return s.WithDecades()
	default:
		return nil, fmt.Errorf("unknown subset %q (want new, old or all)", subset)
	}
}

func runRegress(cmd *cobra.Command, opts *RegressOptions) error {
	switch opts.Subset {
	case SubsetNew, SubsetOld, SubsetAll:
	default:
		return fmt.Errorf("unknown subset %q (want new, old or all)", opts.Subset)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := subsetFrame(cmdCtx.Session, opts.Subset)
	if err != nil {
		return err
	}
	m, err := challenge.FitBudgetRevenue(f)
	if err != nil {
		return err
	}

	return renderRegression(cmdCtx.Renderer, opts, m)
}

func renderRegression(r *output.Renderer, opts *RegressOptions, m *regression.Model) error {
	res := regressResult{
		Subset:     opts.Subset,
		Films:      m.N,
		Intercept:  m.Intercept,
		Slope:      m.Slope,
		RSquared:   m.RSquared,
		ResidualSE: m.ResidualSE,
	}
	for _, budget := range opts.Predict {
		res.Predictions = append(res.Predictions, regressPrediction{Budget: budget, Worldwide: m.Predict(budget)})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	r.Header(2, fmt.Sprintf("Regression of worldwide gross on budget (%s films)", opts.Subset))
	r.Fact("Films", m.N)
	challenge.ReportModel(r, m)
	r.Fact("Residual standard error", numfmt.Money(m.ResidualSE))

	if len(res.Predictions) > 0 {
		t := output.FrameTable{Columns: []string{"Budget", "Estimated worldwide gross"}}
		for _, p := range res.Predictions {
			t.Rows = append(t.Rows, []any{numfmt.Money(p.Budget), numfmt.Money(p.Worldwide)})
		}
		r.Println("")
		return r.RenderTable(t)
	}
	return nil
}

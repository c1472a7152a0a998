package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EmrahFidan/MissingLink/internal/privacy"
)

type LossOptions struct {
	Epsilon    float64
	Delta      float64
	NumQueries int
	OutputFile string
}

func NewLossCmd() *cobra.Command {
	opts := &LossOptions{}

	cmd := &cobra.Command{
		Use:   "loss",
		Short: "Report cumulative privacy loss over repeated queries",
		Long: `Report the sequential and advanced composition bounds for running
the same query repeatedly at a fixed epsilon.`,
		Example: `  missinglink loss --epsilon 0.5 --queries 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoss(opts)
		},
	}

	cmd.Flags().Float64VarP(&opts.Epsilon, "epsilon", "e", 1.0, "Per-query privacy budget")
	cmd.Flags().Float64Var(&opts.Delta, "delta", 1e-5, "Failure probability for the advanced bound")
	cmd.Flags().IntVarP(&opts.NumQueries, "queries", "n", 1, "Number of queries")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	return cmd
}

func runLoss(opts *LossOptions) error {
	if opts.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", opts.Epsilon)
	}
	if opts.NumQueries < 1 {
		return fmt.Errorf("queries must be at least 1, got %d", opts.NumQueries)
	}

	report := privacy.NewBudgetAccount().PrivacyLoss(opts.Epsilon, opts.Delta, opts.NumQueries)
	return writeOutput(opts.OutputFile, report)
}

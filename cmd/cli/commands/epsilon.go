package commands

import (
	"github.com/spf13/cobra"

	"github.com/EmrahFidan/MissingLink/internal/privacy"
)

type EpsilonOptions struct {
	DataSensitivity string
	UseCase         string
	OutputFile      string
}

func NewEpsilonCmd() *cobra.Command {
	opts := &EpsilonOptions{}

	cmd := &cobra.Command{
		Use:     "epsilon",
		Short:   "Recommend an epsilon for a data sensitivity and use case",
		Example: `  missinglink epsilon --sensitivity high --use-case public_release`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := privacy.RecommendEpsilon(opts.DataSensitivity, opts.UseCase)
			if err != nil {
				return err
			}
			return writeOutput(opts.OutputFile, rec)
		},
	}

	cmd.Flags().StringVarP(&opts.DataSensitivity, "sensitivity", "s", "medium", "Data sensitivity (low, medium, high)")
	cmd.Flags().StringVarP(&opts.UseCase, "use-case", "u", "research", "Use case (research, production, public_release)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	return cmd
}

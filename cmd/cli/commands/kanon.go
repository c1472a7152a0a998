package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/EmrahFidan/MissingLink/internal/privacy"
)

type KAnonOptions struct {
	InputFile        string
	QuasiIdentifiers []string
	K                int
	OutputFile       string
}

func NewKAnonCmd() *cobra.Command {
	opts := &KAnonOptions{}

	cmd := &cobra.Command{
		Use:   "kanon",
		Short: "Check a dataset for k-anonymity",
		Long: `Group the dataset by its quasi-identifier columns and report how
many records fall in groups smaller than k.`,
		Example: `  missinglink kanon --input data.json --quasi-identifiers age,zip --k 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKAnon(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input dataset file (required)")
	cmd.Flags().StringSliceVarP(&opts.QuasiIdentifiers, "quasi-identifiers", "q", nil, "Quasi-identifier columns (required)")
	cmd.Flags().IntVarP(&opts.K, "k", "k", 2, "Minimum acceptable group size")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file (- for stdout)")

	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("quasi-identifiers")

	return cmd
}

func runKAnon(opts *KAnonOptions) error {
	if opts.K < 2 {
		return fmt.Errorf("k must be at least 2, got %d", opts.K)
	}

	ds, err := loadDataset(opts.InputFile)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	result, err := privacy.NewKAnonymityAnalyzer(logger).Analyze(ds, opts.QuasiIdentifiers, opts.K)
	if err != nil {
		return err
	}

	return writeOutput(opts.OutputFile, result)
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EmrahFidan/MissingLink/internal/privacy"
)

func NewLevelsCmd() *cobra.Command {
	var outputFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List the privacy level buckets and their epsilon ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			levels := privacy.PrivacyLevels()
			if asJSON || (outputFile != "" && outputFile != "-") {
				return writeOutput(outputFile, levels)
			}

			for _, l := range levels {
				fmt.Printf("%-10s  [%4.2f, %5.2f)  %s\n",
					l.Level, l.EpsilonRange[0], l.EpsilonRange[1], l.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "-", "Output file (- for stdout)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

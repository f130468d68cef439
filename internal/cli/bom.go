package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracewire/tracewire/pkg/bom"
	"github.com/tracewire/tracewire/pkg/loader"
)

// newBOMCmd creates the bom command, printing the aggregated bill of
// materials of a harness description as tab-separated text.
func newBOMCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bom [file]",
		Short: "Print the bill of materials for a harness description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			h, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			rows := bom.Build(h)
			logger.Debugf("Aggregated %d BOM rows", len(rows))

			tsv := bom.TSV(rows)
			if output == "" {
				_, err := fmt.Print(string(tsv))
				return err
			}
			if err := os.WriteFile(output, tsv, 0644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

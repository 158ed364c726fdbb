package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"options-strategist/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <strategy-file>",
		Short: "Evaluate a strategy and export the profit curve as CSV",
		Example: `  strategist export covered-call.yaml --output curve.csv
  strategist export strangle.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			outPath, _ := cmd.Flags().GetString("output")

			strategy, err := LoadStrategy(args[0])
			if err != nil {
				output.Error("Failed to load strategy: %v", err)
				return err
			}
			result, err := app.Engine.Evaluate(context.Background(), strategy)
			if err != nil {
				output.Error("Evaluation failed: %v", err)
				return err
			}

			writer := os.Stdout
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					output.Error("Failed to create %s: %v", outPath, err)
					return err
				}
				defer file.Close()
				writer = file
			}

			if err := export.WriteCSV(writer, result.Prices, result.Profit); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}
			if outPath != "" {
				output.Success("Wrote %d rows to %s", len(result.Prices), outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "output file (default: stdout)")

	return cmd
}

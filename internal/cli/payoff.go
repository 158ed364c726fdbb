package cli

import (
	"github.com/spf13/cobra"

	"options-strategist/internal/models"
	"options-strategist/internal/payoff"
	"options-strategist/pkg/utils"
)

func newPayoffCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Print the profit/loss profile of a single option leg",
		Example: `  strategist payoff --type call --action buy --strike 115 --premium 5 --min 100 --max 140
  strategist payoff --type put --action sell --strike 95 --premium 3 --quantity 2 --min 80 --max 110`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			optionType := models.OptionType(mustString(cmd, "type"))
			action := models.Action(mustString(cmd, "action"))
			strike := mustFloat(cmd, "strike")
			premium := mustFloat(cmd, "premium")
			quantity := mustInt(cmd, "quantity")
			min := mustFloat(cmd, "min")
			max := mustFloat(cmd, "max")
			commission := mustFloat(cmd, "commission")
			rows := mustInt(cmd, "rows")

			if rows < 2 {
				rows = 2
			}
			grid := make([]float64, rows)
			for i := range grid {
				grid[i] = min + (max-min)*float64(i)/float64(rows-1)
			}

			curve, cost, err := payoff.OptionAtExpiry(optionType, action, strike, premium, quantity, grid, commission)
			if err != nil {
				output.Error("Payoff failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"cost":   cost,
					"prices": grid,
					"profit": curve,
				})
			}

			output.Bold("%s %s  strike %.2f  premium %.2f  x%d", action, optionType, strike, premium, quantity)
			output.Printf("  Cost: %s\n\n", utils.FormatPnL(cost))
			output.Printf("  %-12s %s\n", "Price", "Profit/Loss")
			for i, s := range grid {
				output.Printf("  %-12s %s\n", utils.FormatPrice(s), utils.FormatPnL(curve[i]))
			}
			return nil
		},
	}

	cmd.Flags().String("type", "call", "option type: call or put")
	cmd.Flags().String("action", "buy", "action: buy or sell")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("premium", 0, "option premium")
	cmd.Flags().Int("quantity", 1, "number of contracts")
	cmd.Flags().Float64("min", 0, "lowest stock price")
	cmd.Flags().Float64("max", 0, "highest stock price")
	cmd.Flags().Float64("commission", 0, "commission charged on the leg")
	cmd.Flags().Int("rows", 11, "number of table rows")

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"options-strategist/internal/models"
	"options-strategist/pkg/utils"
)

func newEvaluateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <strategy-file>",
		Short: "Evaluate a multi-leg options strategy",
		Long: `Evaluate a strategy described in a YAML or JSON file.

The file holds the market inputs (stock price, volatility, interest rate,
price range, dates or days to the target date) and a list of legs. Each leg
carries a "type" of option, stock or closed. Example:

  stock_price: 100.0
  volatility: 0.20
  interest_rate: 0.05
  min_stock: 50.0
  max_stock: 150.0
  start_date: 2026-01-05
  target_date: 2026-03-20
  legs:
    - type: option
      option_type: call
      strike: 105.0
      premium: 2.50
      quantity: 1
      action: buy`,
		Example: `  strategist evaluate covered-call.yaml
  strategist evaluate strangle.yaml --chart
  strategist evaluate condor.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			showChart, _ := cmd.Flags().GetBool("chart")

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

			if output.IsJSON() {
				return output.JSON(result)
			}
			displayResult(output, strategy, result)
			if showChart {
				output.Println()
				renderChart(output, strategy, result)
			}
			return nil
		},
	}

	cmd.Flags().Bool("chart", false, "render the profit/loss chart")

	return cmd
}

func displayResult(output *Output, strategy *models.Strategy, result *models.StrategyResult) {
	output.Bold("Strategy Evaluation")
	output.Printf("  Legs: %d  Days to target: %d  Model: %s\n\n", len(strategy.Legs), result.DaysToTarget, strategy.Model)

	output.Printf("  Probability of profit: %s\n", utils.FormatPercent(result.ProbabilityOfProfit))
	for _, r := range result.ProfitRanges {
		output.Profit("  Profit range: %s", formatRange(r))
	}
	for _, r := range result.LossRanges {
		output.Loss("  Loss range:   %s", formatRange(r))
	}
	output.Println()

	output.Printf("  Strategy cost: %s\n", utils.FormatPnL(result.StrategyCost))
	output.Printf("  Return range:  %s .. %s\n", utils.FormatPnL(result.MinimumReturn), utils.FormatPnL(result.MaximumReturn))
	if result.ExpectedProfit != nil {
		output.Printf("  Expected profit: %s\n", utils.FormatPnL(*result.ExpectedProfit))
	}
	if result.ExpectedLoss != nil {
		output.Printf("  Expected loss:   %s\n", utils.FormatPnL(*result.ExpectedLoss))
	}
	if strategy.ProfitTarget > 0.01 {
		output.Printf("  P(profit >= %s): %s\n", utils.FormatCurrency(strategy.ProfitTarget),
			utils.FormatPercent(result.ProbabilityOfProfitTarget))
	}
	if strategy.LossLimit < 0 {
		output.Printf("  P(loss <= %s): %s\n", utils.FormatCurrency(strategy.LossLimit),
			utils.FormatPercent(result.ProbabilityOfLossLimit))
	}
	output.Println()

	output.Bold("Per-leg")
	output.Printf("  %-20s %-12s %-9s %-9s %-9s %-9s %-9s %-8s %-8s\n",
		"Leg", "Cost", "Delta", "Gamma", "Theta", "Vega", "Rho", "IV", "ITM")
	for i := range result.PerLegCost {
		output.Printf("  %-20s %-12s %-9.4f %-9.4f %-9.4f %-9.4f %-9.4f %-8.3f %-8s\n",
			formatLegLabel(i, strategy.Legs[i]),
			utils.FormatPnL(result.PerLegCost[i]),
			result.Delta[i], result.Gamma[i], result.Theta[i], result.Vega[i], result.Rho[i],
			result.ImpliedVol[i],
			utils.FormatPercent(result.ITMProbability[i]))
	}
}

func formatRange(r models.PriceRange) string {
	if !r.Bounded() {
		return fmt.Sprintf("above %s", utils.FormatBound(r.Lower))
	}
	return fmt.Sprintf("%s .. %s", utils.FormatBound(r.Lower), utils.FormatBound(r.Upper))
}

func formatLegLabel(i int, leg models.Leg) string {
	switch l := leg.(type) {
	case models.OptionLeg:
		return fmt.Sprintf("%d: %s %s %g", i+1, l.Action, l.Type, l.Strike)
	case models.StockLeg:
		return fmt.Sprintf("%d: %s stock x%d", i+1, l.Action, l.Quantity)
	default:
		return fmt.Sprintf("%d: closed", i+1)
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"options-strategist/internal/models"
	"options-strategist/internal/pricing"
)

func newPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single option",
		Long: `Price a single option with one of the supported models.

Models: bs (European Black-Scholes), binomial (Cox-Ross-Rubinstein lattice)
and american (Bjerksund-Stensland approximation with a lattice fallback for
puts).`,
		Example: `  strategist price --type call --spot 100 --strike 105 --vol 0.2 --rate 0.05 --days 60
  strategist price --type put --spot 100 --strike 95 --vol 0.3 --rate 0.05 --days 30 --model american
  strategist price --type call --spot 100 --strike 100 --vol 0.2 --rate 0.05 --days 90 --model binomial --steps 5 --tree`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			optionType := models.OptionType(mustString(cmd, "type"))
			spot := mustFloat(cmd, "spot")
			strike := mustFloat(cmd, "strike")
			rate := mustFloat(cmd, "rate")
			vol := mustFloat(cmd, "vol")
			yield := mustFloat(cmd, "yield")
			days := mustInt(cmd, "days")
			model := mustString(cmd, "model")
			steps := mustInt(cmd, "steps")
			american, _ := cmd.Flags().GetBool("american")
			showTree, _ := cmd.Flags().GetBool("tree")

			years := float64(days) / app.Config.Engine.DaysInYear

			var price float64
			var greeks pricing.Greeks
			var err error
			switch model {
			case "bs":
				price, err = pricing.Price(optionType, spot, strike, rate, vol, years, yield)
				if err == nil {
					greeks, err = pricing.ComputeGreeks(optionType, spot, strike, rate, vol, years, yield)
				}
			case "binomial":
				price, err = pricing.BinomialPrice(optionType, spot, strike, rate, vol, years, steps, american, yield)
				if err == nil {
					greeks, err = pricing.BinomialGreeks(optionType, spot, strike, rate, vol, years, steps, american, yield)
				}
			case "american":
				price, err = pricing.AmericanPrice(optionType, spot, strike, rate, yield, vol, years)
				if err == nil {
					greeks, err = pricing.AmericanGreeks(optionType, spot, strike, rate, yield, vol, years, app.Config.Engine.BinomialSteps)
				}
			default:
				err = fmt.Errorf("unknown model %q (want bs, binomial or american)", model)
			}
			if err != nil {
				output.Error("Pricing failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"price": price,
					"delta": greeks.Delta,
					"gamma": greeks.Gamma,
					"theta": greeks.Theta,
					"vega":  greeks.Vega,
					"rho":   greeks.Rho,
				})
			}

			output.Bold("%s %s  strike %.2f  spot %.2f  %d days", model, optionType, strike, spot, days)
			output.Printf("  Price: %.4f\n", price)
			output.Printf("  Delta: %.4f  Gamma: %.4f  Theta: %.4f  Vega: %.4f  Rho: %.4f\n",
				greeks.Delta, greeks.Gamma, greeks.Theta, greeks.Vega, greeks.Rho)

			if showTree {
				if model != "binomial" {
					output.Warning("--tree is only available with the binomial model")
					return nil
				}
				lattice, err := pricing.BinomialTree(optionType, spot, strike, rate, vol, years, steps, american, yield)
				if err != nil {
					return err
				}
				displayLattice(output, lattice)
			}
			return nil
		},
	}

	cmd.Flags().String("type", "call", "option type: call or put")
	cmd.Flags().Float64("spot", 0, "current stock price")
	cmd.Flags().Float64("strike", 0, "strike price")
	cmd.Flags().Float64("rate", 0, "annualized risk-free interest rate")
	cmd.Flags().Float64("vol", 0, "annualized volatility")
	cmd.Flags().Float64("yield", 0, "continuous dividend yield")
	cmd.Flags().Int("days", 30, "days to maturity")
	cmd.Flags().String("model", "bs", "pricing model: bs, binomial or american")
	cmd.Flags().Int("steps", 150, "binomial tree steps")
	cmd.Flags().Bool("american", false, "price as an American option (binomial model)")
	cmd.Flags().Bool("tree", false, "print the binomial lattice (binomial model)")

	return cmd
}

func displayLattice(output *Output, lattice *pricing.Lattice) {
	output.Println()
	output.Bold("Lattice  u=%.4f d=%.4f p=%.4f", lattice.Up, lattice.Down, lattice.Prob)
	for i, level := range lattice.StockPrices {
		output.Printf("  t=%d:", i)
		for j, s := range level {
			mark := " "
			if lattice.Exercise[i][j] {
				mark = "!"
			}
			output.Printf("  %.2f/%.2f%s", s, lattice.OptionValues[i][j], mark)
		}
		output.Println()
	}
	output.Dim("  stock/option per node, ! marks early exercise")
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func mustFloat(cmd *cobra.Command, name string) float64 {
	v, _ := cmd.Flags().GetFloat64(name)
	return v
}

func mustInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

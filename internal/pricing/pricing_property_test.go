package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-strategist/internal/models"
)

// Property: European call prices respect the no-arbitrage envelope
// max(S*e^(-yT) - K*e^(-rT), 0) <= C <= S*e^(-yT) for any admissible inputs.
func TestProperty_EuropeanCallWithinNoArbitrageBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("call stays within no-arbitrage bounds", prop.ForAll(
		func(spot, strike, rate, vol, years, yield float64) bool {
			price, err := Price(models.Call, spot, strike, rate, vol, years, yield)
			if err != nil {
				return false
			}
			lower := math.Max(spot*math.Exp(-yield*years)-strike*math.Exp(-rate*years), 0)
			upper := spot * math.Exp(-yield*years)
			return price >= lower-1e-9 && price <= upper+1e-9
		},
		gen.Float64Range(20, 300),
		gen.Float64Range(20, 300),
		gen.Float64Range(0, 0.12),
		gen.Float64Range(0.01, 0.9),
		gen.Float64Range(0.01, 3),
		gen.Float64Range(0, 0.06),
	))

	properties.TestingRun(t)
}

// Property: put-call parity C - P = S*e^(-yT) - K*e^(-rT) holds to floating
// point accuracy for every admissible parameter combination.
func TestProperty_PutCallParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("parity holds", prop.ForAll(
		func(spot, strike, rate, vol, years, yield float64) bool {
			call, err := Price(models.Call, spot, strike, rate, vol, years, yield)
			if err != nil {
				return false
			}
			put, err := Price(models.Put, spot, strike, rate, vol, years, yield)
			if err != nil {
				return false
			}
			parity := spot*math.Exp(-yield*years) - strike*math.Exp(-rate*years)
			return math.Abs((call-put)-parity) < 1e-8
		},
		gen.Float64Range(20, 300),
		gen.Float64Range(20, 300),
		gen.Float64Range(0, 0.12),
		gen.Float64Range(0.01, 0.9),
		gen.Float64Range(0.01, 3),
		gen.Float64Range(0, 0.06),
	))

	properties.TestingRun(t)
}

// Property: the American price dominates the European price and is always a
// finite non-negative number, for both calls and puts.
func TestProperty_AmericanDominatesEuropean(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	check := func(optionType models.OptionType) func(spot, strike, rate, vol, years, yield float64) bool {
		return func(spot, strike, rate, vol, years, yield float64) bool {
			european, err := Price(optionType, spot, strike, rate, vol, years, yield)
			if err != nil {
				return false
			}
			american, err := AmericanPrice(optionType, spot, strike, rate, yield, vol, years)
			if err != nil {
				return false
			}
			if math.IsNaN(american) || math.IsInf(american, 0) || american < 0 {
				return false
			}
			return american >= european-1e-9
		}
	}

	args := []gopter.Gen{
		gen.Float64Range(20, 300),
		gen.Float64Range(20, 300),
		gen.Float64Range(0, 0.12),
		gen.Float64Range(0.05, 0.9),
		gen.Float64Range(0.02, 3),
		gen.Float64Range(0, 0.08),
	}
	properties.Property("american call dominates", prop.ForAll(check(models.Call), args...))
	properties.Property("american put dominates", prop.ForAll(check(models.Put), args...))

	properties.TestingRun(t)
}

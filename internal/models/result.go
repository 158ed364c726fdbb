package models

import "math"

// PriceRange is a half-open interval of terminal stock prices. Lower may be
// zero and Upper may be +Inf for the outermost intervals.
type PriceRange struct {
	Lower float64
	Upper float64
}

// Bounded reports whether the range has a finite upper bound.
func (r PriceRange) Bounded() bool {
	return !math.IsInf(r.Upper, 1)
}

// LegResult holds the per-leg outputs of one engine run. It is computed once
// and immutable afterwards.
type LegResult struct {
	Cost     float64
	Profit   []float64
	ProfitMC []float64

	Delta          float64
	Gamma          float64
	Theta          float64
	Vega           float64
	Rho            float64
	ImpliedVol     float64
	ITMProbability float64
}

// StrategyResult is the aggregate output record assembled by the engine. The
// caller owns it as a read-only view over the computed arrays.
type StrategyResult struct {
	// Prices is the evaluation grid; Profit the combined strategy curve over
	// it. ProfitMC holds the per-sample curve when the array model is used.
	Prices   []float64 `json:"prices,omitempty"`
	Profit   []float64 `json:"profit,omitempty"`
	ProfitMC []float64 `json:"profit_mc,omitempty"`

	ProbabilityOfProfit float64      `json:"probability_of_profit"`
	ProfitRanges        []PriceRange `json:"profit_ranges"`
	LossRanges          []PriceRange `json:"loss_ranges"`

	// Conditional expectations over the terminal price sample; only defined
	// for the array model, nil otherwise.
	ExpectedProfit *float64 `json:"expected_profit,omitempty"`
	ExpectedLoss   *float64 `json:"expected_loss,omitempty"`

	PerLegCost   []float64 `json:"per_leg_cost"`
	StrategyCost float64   `json:"strategy_cost"`

	MinimumReturn float64 `json:"minimum_return"`
	MaximumReturn float64 `json:"maximum_return"`

	Delta          []float64 `json:"delta"`
	Gamma          []float64 `json:"gamma"`
	Theta          []float64 `json:"theta"`
	Vega           []float64 `json:"vega"`
	Rho            []float64 `json:"rho"`
	ImpliedVol     []float64 `json:"implied_volatility"`
	ITMProbability []float64 `json:"in_the_money_probability"`

	// Optional threshold statistics, populated when the strategy configures
	// a profit target or a loss limit.
	ProbabilityOfProfitTarget float64      `json:"probability_of_profit_target,omitempty"`
	ProfitTargetRanges        []PriceRange `json:"profit_target_ranges,omitempty"`
	ProbabilityOfLossLimit    float64      `json:"probability_of_loss_limit,omitempty"`
	LossLimitRanges           []PriceRange `json:"loss_limit_ranges,omitempty"`

	DaysToTarget int `json:"days_to_target"`
}

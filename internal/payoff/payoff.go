// Package payoff computes per-leg profit/loss profiles over a grid of
// terminal or current stock prices.
package payoff

import (
	"math"

	"options-strategist/internal/models"
	"options-strategist/internal/pricing"
)

// OptionAtExpiry returns the profit/loss of an option leg held to expiry,
// evaluated elementwise over the price grid, together with the scalar cost of
// entering the leg. Cost is negative for a debit (buy) and positive for a
// credit (sell); the commission reduces both.
func OptionAtExpiry(optionType models.OptionType, action models.Action, strike, premium float64, quantity int, grid []float64, commission float64) ([]float64, float64, error) {
	if !optionType.Valid() {
		return nil, 0, models.ErrInvalidOptionType
	}
	if !action.Valid() {
		return nil, 0, models.ErrInvalidAction
	}

	n := float64(quantity)
	sign := action.Sign()
	curve := make([]float64, len(grid))
	for i, s := range grid {
		curve[i] = sign*n*(terminalPayoff(optionType, s, strike)-premium) - commission
	}
	return curve, -sign*premium*n - commission, nil
}

// OptionBeforeExpiry returns the profit/loss of an option leg valued before
// its expiry. Each grid price is treated as the spot on the valuation date
// and the option is repriced with Black-Scholes over the remaining time to
// maturity, so the curve reflects market value rather than terminal payoff.
func OptionBeforeExpiry(optionType models.OptionType, action models.Action, strike, premium float64, quantity int, grid []float64, rate, vol, remainingYears, yield, commission float64) ([]float64, float64, error) {
	if !action.Valid() {
		return nil, 0, models.ErrInvalidAction
	}

	n := float64(quantity)
	sign := action.Sign()
	curve := make([]float64, len(grid))
	for i, s := range grid {
		value, err := pricing.Price(optionType, s, strike, rate, vol, remainingYears, yield)
		if err != nil {
			return nil, 0, err
		}
		curve[i] = sign*n*(value-premium) - commission
	}
	return curve, -sign*premium*n - commission, nil
}

// Stock returns the profit/loss of a stock leg over the price grid. The cost
// is the full notional at the entry price, negative for a purchase.
func Stock(entryPrice float64, action models.Action, quantity int, grid []float64, commission float64) ([]float64, float64, error) {
	if !action.Valid() {
		return nil, 0, models.ErrInvalidAction
	}

	n := float64(quantity)
	sign := action.Sign()
	curve := make([]float64, len(grid))
	for i, s := range grid {
		curve[i] = sign*n*(s-entryPrice) - commission
	}
	return curve, -sign*entryPrice*n - commission, nil
}

// Constant returns a flat profile carrying a realized value, used for
// positions that were already closed: the value contributes to cost and
// profit with no price sensitivity.
func Constant(value float64, grid []float64) ([]float64, float64) {
	curve := make([]float64, len(grid))
	for i := range curve {
		curve[i] = value
	}
	return curve, value
}

func terminalPayoff(optionType models.OptionType, spot, strike float64) float64 {
	if optionType == models.Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

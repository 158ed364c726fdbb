// Package probability turns a strategy profit curve into profit/loss price
// ranges and integrates probability mass over them, either analytically under
// a lognormal terminal price distribution or empirically from a sample of
// terminal prices.
package probability

import (
	"math"

	"github.com/montanaflynn/stats"

	"options-strategist/internal/models"
)

// Floor for the lognormal standard deviation so a zero volatility degenerates
// to a point mass at the current price instead of a division by zero.
const minLogSD = 1e-10

// Outcome is the result of integrating a profit curve against a target
// return: the probability of reaching it, the probability of missing it, the
// price ranges on each side, and the expected return conditional on each
// side. The conditional expectations are only defined for the empirical
// integrator and are nil when the corresponding side has no mass.
type Outcome struct {
	ProbabilityAbove float64
	ProbabilityBelow float64
	ProfitRanges     []models.PriceRange
	LossRanges       []models.PriceRange
	ExpectedAbove    *float64
	ExpectedBelow    *float64
}

// LognormalParams describes the terminal price distribution implied by the
// Black-Scholes assumption: log price is normal with mean
// ln(S0) + (r - y - sigma^2/2)T and standard deviation sigma*sqrt(T).
type LognormalParams struct {
	Spot  float64
	Vol   float64
	Rate  float64
	Yield float64
	Years float64
}

// FindRanges scans the curve for sign changes of (profit - target) and
// returns the alternating profit and loss intervals. Crossing prices are
// located by linear interpolation between neighbouring grid points; the
// outermost intervals extend to zero below the grid and to +Inf above it.
// A curve that never crosses the target yields a single unbounded interval on
// the side the curve lies on.
func FindRanges(grid, curve []float64, target float64) (profit, loss []models.PriceRange) {
	if len(grid) == 0 || len(grid) != len(curve) {
		return nil, nil
	}

	above := curve[0] >= target
	lower := 0.0
	for i := 1; i < len(curve); i++ {
		nowAbove := curve[i] >= target
		if nowAbove == above {
			continue
		}
		cross := interpolateCross(grid[i-1], grid[i], curve[i-1]-target, curve[i]-target)
		r := models.PriceRange{Lower: lower, Upper: cross}
		if above {
			profit = append(profit, r)
		} else {
			loss = append(loss, r)
		}
		lower = cross
		above = nowAbove
	}

	last := models.PriceRange{Lower: lower, Upper: math.Inf(1)}
	if above {
		profit = append(profit, last)
	} else {
		loss = append(loss, last)
	}
	return profit, loss
}

func interpolateCross(g0, g1, d0, d1 float64) float64 {
	if d1 == d0 {
		return (g0 + g1) / 2
	}
	return g0 + (g1-g0)*(-d0)/(d1-d0)
}

// Analytic integrates the profit curve against the lognormal terminal price
// distribution. The probability of each interval is the difference of normal
// CDFs of its log bounds, summed over profit intervals for the probability of
// reaching the target and over loss intervals for the probability of missing
// it.
func Analytic(grid, curve []float64, target float64, p LognormalParams) Outcome {
	profit, loss := FindRanges(grid, curve, target)
	mean := math.Log(p.Spot) + (p.Rate-p.Yield-0.5*p.Vol*p.Vol)*p.Years
	sd := p.Vol * math.Sqrt(p.Years)
	if sd < minLogSD {
		sd = minLogSD
	}
	return Outcome{
		ProbabilityAbove: rangeMass(profit, mean, sd),
		ProbabilityBelow: rangeMass(loss, mean, sd),
		ProfitRanges:     profit,
		LossRanges:       loss,
	}
}

func rangeMass(ranges []models.PriceRange, mean, sd float64) float64 {
	total := 0.0
	for _, r := range ranges {
		total += logNormalCDF(r.Upper, mean, sd) - logNormalCDF(r.Lower, mean, sd)
	}
	return total
}

func logNormalCDF(price, mean, sd float64) float64 {
	if price <= 0 {
		return 0
	}
	if math.IsInf(price, 1) {
		return 1
	}
	return normCDF((math.Log(price) - mean) / sd)
}

func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// Empirical integrates against a sample of terminal prices: the probability
// of reaching the target is the fraction of the per-sample profit values at
// or above it. The price ranges are still derived from the grid curve so the
// caller gets a consistent display regardless of the model. Conditional
// expectations are the means of the profit subsamples on each side.
func Empirical(grid, curve []float64, target float64, profitSample []float64) (Outcome, error) {
	if len(profitSample) == 0 {
		return Outcome{}, models.ErrEmptySample
	}

	profit, loss := FindRanges(grid, curve, target)
	var above, below []float64
	for _, v := range profitSample {
		if v >= target {
			above = append(above, v)
		} else {
			below = append(below, v)
		}
	}

	out := Outcome{
		ProbabilityAbove: float64(len(above)) / float64(len(profitSample)),
		ProbabilityBelow: float64(len(below)) / float64(len(profitSample)),
		ProfitRanges:     profit,
		LossRanges:       loss,
	}
	if len(above) > 0 {
		if mean, err := stats.Mean(above); err == nil {
			out.ExpectedAbove = &mean
		}
	}
	if len(below) > 0 {
		if mean, err := stats.Mean(below); err == nil {
			out.ExpectedBelow = &mean
		}
	}
	return out, nil
}

// Package pricing implements the option pricing models used by the strategy
// evaluation engine: closed-form Black-Scholes, the Cox-Ross-Rubinstein
// binomial lattice and the Bjerksund-Stensland American approximation.
package pricing

import (
	"math"

	"options-strategist/internal/models"
)

// Implied volatility search bounds and resolution. The search is a brute
// force grid scan, which is robust on flat price surfaces where Newton or
// bisection steps can run away.
const (
	impliedVolMin  = 0.001
	impliedVolMax  = 1.0
	impliedVolStep = 0.001
)

// Greeks holds the sensitivities of an option value. Theta is expressed per
// year; callers divide by days-in-year for a daily theta. Vega and Rho are
// scaled per 1% move of volatility and rate.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

// D1D2 returns the d1 and d2 terms of the Black-Scholes formula. When the
// time to maturity or the volatility is not positive both terms are zero;
// Price, Delta and ITMProbability substitute boundary values in that case.
func D1D2(spot, strike, rate, vol, years, yield float64) (float64, float64) {
	if years <= 0 || vol <= 0 {
		return 0, 0
	}
	sqrtT := vol * math.Sqrt(years)
	d1 := (math.Log(spot/strike) + (rate-yield+0.5*vol*vol)*years) / sqrtT
	return d1, d1 - sqrtT
}

// Price returns the Black-Scholes price of a European option with a
// continuous dividend yield. An expired option or one with no volatility left
// is worth its discounted intrinsic value, never a negative number.
func Price(optionType models.OptionType, spot, strike, rate, vol, years, yield float64) (float64, error) {
	if years <= 0 || vol <= 0 {
		forward := spot*math.Exp(-yield*years) - strike*math.Exp(-rate*years)
		switch optionType {
		case models.Call:
			return math.Max(forward, 0), nil
		case models.Put:
			return math.Max(-forward, 0), nil
		default:
			return 0, models.ErrInvalidOptionType
		}
	}
	d1, d2 := D1D2(spot, strike, rate, vol, years, yield)
	switch optionType {
	case models.Call:
		return spot*math.Exp(-yield*years)*normCDF(d1) - strike*math.Exp(-rate*years)*normCDF(d2), nil
	case models.Put:
		return strike*math.Exp(-rate*years)*normCDF(-d2) - spot*math.Exp(-yield*years)*normCDF(-d1), nil
	default:
		return 0, models.ErrInvalidOptionType
	}
}

// Delta returns the Black-Scholes delta. In the degenerate case the terminal
// price is the forward and delta is the discounted moneyness indicator.
func Delta(optionType models.OptionType, spot, strike, rate, vol, years, yield float64) (float64, error) {
	if years <= 0 || vol <= 0 {
		forward := spot * math.Exp((rate-yield)*years)
		switch optionType {
		case models.Call:
			if forward > strike {
				return math.Exp(-yield * years), nil
			}
			return 0, nil
		case models.Put:
			if forward < strike {
				return -math.Exp(-yield * years), nil
			}
			return 0, nil
		default:
			return 0, models.ErrInvalidOptionType
		}
	}
	d1, _ := D1D2(spot, strike, rate, vol, years, yield)
	switch optionType {
	case models.Call:
		return math.Exp(-yield*years) * normCDF(d1), nil
	case models.Put:
		return -math.Exp(-yield*years) * normCDF(-d1), nil
	default:
		return 0, models.ErrInvalidOptionType
	}
}

// Gamma returns the Black-Scholes gamma, identical for calls and puts.
func Gamma(spot, strike, rate, vol, years, yield float64) float64 {
	if years <= 0 || vol <= 0 {
		return 0
	}
	d1, _ := D1D2(spot, strike, rate, vol, years, yield)
	return math.Exp(-yield*years) * normPDF(d1) / (spot * vol * math.Sqrt(years))
}

// Theta returns the Black-Scholes theta per unit of time (one year). Divide
// by the days-in-year convention for a daily theta.
func Theta(optionType models.OptionType, spot, strike, rate, vol, years, yield float64) (float64, error) {
	if years <= 0 || vol <= 0 {
		return 0, nil
	}
	d1, d2 := D1D2(spot, strike, rate, vol, years, yield)
	decay := -spot * math.Exp(-yield*years) * normPDF(d1) * vol / (2 * math.Sqrt(years))
	switch optionType {
	case models.Call:
		return decay -
			rate*strike*math.Exp(-rate*years)*normCDF(d2) +
			yield*spot*math.Exp(-yield*years)*normCDF(d1), nil
	case models.Put:
		return decay +
			rate*strike*math.Exp(-rate*years)*normCDF(-d2) -
			yield*spot*math.Exp(-yield*years)*normCDF(-d1), nil
	default:
		return 0, models.ErrInvalidOptionType
	}
}

// Vega returns the Black-Scholes vega per 1% move of volatility, identical
// for calls and puts.
func Vega(spot, strike, rate, vol, years, yield float64) float64 {
	if years <= 0 || vol <= 0 {
		return 0
	}
	d1, _ := D1D2(spot, strike, rate, vol, years, yield)
	return spot * math.Exp(-yield*years) * normPDF(d1) * math.Sqrt(years) / 100
}

// Rho returns the Black-Scholes rho per 1% move of the interest rate.
func Rho(optionType models.OptionType, spot, strike, rate, vol, years, yield float64) (float64, error) {
	if years <= 0 || vol <= 0 {
		return 0, nil
	}
	_, d2 := D1D2(spot, strike, rate, vol, years, yield)
	switch optionType {
	case models.Call:
		return strike * years * math.Exp(-rate*years) * normCDF(d2) / 100, nil
	case models.Put:
		return -strike * years * math.Exp(-rate*years) * normCDF(-d2) / 100, nil
	default:
		return 0, models.ErrInvalidOptionType
	}
}

// ComputeGreeks bundles the closed-form sensitivities of one option.
func ComputeGreeks(optionType models.OptionType, spot, strike, rate, vol, years, yield float64) (Greeks, error) {
	delta, err := Delta(optionType, spot, strike, rate, vol, years, yield)
	if err != nil {
		return Greeks{}, err
	}
	theta, err := Theta(optionType, spot, strike, rate, vol, years, yield)
	if err != nil {
		return Greeks{}, err
	}
	rho, err := Rho(optionType, spot, strike, rate, vol, years, yield)
	if err != nil {
		return Greeks{}, err
	}
	return Greeks{
		Delta: delta,
		Gamma: Gamma(spot, strike, rate, vol, years, yield),
		Theta: theta,
		Vega:  Vega(spot, strike, rate, vol, years, yield),
		Rho:   rho,
	}, nil
}

// ITMProbability returns the risk-neutral probability of the option expiring
// in the money, discounted by the dividend yield. With no time or volatility
// left the terminal price is the forward and the probability degenerates to a
// discounted 0/1 indicator.
func ITMProbability(optionType models.OptionType, spot, strike, rate, vol, years, yield float64) (float64, error) {
	if years <= 0 || vol <= 0 {
		forward := spot * math.Exp((rate-yield)*years)
		var itm bool
		switch optionType {
		case models.Call:
			itm = forward > strike
		case models.Put:
			itm = forward < strike
		default:
			return 0, models.ErrInvalidOptionType
		}
		if itm {
			return math.Exp(-yield * years), nil
		}
		return 0, nil
	}
	_, d2 := D1D2(spot, strike, rate, vol, years, yield)
	switch optionType {
	case models.Call:
		return math.Exp(-yield*years) * normCDF(d2), nil
	case models.Put:
		return math.Exp(-yield*years) * normCDF(-d2), nil
	default:
		return 0, models.ErrInvalidOptionType
	}
}

// ImpliedVol recovers the volatility implied by a market price with a grid
// search over [0.001, 1.0] in steps of 0.001, returning the volatility whose
// Black-Scholes price is closest to the market price.
//
// The resolution is the step size. On a flat price surface, deep in or out of
// the money or with almost no time left, many volatilities price within the
// resolution of each other and the result is essentially arbitrary.
func ImpliedVol(optionType models.OptionType, marketPrice, spot, strike, rate, years, yield float64) (float64, error) {
	if !optionType.Valid() {
		return 0, models.ErrInvalidOptionType
	}
	best := impliedVolMin
	bestDiff := math.Inf(1)
	for vol := impliedVolMin; vol <= impliedVolMax+impliedVolStep/2; vol += impliedVolStep {
		price, err := Price(optionType, spot, strike, rate, vol, years, yield)
		if err != nil {
			return 0, err
		}
		diff := math.Abs(price - marketPrice)
		if diff < bestDiff {
			bestDiff = diff
			best = vol
		}
	}
	return best, nil
}

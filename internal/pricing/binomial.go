package pricing

import (
	"fmt"
	"math"

	"options-strategist/internal/models"
)

// Finite difference step sizes for the lattice Greeks. Kept as named
// constants so the sensitivity of the estimates to the step choice stays
// reproducible and tunable.
const (
	fdSpotStepFraction = 0.001     // delta and gamma, relative to spot
	fdTimeStep         = 1.0 / 365 // theta, one calendar day
	fdVolStep          = 0.001     // vega
	fdRateStep         = 0.0001    // rho
)

// Lattice is the full Cox-Ross-Rubinstein tree built for one option. Level i
// holds i+1 nodes; node j at level i carries the stock price S*u^(i-j)*d^j.
// Exercise marks the nodes of an American option where early exercise is
// strictly better than continuation.
type Lattice struct {
	Steps    int
	Up       float64
	Down     float64
	Prob     float64
	Discount float64

	StockPrices  [][]float64
	OptionValues [][]float64
	Exercise     [][]bool
}

// Price returns the option value at the root of the lattice.
func (l *Lattice) Price() float64 {
	return l.OptionValues[0][0]
}

// BinomialTree builds the full CRR lattice for an option. The lattice is the
// structural artifact consumed by visualization callers; BinomialPrice is the
// cheaper entry point when only the root value matters.
func BinomialTree(optionType models.OptionType, spot, strike, rate, vol, years float64, steps int, american bool, yield float64) (*Lattice, error) {
	if !optionType.Valid() {
		return nil, models.ErrInvalidOptionType
	}
	if steps < 1 {
		return nil, fmt.Errorf("binomial tree needs at least one step: %w", models.ErrInvalidNumericInput)
	}
	if spot <= 0 || strike <= 0 {
		return nil, fmt.Errorf("spot and strike must be positive: %w", models.ErrInvalidNumericInput)
	}

	dt := years / float64(steps)
	up := math.Exp(vol * math.Sqrt(dt))
	down := 1 / up
	prob := (math.Exp((rate-yield)*dt) - down) / (up - down)
	discount := math.Exp(-rate * dt)

	l := &Lattice{
		Steps:        steps,
		Up:           up,
		Down:         down,
		Prob:         prob,
		Discount:     discount,
		StockPrices:  make([][]float64, steps+1),
		OptionValues: make([][]float64, steps+1),
		Exercise:     make([][]bool, steps+1),
	}

	for i := 0; i <= steps; i++ {
		l.StockPrices[i] = make([]float64, i+1)
		l.OptionValues[i] = make([]float64, i+1)
		l.Exercise[i] = make([]bool, i+1)
		for j := 0; j <= i; j++ {
			l.StockPrices[i][j] = spot * math.Pow(up, float64(i-j)) * math.Pow(down, float64(j))
		}
	}

	// Terminal payoffs.
	for j := 0; j <= steps; j++ {
		l.OptionValues[steps][j] = intrinsic(optionType, l.StockPrices[steps][j], strike)
	}

	// Backward induction.
	for i := steps - 1; i >= 0; i-- {
		for j := 0; j <= i; j++ {
			continuation := discount * (prob*l.OptionValues[i+1][j] + (1-prob)*l.OptionValues[i+1][j+1])
			value := continuation
			if american {
				exercise := intrinsic(optionType, l.StockPrices[i][j], strike)
				if exercise > continuation {
					value = exercise
					l.Exercise[i][j] = true
				}
			}
			l.OptionValues[i][j] = value
		}
	}
	return l, nil
}

// BinomialPrice returns the CRR lattice price of an option. For European
// options the value converges to the Black-Scholes price as steps grow.
func BinomialPrice(optionType models.OptionType, spot, strike, rate, vol, years float64, steps int, american bool, yield float64) (float64, error) {
	l, err := BinomialTree(optionType, spot, strike, rate, vol, years, steps, american, yield)
	if err != nil {
		return 0, err
	}
	return l.Price(), nil
}

func intrinsic(optionType models.OptionType, spot, strike float64) float64 {
	if optionType == models.Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// BinomialGreeks estimates the sensitivities of the lattice price by central
// finite differences. Theta is returned per calendar day; when the time step
// would cross expiry the terminal value is clamped to intrinsic. Vega and Rho
// are scaled per 1% move, matching the closed-form conventions.
func BinomialGreeks(optionType models.OptionType, spot, strike, rate, vol, years float64, steps int, american bool, yield float64) (Greeks, error) {
	price := func(s, r, v, t float64) (float64, error) {
		return BinomialPrice(optionType, s, strike, r, v, t, steps, american, yield)
	}

	base, err := price(spot, rate, vol, years)
	if err != nil {
		return Greeks{}, err
	}

	hs := spot * fdSpotStepFraction
	upPrice, err := price(spot+hs, rate, vol, years)
	if err != nil {
		return Greeks{}, err
	}
	downPrice, err := price(spot-hs, rate, vol, years)
	if err != nil {
		return Greeks{}, err
	}

	var thetaPrice float64
	if years-fdTimeStep <= 0 {
		thetaPrice = intrinsic(optionType, spot, strike)
	} else {
		thetaPrice, err = price(spot, rate, vol, years-fdTimeStep)
		if err != nil {
			return Greeks{}, err
		}
	}

	volUp, err := price(spot, rate, vol+fdVolStep, years)
	if err != nil {
		return Greeks{}, err
	}
	volDown, err := price(spot, rate, vol-fdVolStep, years)
	if err != nil {
		return Greeks{}, err
	}

	rateUp, err := price(spot, rate+fdRateStep, vol, years)
	if err != nil {
		return Greeks{}, err
	}
	rateDown, err := price(spot, rate-fdRateStep, vol, years)
	if err != nil {
		return Greeks{}, err
	}

	return Greeks{
		Delta: (upPrice - downPrice) / (2 * hs),
		Gamma: (upPrice - 2*base + downPrice) / (hs * hs),
		Theta: thetaPrice - base,
		Vega:  (volUp - volDown) / (2 * fdVolStep) / 100,
		Rho:   (rateUp - rateDown) / (2 * fdRateStep) / 100,
	}, nil
}

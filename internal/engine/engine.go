// Package engine evaluates multi-leg options strategies: it builds the price
// grid, computes per-leg profit profiles and Greeks, aggregates the strategy
// curve and derives probability-of-profit statistics.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	"options-strategist/internal/calendar"
	"options-strategist/internal/config"
	"options-strategist/internal/logging"
	"options-strategist/internal/models"
	"options-strategist/internal/payoff"
	"options-strategist/internal/pricing"
	"options-strategist/internal/probability"
)

// Profit targets at or below this value are treated as plain breakeven and
// get no separate probability.
const profitTargetMin = 0.01

// Engine evaluates strategies. It owns the memoization caches and a worker
// count for per-leg parallelism; one Engine is safe for concurrent use.
type Engine struct {
	cfg    config.EngineConfig
	logger zerolog.Logger
	caches *Caches
}

// New creates an engine with the given configuration.
func New(cfg config.EngineConfig, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
		caches: NewCaches(),
	}
}

// Evaluate runs the full pipeline for one strategy. Validation is fail-fast:
// any invalid leg or inconsistent input aborts the run before computation and
// no partial result is returned.
func (e *Engine) Evaluate(ctx context.Context, s *models.Strategy) (*models.StrategyResult, error) {
	began := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	targetDays, err := e.resolveTargetDays(s)
	if err != nil {
		return nil, err
	}
	maturityDays, err := e.resolveMaturityDays(s, targetDays)
	if err != nil {
		return nil, err
	}

	grid := e.caches.PriceGrid(s.MinStock, s.MaxStock, e.cfg.GridStep)

	// Per-leg computations are independent pure functions; dispatch them to
	// the pool and join before aggregating.
	legResults := make([]models.LegResult, len(s.Legs))
	legErrs := make([]error, len(s.Legs))
	pool := newWorkerPool(e.cfg.Workers)
	var wg sync.WaitGroup
	for i := range s.Legs {
		i := i
		wg.Add(1)
		pool.submit(func() {
			defer wg.Done()
			legResults[i], legErrs[i] = e.computeLeg(s, s.Legs[i], grid, targetDays, maturityDays[i])
		})
	}
	wg.Wait()
	pool.stop()
	for i, err := range legErrs {
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
	}

	result := e.aggregate(s, grid, legResults, targetDays)
	if err := e.computeProbabilities(s, grid, result, targetDays); err != nil {
		return nil, err
	}

	logging.LogEvaluation(logging.WithModel(e.logger, string(s.Model)), len(s.Legs), result.ProbabilityOfProfit, result.StrategyCost, time.Since(began))
	return result, nil
}

// resolveTargetDays turns the calendar inputs into a day count to the target
// date, optionally discarding non-business days.
func (e *Engine) resolveTargetDays(s *models.Strategy) (int, error) {
	if s.DaysToTarget > 0 {
		return s.DaysToTarget, nil
	}
	return e.countDays(s, s.StartDate, s.TargetDate)
}

// resolveMaturityDays returns, per leg, the day count from the start date to
// the leg's own expiration. Legs without an expiration of their own mature on
// the target date; non-option legs carry the target day count.
func (e *Engine) resolveMaturityDays(s *models.Strategy, targetDays int) ([]int, error) {
	days := make([]int, len(s.Legs))
	for i, leg := range s.Legs {
		days[i] = targetDays
		opt, ok := leg.(models.OptionLeg)
		if !ok {
			continue
		}
		switch {
		case opt.Expiration != nil:
			d, err := e.countDays(s, s.StartDate, *opt.Expiration)
			if err != nil {
				return nil, fmt.Errorf("leg %d: %w", i, err)
			}
			days[i] = d
		case opt.ExpirationDays > 0:
			days[i] = opt.ExpirationDays
		}
		if days[i] < targetDays {
			return nil, fmt.Errorf("leg %d: expiration before target date: %w", i, models.ErrInvalidConfiguration)
		}
	}
	return days, nil
}

func (e *Engine) countDays(s *models.Strategy, from, to time.Time) (int, error) {
	days := int(math.Round(to.Sub(from).Hours() / 24))
	if !s.DiscardNonBusinessDays {
		return days, nil
	}
	country := s.Country
	if country == "" {
		country = e.cfg.Country
	}
	if !calendar.Supported(country) {
		logging.LogCalendarFallback(e.logger, country, calendar.DefaultCountry)
		country = calendar.DefaultCountry
	}
	nonBusiness, err := e.caches.NonBusinessDays(from, to, country)
	if err != nil {
		return 0, err
	}
	return days - nonBusiness, nil
}

// computeLeg dispatches one leg to its profile and Greeks routines.
func (e *Engine) computeLeg(s *models.Strategy, leg models.Leg, grid []float64, targetDays, maturityDays int) (models.LegResult, error) {
	switch l := leg.(type) {
	case models.OptionLeg:
		return e.computeOptionLeg(s, l, grid, targetDays, maturityDays)
	case models.StockLeg:
		return e.computeStockLeg(s, l, grid)
	case models.ClosedLeg:
		curve, cost := payoff.Constant(l.PrevPosition, grid)
		res := models.LegResult{Cost: cost, Profit: curve}
		if s.Model == models.ModelArray {
			res.ProfitMC, _ = payoff.Constant(l.PrevPosition, s.Sample)
		}
		return res, nil
	default:
		return models.LegResult{}, models.ErrInvalidLegType
	}
}

func (e *Engine) computeOptionLeg(s *models.Strategy, l models.OptionLeg, grid []float64, targetDays, maturityDays int) (models.LegResult, error) {
	// A negative previous position marks a leg already closed out: it is a
	// realized cost with no market sensitivity and is never repriced.
	if l.PrevPosition != nil && *l.PrevPosition < 0 {
		curve, cost := payoff.Constant(*l.PrevPosition, grid)
		res := models.LegResult{Cost: cost, Profit: curve}
		if s.Model == models.ModelArray {
			res.ProfitMC, _ = payoff.Constant(*l.PrevPosition, s.Sample)
		}
		return res, nil
	}

	entryPremium := l.Premium
	if l.PrevPosition != nil && *l.PrevPosition > 0 {
		entryPremium = *l.PrevPosition
	}

	profile := func(prices []float64) ([]float64, float64, error) {
		if maturityDays == targetDays {
			return payoff.OptionAtExpiry(l.Type, l.Action, l.Strike, entryPremium, l.Quantity, prices, s.Commission)
		}
		remaining := float64(maturityDays-targetDays) / e.cfg.DaysInYear
		return payoff.OptionBeforeExpiry(l.Type, l.Action, l.Strike, entryPremium, l.Quantity, prices,
			s.InterestRate, s.Volatility, remaining, s.DividendYield, s.Commission)
	}

	curve, cost, err := profile(grid)
	if err != nil {
		return models.LegResult{}, err
	}
	res := models.LegResult{Cost: cost, Profit: curve}
	if s.Model == models.ModelArray {
		res.ProfitMC, _, err = profile(s.Sample)
		if err != nil {
			return models.LegResult{}, err
		}
	}

	years := float64(maturityDays) / e.cfg.DaysInYear
	greeks, err := pricing.ComputeGreeks(l.Type, s.StockPrice, l.Strike, s.InterestRate, s.Volatility, years, s.DividendYield)
	if err != nil {
		return models.LegResult{}, err
	}
	sign := l.Action.Sign()
	res.Delta = sign * greeks.Delta
	res.Gamma = sign * greeks.Gamma
	res.Theta = sign * greeks.Theta / e.cfg.DaysInYear
	res.Vega = sign * greeks.Vega
	res.Rho = sign * greeks.Rho

	res.ImpliedVol, err = pricing.ImpliedVol(l.Type, l.Premium, s.StockPrice, l.Strike, s.InterestRate, years, s.DividendYield)
	if err != nil {
		return models.LegResult{}, err
	}
	res.ITMProbability, err = pricing.ITMProbability(l.Type, s.StockPrice, l.Strike, s.InterestRate, s.Volatility, years, s.DividendYield)
	if err != nil {
		return models.LegResult{}, err
	}
	return res, nil
}

func (e *Engine) computeStockLeg(s *models.Strategy, l models.StockLeg, grid []float64) (models.LegResult, error) {
	if l.PrevPosition != nil && *l.PrevPosition < 0 {
		curve, cost := payoff.Constant(*l.PrevPosition, grid)
		res := models.LegResult{Cost: cost, Profit: curve}
		if s.Model == models.ModelArray {
			res.ProfitMC, _ = payoff.Constant(*l.PrevPosition, s.Sample)
		}
		return res, nil
	}

	entryPrice := s.StockPrice
	if l.PrevPosition != nil && *l.PrevPosition > 0 {
		entryPrice = *l.PrevPosition
	}

	curve, cost, err := payoff.Stock(entryPrice, l.Action, l.Quantity, grid, s.Commission)
	if err != nil {
		return models.LegResult{}, err
	}
	res := models.LegResult{Cost: cost, Profit: curve}
	if s.Model == models.ModelArray {
		res.ProfitMC, _, err = payoff.Stock(entryPrice, l.Action, l.Quantity, s.Sample, s.Commission)
		if err != nil {
			return models.LegResult{}, err
		}
	}

	// Stock is always "in the money": one-for-one exposure, no convexity.
	res.Delta = l.Action.Sign()
	res.ITMProbability = 1
	return res, nil
}

// aggregate sums the per-leg curves and costs and packs the per-leg vectors.
func (e *Engine) aggregate(s *models.Strategy, grid []float64, legs []models.LegResult, targetDays int) *models.StrategyResult {
	combined := make([]float64, len(grid))
	var combinedMC []float64
	if s.Model == models.ModelArray {
		combinedMC = make([]float64, len(s.Sample))
	}

	result := &models.StrategyResult{
		Prices:         grid,
		Profit:         combined,
		ProfitMC:       combinedMC,
		PerLegCost:     make([]float64, len(legs)),
		Delta:          make([]float64, len(legs)),
		Gamma:          make([]float64, len(legs)),
		Theta:          make([]float64, len(legs)),
		Vega:           make([]float64, len(legs)),
		Rho:            make([]float64, len(legs)),
		ImpliedVol:     make([]float64, len(legs)),
		ITMProbability: make([]float64, len(legs)),
		DaysToTarget:   targetDays,
	}

	for i, leg := range legs {
		for j, v := range leg.Profit {
			combined[j] += v
		}
		for j, v := range leg.ProfitMC {
			combinedMC[j] += v
		}
		result.PerLegCost[i] = leg.Cost
		result.StrategyCost += leg.Cost
		result.Delta[i] = leg.Delta
		result.Gamma[i] = leg.Gamma
		result.Theta[i] = leg.Theta
		result.Vega[i] = leg.Vega
		result.Rho[i] = leg.Rho
		result.ImpliedVol[i] = leg.ImpliedVol
		result.ITMProbability[i] = leg.ITMProbability
	}

	if min, err := stats.Min(combined); err == nil {
		result.MinimumReturn = min
	}
	if max, err := stats.Max(combined); err == nil {
		result.MaximumReturn = max
	}
	return result
}

// computeProbabilities runs the PoP engine at breakeven and, when configured,
// at the profit target and loss limit thresholds.
func (e *Engine) computeProbabilities(s *models.Strategy, grid []float64, result *models.StrategyResult, targetDays int) error {
	integrate := func(target float64) (probability.Outcome, error) {
		if s.Model == models.ModelArray {
			return probability.Empirical(grid, result.Profit, target, result.ProfitMC)
		}
		return probability.Analytic(grid, result.Profit, target, probability.LognormalParams{
			Spot:  s.StockPrice,
			Vol:   s.Volatility,
			Rate:  s.InterestRate,
			Yield: s.DividendYield,
			Years: float64(targetDays) / e.cfg.DaysInYear,
		}), nil
	}

	breakeven, err := integrate(0)
	if err != nil {
		return err
	}
	result.ProbabilityOfProfit = breakeven.ProbabilityAbove
	result.ProfitRanges = breakeven.ProfitRanges
	result.LossRanges = breakeven.LossRanges
	result.ExpectedProfit = breakeven.ExpectedAbove
	result.ExpectedLoss = breakeven.ExpectedBelow

	if s.ProfitTarget > profitTargetMin {
		out, err := integrate(s.ProfitTarget)
		if err != nil {
			return err
		}
		result.ProbabilityOfProfitTarget = out.ProbabilityAbove
		result.ProfitTargetRanges = out.ProfitRanges
	}
	if s.LossLimit < 0 {
		out, err := integrate(s.LossLimit)
		if err != nil {
			return err
		}
		result.ProbabilityOfLossLimit = out.ProbabilityBelow
		result.LossLimitRanges = out.LossRanges
	}
	return nil
}

package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-strategist/internal/config"
	"options-strategist/internal/models"
)

func newTestEngine() *Engine {
	return New(config.EngineConfig{
		DaysInYear:    365,
		GridStep:      1,
		BinomialSteps: 150,
		Country:       "US",
		Workers:       2,
	}, zerolog.Nop())
}

func coveredCall() *models.Strategy {
	return &models.Strategy{
		StockPrice:   100,
		Volatility:   0.2,
		InterestRate: 0.05,
		MinStock:     70,
		MaxStock:     130,
		DaysToTarget: 30,
		Model:        models.ModelBlackScholes,
		Legs: []models.Leg{
			models.StockLeg{Quantity: 1, Action: models.Buy},
			models.OptionLeg{Type: models.Call, Strike: 110, Premium: 2, Quantity: 1, Action: models.Sell},
		},
	}
}

func TestEvaluateCoveredCall(t *testing.T) {
	e := newTestEngine()
	result, err := e.Evaluate(context.Background(), coveredCall())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(result.Prices) != 61 {
		t.Errorf("grid has %d points, want 61", len(result.Prices))
	}
	if result.DaysToTarget != 30 {
		t.Errorf("DaysToTarget = %d, want 30", result.DaysToTarget)
	}

	// Stock debit of 100 against a 2.00 credit for the call.
	if math.Abs(result.StrategyCost+98) > 1e-9 {
		t.Errorf("StrategyCost = %v, want -98", result.StrategyCost)
	}
	if math.Abs(result.PerLegCost[0]+100) > 1e-9 || math.Abs(result.PerLegCost[1]-2) > 1e-9 {
		t.Errorf("PerLegCost = %v, want [-100, 2]", result.PerLegCost)
	}

	// Upside is capped at strike - entry + premium = 12; downside runs to the
	// bottom of the grid.
	if math.Abs(result.MaximumReturn-12) > 1e-9 {
		t.Errorf("MaximumReturn = %v, want 12", result.MaximumReturn)
	}
	if math.Abs(result.MinimumReturn+28) > 1e-9 {
		t.Errorf("MinimumReturn = %v, want -28", result.MinimumReturn)
	}
	last := result.Profit[len(result.Profit)-1]
	if math.Abs(last-12) > 1e-9 {
		t.Errorf("profit at grid top = %v, want capped 12", last)
	}

	if result.ProbabilityOfProfit <= 0 || result.ProbabilityOfProfit >= 1 {
		t.Errorf("PoP = %v, want inside (0, 1)", result.ProbabilityOfProfit)
	}
	if len(result.ProfitRanges) == 0 || len(result.LossRanges) == 0 {
		t.Error("covered call must have both profit and loss ranges")
	}

	// Stock leg: one-for-one exposure, always in the money.
	if result.Delta[0] != 1 || result.ITMProbability[0] != 1 {
		t.Errorf("stock leg delta/ITM = %v/%v, want 1/1", result.Delta[0], result.ITMProbability[0])
	}
	// Short call: negative delta, negative gamma and vega, positive theta.
	if result.Delta[1] >= 0 {
		t.Errorf("short call delta = %v, want negative", result.Delta[1])
	}
	if result.Gamma[1] >= 0 || result.Vega[1] >= 0 {
		t.Errorf("short call gamma/vega = %v/%v, want negative", result.Gamma[1], result.Vega[1])
	}
	if result.Theta[1] <= 0 {
		t.Errorf("short call theta = %v, want positive", result.Theta[1])
	}

	// Analytic model: no conditional expectations.
	if result.ExpectedProfit != nil || result.ExpectedLoss != nil {
		t.Error("expected profit/loss must be nil outside the array model")
	}
}

func TestEvaluateThresholds(t *testing.T) {
	e := newTestEngine()
	s := coveredCall()
	s.ProfitTarget = 5
	s.LossLimit = -10

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.ProbabilityOfProfitTarget <= 0 || result.ProbabilityOfProfitTarget >= 1 {
		t.Errorf("target probability = %v, want inside (0, 1)", result.ProbabilityOfProfitTarget)
	}
	if result.ProbabilityOfProfitTarget > result.ProbabilityOfProfit {
		t.Error("reaching a higher target cannot be more likely than breakeven")
	}
	if result.ProbabilityOfLossLimit <= 0 || result.ProbabilityOfLossLimit >= 1 {
		t.Errorf("loss limit probability = %v, want inside (0, 1)", result.ProbabilityOfLossLimit)
	}
	if len(result.ProfitTargetRanges) == 0 || len(result.LossLimitRanges) == 0 {
		t.Error("threshold ranges must be populated")
	}
}

func TestEvaluateArrayModel(t *testing.T) {
	e := newTestEngine()
	s := &models.Strategy{
		StockPrice:   100,
		Volatility:   0.2,
		InterestRate: 0.05,
		MinStock:     70,
		MaxStock:     130,
		DaysToTarget: 30,
		Model:        models.ModelArray,
		Sample:       []float64{90, 95, 105, 110},
		Legs:         []models.Leg{models.StockLeg{Quantity: 1, Action: models.Buy}},
	}

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.ProbabilityOfProfit != 0.5 {
		t.Errorf("PoP = %v, want 0.5", result.ProbabilityOfProfit)
	}
	if len(result.ProfitMC) != 4 {
		t.Fatalf("ProfitMC has %d entries, want 4", len(result.ProfitMC))
	}
	if result.ExpectedProfit == nil || math.Abs(*result.ExpectedProfit-7.5) > 1e-9 {
		t.Errorf("ExpectedProfit = %v, want 7.5", result.ExpectedProfit)
	}
	if result.ExpectedLoss == nil || math.Abs(*result.ExpectedLoss+7.5) > 1e-9 {
		t.Errorf("ExpectedLoss = %v, want -7.5", result.ExpectedLoss)
	}
}

func TestEvaluateRealizedLossLeg(t *testing.T) {
	e := newTestEngine()
	prev := -50.0
	s := coveredCall()
	s.Legs = []models.Leg{
		models.OptionLeg{Type: models.Call, Strike: 110, Premium: 2, Quantity: 1, Action: models.Buy, PrevPosition: &prev},
	}

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if math.Abs(result.StrategyCost+50) > 1e-9 {
		t.Errorf("StrategyCost = %v, want -50", result.StrategyCost)
	}
	for _, v := range result.Profit {
		if v != -50 {
			t.Fatalf("realized loss curve must be flat at -50, got %v", v)
		}
	}
	// A closed-out leg has no market sensitivity.
	if result.Delta[0] != 0 || result.ImpliedVol[0] != 0 {
		t.Errorf("closed-out leg delta/IV = %v/%v, want 0/0", result.Delta[0], result.ImpliedVol[0])
	}
	if result.ProbabilityOfProfit != 0 {
		t.Errorf("PoP of a pure realized loss = %v, want 0", result.ProbabilityOfProfit)
	}
}

func TestEvaluateClosedLeg(t *testing.T) {
	e := newTestEngine()
	s := coveredCall()
	s.Legs = append(s.Legs, models.ClosedLeg{PrevPosition: 25})

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// The realized 25 shifts cost and the whole curve up.
	if math.Abs(result.StrategyCost+73) > 1e-9 {
		t.Errorf("StrategyCost = %v, want -73", result.StrategyCost)
	}
	if math.Abs(result.MaximumReturn-37) > 1e-9 {
		t.Errorf("MaximumReturn = %v, want 37", result.MaximumReturn)
	}
}

func TestEvaluatePrevPositionReplacesPremium(t *testing.T) {
	e := newTestEngine()
	prev := 4.0
	s := coveredCall()
	s.Legs = []models.Leg{
		models.OptionLeg{Type: models.Call, Strike: 110, Premium: 2, Quantity: 1, Action: models.Buy, PrevPosition: &prev},
	}

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// The leg was opened earlier at 4.00, not at today's 2.00 quote.
	if math.Abs(result.StrategyCost+4) > 1e-9 {
		t.Errorf("StrategyCost = %v, want -4", result.StrategyCost)
	}
}

func TestEvaluateLegBeyondTarget(t *testing.T) {
	e := newTestEngine()
	s := coveredCall()
	s.Legs = []models.Leg{
		models.OptionLeg{Type: models.Call, Strike: 110, Premium: 2, Quantity: 1, Action: models.Buy, ExpirationDays: 60},
	}

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// With 30 days of optionality left the curve sits above the terminal
	// payoff: at the money the leg keeps clear time value instead of the
	// full -2 terminal loss.
	atSpot := result.Profit[30] // grid point 100
	if atSpot <= -2 || atSpot >= 0 {
		t.Errorf("profit at spot = %v, want between -2 and 0", atSpot)
	}
}

// TestEvaluateZeroVolatilityShortCall prices a short call with no volatility.
// The curve degenerates to discounted intrinsic, so the position can never
// earn more than its own credit and the point-mass forward sits safely below
// the breakeven.
func TestEvaluateZeroVolatilityShortCall(t *testing.T) {
	e := newTestEngine()
	s := coveredCall()
	s.Volatility = 0
	s.Legs = []models.Leg{
		models.OptionLeg{Type: models.Call, Strike: 115, Premium: 5, Quantity: 1, Action: models.Sell, ExpirationDays: 120},
	}

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// The 5.00 credit is the most the position can ever earn.
	if math.Abs(result.MaximumReturn-5) > 1e-9 {
		t.Errorf("MaximumReturn = %v, want the 5.00 credit", result.MaximumReturn)
	}
	for i, v := range result.Profit {
		if v > 5+1e-9 {
			t.Errorf("profit at %v = %v, exceeds the credit", result.Prices[i], v)
		}
	}
	if result.MinimumReturn >= 0 {
		t.Errorf("MinimumReturn = %v, want negative at the grid top", result.MinimumReturn)
	}

	// With zero volatility the terminal distribution is a point mass at the
	// forward, which lands inside the profit range.
	if result.ProbabilityOfProfit != 1 {
		t.Errorf("PoP = %v, want 1", result.ProbabilityOfProfit)
	}
	// The forward stays below the 115 strike, so the call finishes worthless.
	if result.ITMProbability[0] != 0 {
		t.Errorf("ITMProbability = %v, want 0", result.ITMProbability[0])
	}
}

func TestEvaluateValidationFailures(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	empty := coveredCall()
	empty.Legs = nil
	if _, err := e.Evaluate(ctx, empty); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("empty strategy: got %v, want ErrInvalidConfiguration", err)
	}

	conflicting := coveredCall()
	conflicting.StartDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	conflicting.TargetDate = time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	if _, err := e.Evaluate(ctx, conflicting); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("dates plus day count: got %v, want ErrInvalidConfiguration", err)
	}

	twoClosed := coveredCall()
	twoClosed.Legs = append(twoClosed.Legs, models.ClosedLeg{PrevPosition: 10}, models.ClosedLeg{PrevPosition: -5})
	if _, err := e.Evaluate(ctx, twoClosed); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("two closed legs: got %v, want ErrInvalidConfiguration", err)
	}

	early := coveredCall()
	early.Legs = []models.Leg{
		models.OptionLeg{Type: models.Call, Strike: 110, Premium: 2, Quantity: 1, Action: models.Buy, ExpirationDays: 10},
	}
	if _, err := e.Evaluate(ctx, early); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("expiration before target: got %v, want ErrInvalidConfiguration", err)
	}

	badLeg := coveredCall()
	badLeg.Legs = []models.Leg{models.OptionLeg{Type: "collar", Strike: 100, Premium: 1, Quantity: 1, Action: models.Buy}}
	if _, err := e.Evaluate(ctx, badLeg); !errors.Is(err, models.ErrInvalidOptionType) {
		t.Errorf("bad option type: got %v, want ErrInvalidOptionType", err)
	}

	arrayNoSample := coveredCall()
	arrayNoSample.Model = models.ModelArray
	if _, err := e.Evaluate(ctx, arrayNoSample); !errors.Is(err, models.ErrEmptySample) {
		t.Errorf("array without sample: got %v, want ErrEmptySample", err)
	}
}

func TestEvaluateCancelledContext(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Evaluate(ctx, coveredCall()); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

// TestEvaluateBusinessDayCount resolves the target day count from dates with
// weekends and a holiday discarded.
func TestEvaluateBusinessDayCount(t *testing.T) {
	e := newTestEngine()
	s := coveredCall()
	s.DaysToTarget = 0
	s.StartDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	s.TargetDate = time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	s.DiscardNonBusinessDays = true

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Seven calendar days minus a weekend and July 4.
	if result.DaysToTarget != 4 {
		t.Errorf("DaysToTarget = %d, want 4", result.DaysToTarget)
	}
}

// TestEvaluateUnsupportedCountryFallsBack checks an unknown calendar code does
// not fail the run.
func TestEvaluateUnsupportedCountryFallsBack(t *testing.T) {
	e := newTestEngine()
	s := coveredCall()
	s.DaysToTarget = 0
	s.StartDate = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	s.TargetDate = time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC)
	s.DiscardNonBusinessDays = true
	s.Country = "ZZ"

	result, err := e.Evaluate(context.Background(), s)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.DaysToTarget != 4 {
		t.Errorf("DaysToTarget = %d, want 4 via the default calendar", result.DaysToTarget)
	}
}

func TestPriceGridCache(t *testing.T) {
	c := NewCaches()
	grid := c.PriceGrid(90, 110, 1)
	if len(grid) != 21 {
		t.Fatalf("grid has %d points, want 21", len(grid))
	}
	if grid[0] != 90 || grid[len(grid)-1] != 110 {
		t.Errorf("grid spans [%v, %v], want [90, 110]", grid[0], grid[len(grid)-1])
	}

	again := c.PriceGrid(90, 110, 1)
	if &again[0] != &grid[0] {
		t.Error("second lookup must return the cached grid")
	}
}

func TestPriceGridSnapsToStep(t *testing.T) {
	c := NewCaches()
	grid := c.PriceGrid(0.05, 0.35, 0.01)
	if len(grid) != 31 {
		t.Fatalf("grid has %d points, want 31", len(grid))
	}
	for i, v := range grid {
		want := math.Round((0.05+float64(i)*0.01)*100) / 100
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("grid[%d] = %v, want %v", i, v, want)
		}
	}
}

func BenchmarkPriceGrid(b *testing.B) {
	c := NewCaches()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.PriceGrid(50, 150, 0.01)
	}
}

func BenchmarkEvaluateCoveredCall(b *testing.B) {
	e := newTestEngine()
	s := coveredCall()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Evaluate(ctx, s); err != nil {
			b.Fatal(err)
		}
	}
}

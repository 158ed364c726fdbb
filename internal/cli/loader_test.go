package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"options-strategist/internal/models"
)

func writeStrategyFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStrategyYAML(t *testing.T) {
	path := writeStrategyFile(t, "covered-call.yaml", `
stock_price: 100
volatility: 0.2
interest_rate: 0.05
min_stock: 70
max_stock: 130
days_to_target: 30
profit_target: 5
loss_limit: -10
legs:
  - type: stock
    quantity: 100
    action: buy
  - type: option
    option_type: call
    strike: 110
    premium: 2
    quantity: 1
    action: sell
`)

	s, err := LoadStrategy(path)
	if err != nil {
		t.Fatalf("LoadStrategy: %v", err)
	}
	if s.StockPrice != 100 || s.Volatility != 0.2 || s.DaysToTarget != 30 {
		t.Errorf("scalars not loaded: %+v", s)
	}
	if s.ProfitTarget != 5 || s.LossLimit != -10 {
		t.Errorf("thresholds not loaded: %+v", s)
	}
	// Absent model defaults to black-scholes.
	if s.Model != models.ModelBlackScholes {
		t.Errorf("model = %q, want black-scholes", s.Model)
	}
	if len(s.Legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(s.Legs))
	}

	stock, ok := s.Legs[0].(models.StockLeg)
	if !ok {
		t.Fatalf("leg 0 is %T, want StockLeg", s.Legs[0])
	}
	if stock.Quantity != 100 || stock.Action != models.Buy {
		t.Errorf("stock leg = %+v", stock)
	}

	option, ok := s.Legs[1].(models.OptionLeg)
	if !ok {
		t.Fatalf("leg 1 is %T, want OptionLeg", s.Legs[1])
	}
	if option.Type != models.Call || option.Strike != 110 || option.Action != models.Sell {
		t.Errorf("option leg = %+v", option)
	}

	if err := s.Validate(); err != nil {
		t.Errorf("loaded strategy does not validate: %v", err)
	}
}

func TestLoadStrategyDates(t *testing.T) {
	path := writeStrategyFile(t, "calendar.yaml", `
stock_price: 50
volatility: 0.3
interest_rate: 0.04
min_stock: 30
max_stock: 70
start_date: "2024-07-01"
target_date: "2024-08-16"
discard_nonbusiness_days: true
country: BR
legs:
  - type: option
    option_type: put
    strike: 45
    premium: 1.5
    quantity: 2
    action: buy
    expiration: "2024-09-20"
`)

	s, err := LoadStrategy(path)
	if err != nil {
		t.Fatalf("LoadStrategy: %v", err)
	}
	if s.StartDate.IsZero() || s.TargetDate.IsZero() {
		t.Error("dates not parsed")
	}
	if !s.DiscardNonBusinessDays || s.Country != "BR" {
		t.Errorf("calendar settings not loaded: %+v", s)
	}
	option := s.Legs[0].(models.OptionLeg)
	if option.Expiration == nil || option.Expiration.Format("2006-01-02") != "2024-09-20" {
		t.Errorf("expiration = %v", option.Expiration)
	}
}

func TestLoadStrategyClosedLeg(t *testing.T) {
	path := writeStrategyFile(t, "closed.yaml", `
stock_price: 100
volatility: 0.2
interest_rate: 0.05
min_stock: 70
max_stock: 130
days_to_target: 30
legs:
  - type: closed
    previous_position: -42.5
`)

	s, err := LoadStrategy(path)
	if err != nil {
		t.Fatalf("LoadStrategy: %v", err)
	}
	closed, ok := s.Legs[0].(models.ClosedLeg)
	if !ok {
		t.Fatalf("leg is %T, want ClosedLeg", s.Legs[0])
	}
	if closed.PrevPosition != -42.5 {
		t.Errorf("PrevPosition = %v, want -42.5", closed.PrevPosition)
	}
}

func TestLoadStrategyClosedLegWithoutPosition(t *testing.T) {
	path := writeStrategyFile(t, "bad-closed.yaml", `
stock_price: 100
volatility: 0.2
interest_rate: 0.05
min_stock: 70
max_stock: 130
days_to_target: 30
legs:
  - type: closed
`)
	if _, err := LoadStrategy(path); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("got %v, want ErrInvalidConfiguration", err)
	}
}

func TestLoadStrategyUnknownLegType(t *testing.T) {
	path := writeStrategyFile(t, "bad-leg.yaml", `
stock_price: 100
volatility: 0.2
interest_rate: 0.05
min_stock: 70
max_stock: 130
days_to_target: 30
legs:
  - type: future
`)
	if _, err := LoadStrategy(path); !errors.Is(err, models.ErrInvalidLegType) {
		t.Errorf("got %v, want ErrInvalidLegType", err)
	}
}

func TestLoadStrategyMissingFile(t *testing.T) {
	if _, err := LoadStrategy(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file must fail")
	}
}

func TestLoadStrategyBadDate(t *testing.T) {
	path := writeStrategyFile(t, "bad-date.yaml", `
stock_price: 100
volatility: 0.2
interest_rate: 0.05
min_stock: 70
max_stock: 130
start_date: "07/01/2024"
target_date: "2024-08-16"
legs:
  - type: stock
    quantity: 1
    action: buy
`)
	if _, err := LoadStrategy(path); err == nil {
		t.Fatal("malformed date must fail")
	}
}

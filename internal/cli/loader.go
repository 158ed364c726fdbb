package cli

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"options-strategist/internal/models"
)

const dateLayout = "2006-01-02"

// strategyFile mirrors the on-disk strategy description. Legs carry a "type"
// discriminant that selects the concrete leg variant at parse time.
type strategyFile struct {
	StockPrice             float64   `mapstructure:"stock_price"`
	Volatility             float64   `mapstructure:"volatility"`
	InterestRate           float64   `mapstructure:"interest_rate"`
	MinStock               float64   `mapstructure:"min_stock"`
	MaxStock               float64   `mapstructure:"max_stock"`
	DividendYield          float64   `mapstructure:"dividend_yield"`
	Commission             float64   `mapstructure:"commission"`
	StartDate              string    `mapstructure:"start_date"`
	TargetDate             string    `mapstructure:"target_date"`
	DaysToTarget           int       `mapstructure:"days_to_target"`
	DiscardNonBusinessDays bool      `mapstructure:"discard_nonbusiness_days"`
	Country                string    `mapstructure:"country"`
	Model                  string    `mapstructure:"model"`
	Sample                 []float64 `mapstructure:"sample"`
	ProfitTarget           float64   `mapstructure:"profit_target"`
	LossLimit              float64   `mapstructure:"loss_limit"`
	Legs                   []legFile `mapstructure:"legs"`
}

type legFile struct {
	Type           string   `mapstructure:"type"`
	OptionType     string   `mapstructure:"option_type"`
	Strike         float64  `mapstructure:"strike"`
	Premium        float64  `mapstructure:"premium"`
	Quantity       int      `mapstructure:"quantity"`
	Action         string   `mapstructure:"action"`
	Expiration     string   `mapstructure:"expiration"`
	ExpirationDays int      `mapstructure:"expiration_days"`
	PrevPosition   *float64 `mapstructure:"previous_position"`
}

// LoadStrategy reads a strategy description from a YAML, JSON or TOML file
// and converts it into the validated domain form.
func LoadStrategy(path string) (*models.Strategy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading strategy file %s: %w", path, err)
	}

	var file strategyFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("parsing strategy file %s: %w", path, err)
	}
	return file.toStrategy()
}

func (f *strategyFile) toStrategy() (*models.Strategy, error) {
	s := &models.Strategy{
		StockPrice:             f.StockPrice,
		Volatility:             f.Volatility,
		InterestRate:           f.InterestRate,
		MinStock:               f.MinStock,
		MaxStock:               f.MaxStock,
		DividendYield:          f.DividendYield,
		Commission:             f.Commission,
		DaysToTarget:           f.DaysToTarget,
		DiscardNonBusinessDays: f.DiscardNonBusinessDays,
		Country:                f.Country,
		Model:                  models.TheoreticalModel(f.Model),
		Sample:                 f.Sample,
		ProfitTarget:           f.ProfitTarget,
		LossLimit:              f.LossLimit,
	}
	if f.Model == "" {
		s.Model = models.ModelBlackScholes
	}

	var err error
	if f.StartDate != "" {
		if s.StartDate, err = time.Parse(dateLayout, f.StartDate); err != nil {
			return nil, fmt.Errorf("invalid start_date %q: %w", f.StartDate, err)
		}
	}
	if f.TargetDate != "" {
		if s.TargetDate, err = time.Parse(dateLayout, f.TargetDate); err != nil {
			return nil, fmt.Errorf("invalid target_date %q: %w", f.TargetDate, err)
		}
	}

	for i, leg := range f.Legs {
		parsed, err := leg.toLeg()
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		s.Legs = append(s.Legs, parsed)
	}
	return s, nil
}

func (l *legFile) toLeg() (models.Leg, error) {
	switch models.LegKind(l.Type) {
	case models.LegOption:
		leg := models.OptionLeg{
			Type:           models.OptionType(l.OptionType),
			Strike:         l.Strike,
			Premium:        l.Premium,
			Quantity:       l.Quantity,
			Action:         models.Action(l.Action),
			ExpirationDays: l.ExpirationDays,
			PrevPosition:   l.PrevPosition,
		}
		if l.Expiration != "" {
			expiration, err := time.Parse(dateLayout, l.Expiration)
			if err != nil {
				return nil, fmt.Errorf("invalid expiration %q: %w", l.Expiration, err)
			}
			leg.Expiration = &expiration
		}
		return leg, nil
	case models.LegStock:
		return models.StockLeg{
			Quantity:     l.Quantity,
			Action:       models.Action(l.Action),
			PrevPosition: l.PrevPosition,
		}, nil
	case models.LegClosed:
		if l.PrevPosition == nil {
			return nil, fmt.Errorf("closed leg needs previous_position: %w", models.ErrInvalidConfiguration)
		}
		return models.ClosedLeg{PrevPosition: *l.PrevPosition}, nil
	default:
		return nil, models.ErrInvalidLegType
	}
}

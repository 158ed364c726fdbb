// Package models provides domain models for options strategy evaluation.
package models

import (
	"fmt"
	"time"
)

// OptionType represents the type of an option contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Valid reports whether the option type is one of the two supported kinds.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Action represents the side of a position.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Valid reports whether the action is one of the two supported sides.
func (a Action) Valid() bool {
	return a == Buy || a == Sell
}

// Sign returns +1 for buy and -1 for sell.
func (a Action) Sign() float64 {
	if a == Sell {
		return -1
	}
	return 1
}

// TheoreticalModel selects the terminal price distribution used for
// probability-of-profit computations.
type TheoreticalModel string

const (
	ModelBlackScholes TheoreticalModel = "black-scholes"
	ModelNormal       TheoreticalModel = "normal"
	ModelArray        TheoreticalModel = "array"
)

// Valid reports whether the model is one of the supported distributions.
func (m TheoreticalModel) Valid() bool {
	return m == ModelBlackScholes || m == ModelNormal || m == ModelArray
}

// LegKind discriminates the variants of a strategy leg.
type LegKind string

const (
	LegOption LegKind = "option"
	LegStock  LegKind = "stock"
	LegClosed LegKind = "closed"
)

// Leg is one position within a multi-position strategy. The concrete variant
// is decided at parse time; there is no reflection-based dispatch.
type Leg interface {
	Kind() LegKind
	Validate() error
}

// OptionLeg describes a single option position.
//
// Expiration is interpreted in one of three ways: a concrete date, an
// explicit day count (ExpirationDays), or unset, in which case the option
// expires on the strategy target date. PrevPosition, when set, is the entry
// value of a position opened earlier; a negative value marks a position that
// was already closed at a loss and contributes a realized cost only.
type OptionLeg struct {
	Type           OptionType
	Strike         float64
	Premium        float64
	Quantity       int
	Action         Action
	Expiration     *time.Time
	ExpirationDays int
	PrevPosition   *float64
}

// Kind returns LegOption.
func (l OptionLeg) Kind() LegKind { return LegOption }

// Validate checks the option leg invariants.
func (l OptionLeg) Validate() error {
	if !l.Type.Valid() {
		return ErrInvalidOptionType
	}
	if !l.Action.Valid() {
		return ErrInvalidAction
	}
	if l.Strike <= 0 {
		return fmt.Errorf("option strike must be positive: %w", ErrInvalidNumericInput)
	}
	if l.Premium <= 0 {
		return fmt.Errorf("option premium must be positive: %w", ErrInvalidNumericInput)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("option quantity must be positive: %w", ErrInvalidNumericInput)
	}
	if l.Expiration != nil && l.ExpirationDays > 0 {
		return fmt.Errorf("option expiration given both as date and day count: %w", ErrInvalidConfiguration)
	}
	return nil
}

// StockLeg describes a position in the underlying stock. PrevPosition, when
// set and positive, is the original entry price; when negative it is a
// realized loss on a position already closed out.
type StockLeg struct {
	Quantity     int
	Action       Action
	PrevPosition *float64
}

// Kind returns LegStock.
func (l StockLeg) Kind() LegKind { return LegStock }

// Validate checks the stock leg invariants.
func (l StockLeg) Validate() error {
	if !l.Action.Valid() {
		return ErrInvalidAction
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("stock quantity must be positive: %w", ErrInvalidNumericInput)
	}
	return nil
}

// ClosedLeg is a previously closed position whose profit or loss is already
// locked in. It contributes a constant to cost and profit and has no market
// sensitivity. A strategy may carry at most one.
type ClosedLeg struct {
	PrevPosition float64
}

// Kind returns LegClosed.
func (l ClosedLeg) Kind() LegKind { return LegClosed }

// Validate always succeeds; any realized value is acceptable.
func (l ClosedLeg) Validate() error { return nil }

// Strategy is the validated input to the evaluation engine.
type Strategy struct {
	StockPrice    float64
	Volatility    float64
	InterestRate  float64
	MinStock      float64
	MaxStock      float64
	DividendYield float64
	Commission    float64

	// Either StartDate/TargetDate or DaysToTarget must be given, not both.
	StartDate    time.Time
	TargetDate   time.Time
	DaysToTarget int

	// DiscardNonBusinessDays subtracts weekends and holidays of Country from
	// calendar day counts.
	DiscardNonBusinessDays bool
	Country                string

	Model  TheoreticalModel
	Sample []float64

	// Optional thresholds; ProfitTarget is considered when > 0.01 and
	// LossLimit when < 0.
	ProfitTarget float64
	LossLimit    float64

	Legs []Leg

	// SkipValidation bypasses the empty-strategy check only; all other
	// invariants are always enforced.
	SkipValidation bool
}

// UsesDates reports whether the strategy is specified with concrete dates
// rather than an explicit day count.
func (s *Strategy) UsesDates() bool {
	return !s.StartDate.IsZero() || !s.TargetDate.IsZero()
}

// Validate enforces the full strategy contract. It is fail-fast: the first
// violation aborts the run and no partial results are produced.
func (s *Strategy) Validate() error {
	if len(s.Legs) == 0 && !s.SkipValidation {
		return fmt.Errorf("strategy has no legs: %w", ErrInvalidConfiguration)
	}
	if s.StockPrice <= 0 {
		return fmt.Errorf("stock price must be positive: %w", ErrInvalidNumericInput)
	}
	if s.Volatility < 0 {
		return fmt.Errorf("volatility must not be negative: %w", ErrInvalidNumericInput)
	}
	if s.InterestRate < 0 {
		return fmt.Errorf("interest rate must not be negative: %w", ErrInvalidNumericInput)
	}
	if s.MinStock < 0 || s.MaxStock < 0 || s.MaxStock <= s.MinStock {
		return fmt.Errorf("price grid bounds must satisfy 0 <= min < max: %w", ErrInvalidNumericInput)
	}
	if s.DividendYield < 0 || s.DividendYield > 1 {
		return fmt.Errorf("dividend yield must be within [0, 1]: %w", ErrInvalidNumericInput)
	}
	if s.Commission < 0 {
		return fmt.Errorf("commission must not be negative: %w", ErrInvalidNumericInput)
	}
	if s.UsesDates() {
		if s.DaysToTarget > 0 {
			return fmt.Errorf("dates and days to target date are mutually exclusive: %w", ErrInvalidConfiguration)
		}
		if s.StartDate.IsZero() || s.TargetDate.IsZero() {
			return fmt.Errorf("start date and target date must be given together: %w", ErrInvalidConfiguration)
		}
		if !s.TargetDate.After(s.StartDate) {
			return fmt.Errorf("target date must follow start date: %w", ErrInvalidConfiguration)
		}
	} else if s.DaysToTarget <= 0 {
		return fmt.Errorf("either dates or a positive days to target date is required: %w", ErrInvalidConfiguration)
	}
	if !s.Model.Valid() {
		return fmt.Errorf("unknown theoretical model %q: %w", s.Model, ErrInvalidConfiguration)
	}
	if s.Model == ModelArray && len(s.Sample) == 0 {
		return ErrEmptySample
	}

	closed := 0
	for i, leg := range s.Legs {
		if leg == nil {
			return fmt.Errorf("leg %d: %w", i, ErrInvalidLegType)
		}
		if err := leg.Validate(); err != nil {
			return fmt.Errorf("leg %d: %w", i, err)
		}
		switch l := leg.(type) {
		case ClosedLeg:
			closed++
		case OptionLeg:
			if l.Expiration != nil {
				if !s.UsesDates() {
					return fmt.Errorf("leg %d: expiration dates require the strategy to use dates: %w", i, ErrInvalidConfiguration)
				}
				if l.Expiration.Before(s.TargetDate) {
					return fmt.Errorf("leg %d: expiration before target date: %w", i, ErrInvalidConfiguration)
				}
			}
			if l.ExpirationDays > 0 && s.DaysToTarget > 0 && l.ExpirationDays < s.DaysToTarget {
				return fmt.Errorf("leg %d: expiration before target date: %w", i, ErrInvalidConfiguration)
			}
		}
	}
	if closed > 1 {
		return fmt.Errorf("at most one closed position is allowed: %w", ErrInvalidConfiguration)
	}
	return nil
}

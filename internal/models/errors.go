package models

import "errors"

// Validation and computation errors surfaced by the engine. All of them are
// raised synchronously before or during a run; none are retried.
var (
	// ErrInvalidOptionType is returned when an option type string is neither
	// "call" nor "put". The message is part of the public contract.
	ErrInvalidOptionType = errors.New("Option type must be either 'call' or 'put'!")

	// ErrInvalidAction is returned when an action string is neither "buy" nor
	// "sell". The message is part of the public contract.
	ErrInvalidAction = errors.New("Action must be either 'buy' or 'sell'!")

	// ErrInvalidLegType is returned when a strategy leg discriminant is not
	// one of "option", "stock" or "closed".
	ErrInvalidLegType = errors.New("strategy leg type must be 'option', 'stock' or 'closed'")

	// ErrInvalidConfiguration covers structural strategy problems: empty
	// strategies, conflicting date/day inputs, more than one closed position,
	// or a leg expiring before the target date.
	ErrInvalidConfiguration = errors.New("invalid strategy configuration")

	// ErrInvalidNumericInput covers out-of-range numeric fields such as a
	// non-positive stock price or a dividend yield outside [0, 1].
	ErrInvalidNumericInput = errors.New("invalid numeric input")

	// ErrEmptySample is returned when the array model is selected without a
	// terminal price sample.
	ErrEmptySample = errors.New("terminal price sample must not be empty")

	// ErrInvalidInput is returned by the calendar collaborator when the end
	// date does not follow the start date.
	ErrInvalidInput = errors.New("end date must be after start date")
)

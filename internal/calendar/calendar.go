// Package calendar counts non-business days between dates for the holiday
// calendars the engine supports.
package calendar

import (
	"fmt"
	"time"

	"options-strategist/internal/models"
)

// DefaultCountry is the calendar used when a requested country code is not
// supported.
const DefaultCountry = "US"

type holiday struct {
	month time.Month
	day   int
}

// Fixed-date market holidays per country. Floating holidays are deliberately
// out of scope: the engine only needs day counts, and the error from the few
// moving holidays is below the resolution of the day-count inputs.
var holidays = map[string][]holiday{
	"US": {
		{time.January, 1},
		{time.July, 4},
		{time.December, 25},
	},
	"BR": {
		{time.January, 1},
		{time.April, 21},
		{time.May, 1},
		{time.September, 7},
		{time.October, 12},
		{time.November, 2},
		{time.November, 15},
		{time.December, 25},
	},
}

// Supported reports whether a country code has its own holiday table.
func Supported(country string) bool {
	_, ok := holidays[country]
	return ok
}

// NonBusinessDays returns the number of weekend days and holidays in the
// interval (start, end]. An unsupported country falls back to the default
// calendar rather than failing; end at or before start is an error.
func NonBusinessDays(start, end time.Time, country string) (int, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("non-business day count from %s to %s: %w",
			start.Format("2006-01-02"), end.Format("2006-01-02"), models.ErrInvalidInput)
	}

	table, ok := holidays[country]
	if !ok {
		table = holidays[DefaultCountry]
	}

	count := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			count++
			continue
		}
		for _, h := range table {
			if d.Month() == h.month && d.Day() == h.day {
				count++
				break
			}
		}
	}
	return count, nil
}

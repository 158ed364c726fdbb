package engine

import (
	"math"
	"sync"
	"time"

	"options-strategist/internal/calendar"
)

type gridKey struct {
	min, max, step float64
}

type dayCountKey struct {
	country    string
	start, end int64
}

// Caches holds the two process-lifetime memoization maps of the engine:
// price grids keyed by their bounds and non-business day counts keyed by
// country and date range. Entries are write-once and idempotent for a given
// key, so the caches are safe to share across concurrent evaluations.
type Caches struct {
	mu       sync.Mutex
	grids    map[gridKey][]float64
	dayCount map[dayCountKey]int
}

// NewCaches creates empty caches.
func NewCaches() *Caches {
	return &Caches{
		grids:    make(map[gridKey][]float64),
		dayCount: make(map[dayCountKey]int),
	}
}

// PriceGrid returns the ordered sequence of candidate stock prices spanning
// [min, max] at the given step, building and caching it on first use.
// Callers must treat the returned slice as read-only.
func (c *Caches) PriceGrid(min, max, step float64) []float64 {
	key := gridKey{min: min, max: max, step: step}

	c.mu.Lock()
	defer c.mu.Unlock()
	if grid, ok := c.grids[key]; ok {
		return grid
	}

	n := int(math.Floor((max-min)/step+0.5)) + 1
	grid := make([]float64, n)
	for i := range grid {
		// Snap to the step so repeated addition does not drift.
		grid[i] = math.Round((min+float64(i)*step)/step) * step
	}
	c.grids[key] = grid
	return grid
}

// NonBusinessDays returns the cached non-business day count for the interval
// and country, delegating to the calendar collaborator on a miss.
func (c *Caches) NonBusinessDays(start, end time.Time, country string) (int, error) {
	key := dayCountKey{country: country, start: start.Unix(), end: end.Unix()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if days, ok := c.dayCount[key]; ok {
		return days, nil
	}

	days, err := calendar.NonBusinessDays(start, end, country)
	if err != nil {
		return 0, err
	}
	c.dayCount[key] = days
	return days, nil
}

package cli

import (
	"math"
	"strings"

	"options-strategist/internal/models"
	"options-strategist/pkg/utils"
)

// Chart geometry.
const (
	chartWidth  = 64
	chartHeight = 16
)

// renderChart draws the strategy profit curve against the price grid: a
// price-vs-profit line with a breakeven reference line, a marker column at
// the current spot price and, when configured, profit-target and loss-limit
// reference lines. It consumes the assembled result and mutates nothing.
func renderChart(output *Output, strategy *models.Strategy, result *models.StrategyResult) {
	grid, curve := result.Prices, result.Profit
	if len(grid) < 2 {
		return
	}

	// Downsample the grid to the chart width.
	cols := make([]float64, chartWidth)
	colPrice := make([]float64, chartWidth)
	for c := 0; c < chartWidth; c++ {
		idx := c * (len(grid) - 1) / (chartWidth - 1)
		cols[c] = curve[idx]
		colPrice[c] = grid[idx]
	}

	lo, hi := cols[0], cols[0]
	for _, v := range cols {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	row := func(v float64) int {
		r := int(math.Round((hi - v) / (hi - lo) * float64(chartHeight-1)))
		if r < 0 {
			r = 0
		}
		if r >= chartHeight {
			r = chartHeight - 1
		}
		return r
	}

	canvas := make([][]rune, chartHeight)
	for r := range canvas {
		canvas[r] = []rune(strings.Repeat(" ", chartWidth))
	}

	drawLevel := func(level float64, mark rune) {
		if level < lo || level > hi {
			return
		}
		r := row(level)
		for c := 0; c < chartWidth; c++ {
			if canvas[r][c] == ' ' {
				canvas[r][c] = mark
			}
		}
	}
	drawLevel(0, '-')
	if strategy.ProfitTarget > 0.01 {
		drawLevel(strategy.ProfitTarget, '=')
	}
	if strategy.LossLimit < 0 {
		drawLevel(strategy.LossLimit, '=')
	}

	for c := 0; c < chartWidth; c++ {
		canvas[row(cols[c])][c] = '*'
	}

	output.Bold("Profit/Loss  (%s .. %s)", utils.FormatPnL(lo), utils.FormatPnL(hi))
	for _, line := range canvas {
		output.Printf("  |%s\n", string(line))
	}
	output.Printf("  +%s\n", strings.Repeat("-", chartWidth))

	// Spot marker under the axis.
	spotCol := 0
	for c := 0; c < chartWidth; c++ {
		if colPrice[c] <= strategy.StockPrice {
			spotCol = c
		}
	}
	output.Printf("   %s^ spot %s\n", strings.Repeat(" ", spotCol), utils.FormatPrice(strategy.StockPrice))
	output.Dim("   %s .. %s", utils.FormatPrice(grid[0]), utils.FormatPrice(grid[len(grid)-1]))
}

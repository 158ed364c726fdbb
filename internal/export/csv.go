// Package export writes engine output to external formats.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// ProfitPoint is one row of the exported profit curve.
type ProfitPoint struct {
	StockPrice float64 `csv:"StockPrice"`
	ProfitLoss float64 `csv:"Profit/Loss"`
}

// WriteCSV writes the price grid and profit curve as two-column CSV: one
// header line followed by one row per grid point, values as plain decimals.
func WriteCSV(w io.Writer, prices, profit []float64) error {
	if len(prices) != len(profit) {
		return fmt.Errorf("price grid has %d points but profit curve has %d", len(prices), len(profit))
	}
	rows := make([]*ProfitPoint, len(prices))
	for i := range prices {
		rows[i] = &ProfitPoint{StockPrice: prices[i], ProfitLoss: profit[i]}
	}
	return gocsv.Marshal(rows, w)
}

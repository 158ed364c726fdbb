// Package utils provides shared formatting helpers.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency formats an amount as dollars with comma-grouped thousands.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var groups []string
	for n > 3 {
		groups = append([]string{s[n-3:]}, groups...)
		s = s[:n-3]
		n = len(s)
	}
	return s + "," + strings.Join(groups, ",")
}

// FormatPercent formats a fraction as a percentage with two decimals.
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// FormatPnL formats a profit/loss amount with an explicit sign.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatPrice formats a stock price, dropping the sign of a negative zero.
func FormatPrice(price float64) string {
	if price == 0 {
		price = 0
	}
	return fmt.Sprintf("%.2f", price)
}

// FormatBound formats a price range bound, rendering +Inf as the infinity
// symbol.
func FormatBound(bound float64) string {
	if math.IsInf(bound, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", bound)
}

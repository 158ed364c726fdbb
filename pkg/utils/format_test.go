package utils

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-98.4, "-$98.40"},
		{-1000, "-$1,000.00"},
	}
	for _, tt := range tests {
		if got := FormatCurrency(tt.in); got != tt.want {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.6523); got != "65.23%" {
		t.Errorf("FormatPercent(0.6523) = %q", got)
	}
	if got := FormatPercent(1); got != "100.00%" {
		t.Errorf("FormatPercent(1) = %q", got)
	}
}

func TestFormatPnL(t *testing.T) {
	if got := FormatPnL(12); got != "+$12.00" {
		t.Errorf("FormatPnL(12) = %q", got)
	}
	if got := FormatPnL(-28); got != "-$28.00" {
		t.Errorf("FormatPnL(-28) = %q", got)
	}
	if got := FormatPnL(0); got != "$0.00" {
		t.Errorf("FormatPnL(0) = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(103.456); got != "103.46" {
		t.Errorf("FormatPrice(103.456) = %q", got)
	}
	if got := FormatPrice(math.Copysign(0, -1)); got != "0.00" {
		t.Errorf("FormatPrice(-0) = %q", got)
	}
}

func TestFormatBound(t *testing.T) {
	if got := FormatBound(math.Inf(1)); got != "inf" {
		t.Errorf("FormatBound(+Inf) = %q", got)
	}
	if got := FormatBound(95.5); got != "95.50" {
		t.Errorf("FormatBound(95.5) = %q", got)
	}
}

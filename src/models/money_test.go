package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsRoundTrip(t *testing.T) {
	tests := []struct {
		in        string
		wantCents int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"1234.56", 123456},
		{"-42.50", -4250},
		{"1000000000.00", 100000000000},
	}

	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("NewFromString(%q): %v", tt.in, err)
		}
		cents := Cents(d)
		if cents != tt.wantCents {
			t.Errorf("Cents(%s) = %d, want %d", tt.in, cents, tt.wantCents)
		}
		back := FromCents(cents)
		if !back.Equal(d.Round(2)) {
			t.Errorf("FromCents(%d) = %s, want %s", cents, back, d.Round(2))
		}
	}
}

func TestCentsRoundsHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0.005", 1},
		{"0.004", 0},
		{"33.333333", 3333},
		{"0.999", 100},
	}
	for _, tt := range tests {
		d, _ := decimal.NewFromString(tt.in)
		if got := Cents(d); got != tt.want {
			t.Errorf("Cents(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

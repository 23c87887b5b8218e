package kpi

import (
	"github.com/shopspring/decimal"
)

// RatePlaces is the number of decimals rates and shares are rounded to
const RatePlaces = 3

// Ratio returns numerator/denominator rounded half-to-even to RatePlaces decimals.
// A zero denominator yields 0.
func Ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	r := decimal.NewFromInt(int64(numerator)).
		Div(decimal.NewFromInt(int64(denominator))).
		RoundBank(RatePlaces)
	return r.InexactFloat64()
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

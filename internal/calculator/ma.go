package calculator

import (
	"errors"
	"math"

	"github.com/guregu/null/v6"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, &InsufficientDataError{Indicator: "SMA", Need: period, Have: len(prices)}
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the trailing mean for every index, undefined before index period-1.
func SMASeries(values []float64, period int) []null.Float {
	out := make([]null.Float, len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		if v, err := CalculateSMA(values[:i+1], period); err == nil {
			out[i] = finiteFloat(v)
		}
	}
	return out
}

// EMASeries seeds with the SMA of the first period values, then applies 2/(period+1).
func EMASeries(values []float64, period int) []null.Float {
	out := make([]null.Float, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)
	out[period-1] = finiteFloat(ema)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
		out[i] = finiteFloat(ema)
	}
	return out
}

func finiteFloat(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

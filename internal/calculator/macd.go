package calculator

import (
	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

// MACDSeries computes the MACD line, signal and histogram.
// The signal EMA runs over the defined part of the line only and is re-aligned with undefined padding.
func MACDSeries(closes []float64, fast, slow, signal int) model.MACDSeries {
	n := len(closes)
	out := model.MACDSeries{
		Line:      make([]null.Float, n),
		Signal:    make([]null.Float, n),
		Histogram: make([]null.Float, n),
	}
	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	var defined []int
	for i := 0; i < n; i++ {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			out.Line[i] = finiteFloat(fastEMA[i].Float64 - slowEMA[i].Float64)
		}
		if out.Line[i].Valid {
			defined = append(defined, i)
		}
	}

	lineValues := make([]float64, len(defined))
	for j, idx := range defined {
		lineValues[j] = out.Line[idx].Float64
	}
	signalEMA := EMASeries(lineValues, signal)
	for j, idx := range defined {
		out.Signal[idx] = signalEMA[j]
		if signalEMA[j].Valid {
			out.Histogram[idx] = finiteFloat(out.Line[idx].Float64 - signalEMA[j].Float64)
		}
	}
	return out
}

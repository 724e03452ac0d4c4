package calculator

import (
	"errors"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

// DefaultRSIPeriod is the classic Wilder lookback.
const DefaultRSIPeriod = 14

// RSISeries computes Wilder-smoothed RSI for every index, undefined before index period.
func RSISeries(closes []float64, period int) []null.Float {
	out := make([]null.Float, len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

// CalculateRSI returns the most recent RSI of the series.
func CalculateRSI(records []model.DailyRecord, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(records) < period+1 {
		return 0, &InsufficientDataError{Indicator: "RSI", Need: period + 1, Have: len(records)}
	}
	series := RSISeries(model.Closes(records), period)
	last := series[len(series)-1]
	if !last.Valid {
		return 0, errors.New("RSI undefined for non-finite closes")
	}
	return last.Float64, nil
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

// rsiValue saturates at 100 when there are no losses; a flat window reads 50.
func rsiValue(avgGain, avgLoss float64) null.Float {
	switch {
	case avgGain == 0 && avgLoss == 0:
		return null.FloatFrom(50)
	case avgLoss == 0:
		return null.FloatFrom(100)
	}
	rs := avgGain / avgLoss
	return finiteFloat(100.0 - 100.0/(1.0+rs))
}

package calculator

import (
	"math"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

const (
	// DefaultVolatilityWindow is the rolling window in trading days.
	DefaultVolatilityWindow = 30
	// TradingDaysPerYear annualizes daily volatility.
	TradingDaysPerYear = 252
)

// ComputeVolatility sorts a copy of series by date and attaches rolling annualized volatility
// (sample stdev of log returns x sqrt(252) x 100). Days before the window fills stay undefined.
// Returns with a non-finite log are left out of their windows; fewer than two usable returns
// leaves the day undefined.
func ComputeVolatility(series []model.DailyRecord, window int) []model.DailyRecord {
	if window <= 0 {
		window = DefaultVolatilityWindow
	}
	out := model.SortedByDate(series)

	returns := make([]float64, len(out))
	for i := 1; i < len(out); i++ {
		returns[i] = math.Log(out[i].Close / out[i-1].Close)
	}

	for i := range out {
		out[i].Volatility = null.Float{}
		if i < window {
			continue
		}
		out[i].Volatility = annualizedStdev(returns[i-window+1 : i+1])
	}
	return out
}

func annualizedStdev(returns []float64) null.Float {
	var usable []float64
	for _, r := range returns {
		if !math.IsNaN(r) && !math.IsInf(r, 0) {
			usable = append(usable, r)
		}
	}
	if len(usable) < 2 {
		return null.Float{}
	}
	mean := 0.0
	for _, r := range usable {
		mean += r
	}
	mean /= float64(len(usable))
	ss := 0.0
	for _, r := range usable {
		ss += (r - mean) * (r - mean)
	}
	sd := math.Sqrt(ss / float64(len(usable)-1))
	return finiteFloat(sd * math.Sqrt(TradingDaysPerYear) * 100)
}

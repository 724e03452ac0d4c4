package calculator

import (
	"math"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

// BollingerSeries returns middle = SMA(period) and upper/lower at k population standard deviations.
func BollingerSeries(closes []float64, period int, k float64) model.BollingerSeries {
	n := len(closes)
	out := model.BollingerSeries{
		Upper:  make([]null.Float, n),
		Middle: SMASeries(closes, period),
		Lower:  make([]null.Float, n),
	}
	for i := 0; i < n; i++ {
		if !out.Middle[i].Valid {
			continue
		}
		mean := out.Middle[i].Float64
		variance := 0.0
		for _, v := range closes[i-period+1 : i+1] {
			variance += (v - mean) * (v - mean)
		}
		sd := math.Sqrt(variance / float64(period))
		out.Upper[i] = finiteFloat(mean + k*sd)
		out.Lower[i] = finiteFloat(mean - k*sd)
	}
	return out
}

package calculator

import (
	"errors"
	"math"
	"sort"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

// PeriodRange scans the most recent days records and returns the high and low.
func PeriodRange(records []model.DailyRecord, days int) (high, low float64, err error) {
	if len(records) == 0 {
		return 0, 0, errors.New("no daily records provided")
	}
	n := len(records)
	start := n - days
	if days <= 0 || start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if records[i].High > high {
			high = records[i].High
		}
		if records[i].Low < low {
			low = records[i].Low
		}
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// VolatilityPercentile ranks v among the defined volatilities in all (0.0~1.0).
// An undefined v, or no defined values, ranks 0; a value above every other ranks 1.
func VolatilityPercentile(v null.Float, all []null.Float) float64 {
	if !v.Valid {
		return 0
	}
	var defined []float64
	for _, x := range all {
		if x.Valid {
			defined = append(defined, x.Float64)
		}
	}
	if len(defined) == 0 {
		return 0
	}
	sort.Float64s(defined)
	rank := sort.SearchFloat64s(defined, v.Float64)
	if rank == len(defined) {
		return 1
	}
	return float64(rank) / float64(len(defined))
}

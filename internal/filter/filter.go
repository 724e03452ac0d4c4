package filter

import (
	"fmt"
	"math"
	"time"

	"MarketExplorer/internal/model"
)

// Period restricts records to a trailing window ending now.
type Period string

const (
	PeriodAll         Period = "all"
	PeriodLastWeek    Period = "lastWeek"
	PeriodLastMonth   Period = "lastMonth"
	PeriodLastQuarter Period = "lastQuarter"
	PeriodLastYear    Period = "lastYear"
)

// DefaultVolatilityThreshold is the annualized % above which a day counts as high volatility.
const DefaultVolatilityThreshold = 20.0

// Criteria selects daily records. The zero value keeps everything.
type Criteria struct {
	Period              Period  `form:"period" json:"period"`
	DisplayThreshold    float64 `form:"threshold" json:"displayThreshold"`
	OnlyPositive        bool    `form:"positive" json:"onlyPositive"`
	OnlyNegative        bool    `form:"negative" json:"onlyNegative"`
	OnlyHighVolatility  bool    `form:"highVolatility" json:"onlyHighVolatility"`
	VolatilityThreshold float64 `form:"volatilityThreshold" json:"volatilityThreshold"`
}

// ParsePeriod accepts the period names and "" for all.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodLastWeek, PeriodLastMonth, PeriodLastQuarter, PeriodLastYear:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Since returns the first instant kept by p, or the zero time for PeriodAll.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodLastWeek:
		return now.AddDate(0, 0, -7)
	case PeriodLastMonth:
		return now.AddDate(0, -1, 0)
	case PeriodLastQuarter:
		return now.AddDate(0, -3, 0)
	case PeriodLastYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// ActiveCount counts the criteria that narrow the result.
func (c Criteria) ActiveCount() int {
	n := 0
	if c.Period != "" && c.Period != PeriodAll {
		n++
	}
	if c.DisplayThreshold > 0 {
		n++
	}
	if c.OnlyPositive {
		n++
	}
	if c.OnlyNegative {
		n++
	}
	if c.OnlyHighVolatility {
		n++
	}
	return n
}

// Apply returns the records matching every criterion, in input order.
// Days without volatility never pass the high-volatility criterion.
func Apply(records []model.DailyRecord, c Criteria, now time.Time) []model.DailyRecord {
	since := model.NewDate(c.Period.Since(now))
	threshold := c.VolatilityThreshold
	if threshold <= 0 {
		threshold = DefaultVolatilityThreshold
	}

	out := make([]model.DailyRecord, 0, len(records))
	for _, r := range records {
		if c.Period != "" && c.Period != PeriodAll && r.Date.Before(since.Time) {
			continue
		}
		if c.DisplayThreshold > 0 && math.Abs(r.ChangePercent) < c.DisplayThreshold {
			continue
		}
		if c.OnlyPositive && r.ChangePercent <= 0 {
			continue
		}
		if c.OnlyNegative && r.ChangePercent >= 0 {
			continue
		}
		if c.OnlyHighVolatility && (!r.Volatility.Valid || r.Volatility.Float64 < threshold) {
			continue
		}
		out = append(out, r)
	}
	return out
}

package calculator

import (
	"math"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

// IndicatorConfig holds the lookbacks for ComputeIndicators.
type IndicatorConfig struct {
	SMAPeriods      []int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerK      float64
}

// DefaultIndicatorConfig returns SMA 7/14/30, RSI 14, MACD 12/26/9 and Bollinger 20/2.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		SMAPeriods:      []int{7, 14, 30},
		RSIPeriod:       DefaultRSIPeriod,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		BollingerPeriod: 20,
		BollingerK:      2,
	}
}

func (c IndicatorConfig) withDefaults() IndicatorConfig {
	d := DefaultIndicatorConfig()
	if len(c.SMAPeriods) == 0 {
		c.SMAPeriods = d.SMAPeriods
	}
	if c.RSIPeriod <= 0 {
		c.RSIPeriod = d.RSIPeriod
	}
	if c.MACDFast <= 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.BollingerPeriod <= 0 {
		c.BollingerPeriod = d.BollingerPeriod
	}
	if c.BollingerK <= 0 {
		c.BollingerK = d.BollingerK
	}
	return c
}

// ComputeIndicators sorts a copy of series by date and computes every indicator off the closes.
// Each indicator is aligned with the sorted series and undefined until its own lookback is met.
// RSI and MACD carry state across days, so they run over the finite closes only and leave
// days with a non-finite close undefined.
func ComputeIndicators(series []model.DailyRecord, cfg IndicatorConfig) model.IndicatorSeries {
	cfg = cfg.withDefaults()
	sorted := model.SortedByDate(series)
	closes := model.Closes(sorted)

	dates := make([]model.Date, len(sorted))
	for i, r := range sorted {
		dates[i] = r.Date
	}

	finite, at := finiteCloses(closes)
	macd := MACDSeries(finite, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)

	out := model.IndicatorSeries{
		Dates: dates,
		SMA:   make(map[int][]null.Float, len(cfg.SMAPeriods)),
		RSI:   realign(RSISeries(finite, cfg.RSIPeriod), at, len(closes)),
		MACD: model.MACDSeries{
			Line:      realign(macd.Line, at, len(closes)),
			Signal:    realign(macd.Signal, at, len(closes)),
			Histogram: realign(macd.Histogram, at, len(closes)),
		},
		Bollinger: BollingerSeries(closes, cfg.BollingerPeriod, cfg.BollingerK),
	}
	for _, p := range cfg.SMAPeriods {
		out.SMA[p] = SMASeries(closes, p)
	}
	return out
}

// finiteCloses drops non-finite closes and records where each kept close sat.
func finiteCloses(closes []float64) ([]float64, []int) {
	vals := make([]float64, 0, len(closes))
	at := make([]int, 0, len(closes))
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		vals = append(vals, c)
		at = append(at, i)
	}
	return vals, at
}

func realign(values []null.Float, at []int, n int) []null.Float {
	out := make([]null.Float, n)
	for j, idx := range at {
		out[idx] = values[j]
	}
	return out
}

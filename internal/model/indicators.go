package model

import "github.com/guregu/null/v6"

// MACDSeries holds the MACD line, its signal line and the histogram.
type MACDSeries struct {
	Line      []null.Float `json:"line"`
	Signal    []null.Float `json:"signal"`
	Histogram []null.Float `json:"histogram"`
}

// BollingerSeries holds the three Bollinger bands.
type BollingerSeries struct {
	Upper  []null.Float `json:"upper"`
	Middle []null.Float `json:"middle"`
	Lower  []null.Float `json:"lower"`
}

// IndicatorSeries is positionally aligned with the daily series it was computed from.
// An invalid null.Float means the indicator's lookback is not yet satisfied at that index.
type IndicatorSeries struct {
	Dates     []Date               `json:"dates"`
	SMA       map[int][]null.Float `json:"sma"`
	RSI       []null.Float         `json:"rsi"`
	MACD      MACDSeries           `json:"macd"`
	Bollinger BollingerSeries      `json:"bollinger"`
}

// Len returns the number of aligned entries.
func (s *IndicatorSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

// At returns a single-day view of every indicator. ok is false when i is out of range.
func (s *IndicatorSeries) At(i int) (IndicatorPoint, bool) {
	if i < 0 || i >= s.Len() {
		return IndicatorPoint{}, false
	}
	p := IndicatorPoint{
		Date:   s.Dates[i],
		SMA:    make(map[int]null.Float, len(s.SMA)),
		RSI:    at(s.RSI, i),
		MACD:   at(s.MACD.Line, i),
		Signal: at(s.MACD.Signal, i),
		Hist:   at(s.MACD.Histogram, i),
		Upper:  at(s.Bollinger.Upper, i),
		Middle: at(s.Bollinger.Middle, i),
		Lower:  at(s.Bollinger.Lower, i),
	}
	for period, vals := range s.SMA {
		p.SMA[period] = at(vals, i)
	}
	return p, true
}

// IndicatorPoint is every indicator value for one day.
type IndicatorPoint struct {
	Date   Date               `json:"date"`
	SMA    map[int]null.Float `json:"sma"`
	RSI    null.Float         `json:"rsi"`
	MACD   null.Float         `json:"macd"`
	Signal null.Float         `json:"macdSignal"`
	Hist   null.Float         `json:"macdHistogram"`
	Upper  null.Float         `json:"bollingerUpper"`
	Middle null.Float         `json:"bollingerMiddle"`
	Lower  null.Float         `json:"bollingerLower"`
}

func at(vals []null.Float, i int) null.Float {
	if i < 0 || i >= len(vals) {
		return null.Float{}
	}
	return vals[i]
}

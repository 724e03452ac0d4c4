package model

import "time"

// RSISignal classifies momentum from RSI.
type RSISignal string

const (
	RSIOversold   RSISignal = "oversold"
	RSIOverbought RSISignal = "overbought"
	RSINeutral    RSISignal = "neutral"
)

// TrendSignal is a directional reading.
type TrendSignal string

const (
	Bullish TrendSignal = "bullish"
	Bearish TrendSignal = "bearish"
	Neutral TrendSignal = "neutral"
)

// Signals is the qualitative classification for one day.
type Signals struct {
	Date            Date        `json:"date"`
	RSI             RSISignal   `json:"rsiSignal"`
	MACD            TrendSignal `json:"macdSignal"`
	Bollinger       TrendSignal `json:"bollingerSignal"`
	Overall         TrendSignal `json:"overallSignal"`
	BollingerStatus string      `json:"bollingerStatus"`
}

// NeutralSignals is returned whenever nothing can be classified.
func NeutralSignals() Signals {
	return Signals{
		RSI:             RSINeutral,
		MACD:            Neutral,
		Bollinger:       Neutral,
		Overall:         Neutral,
		BollingerStatus: BollingerUnimplemented,
	}
}

// BollingerUnimplemented flags that band-based classification is a stub.
const BollingerUnimplemented = "unimplemented"

// Source identifies where a snapshot's daily data came from.
type Source string

const (
	SourceLive Source = "live"
	SourceMock Source = "mock"
)

// Snapshot is one immutable pipeline result for an instrument.
type Snapshot struct {
	Instrument  string          `json:"instrument"`
	Source      Source          `json:"source"`
	RequestID   string          `json:"requestId"`
	Daily       []DailyRecord   `json:"daily"`
	Weekly      []BucketRecord  `json:"weekly"`
	Monthly     []BucketRecord  `json:"monthly"`
	Indicators  IndicatorSeries `json:"indicators"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Buckets returns the aggregate series for g.
func (s *Snapshot) Buckets(g Granularity) []BucketRecord {
	if g == Month {
		return s.Monthly
	}
	return s.Weekly
}

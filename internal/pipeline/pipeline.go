package pipeline

import (
	"time"

	"MarketExplorer/internal/aggregator"
	"MarketExplorer/internal/calculator"
	"MarketExplorer/internal/model"

	"github.com/rs/zerolog/log"
)

// Options configures one pipeline run.
type Options struct {
	VolatilityWindow int
	Indicators       calculator.IndicatorConfig
}

// DefaultOptions uses a 30-day volatility window and the default indicator lookbacks.
func DefaultOptions() Options {
	return Options{
		VolatilityWindow: calculator.DefaultVolatilityWindow,
		Indicators:       calculator.DefaultIndicatorConfig(),
	}
}

// Run enriches daily with volatility, aggregates it and computes indicators off the same series.
// The input slice is not modified.
func Run(instrument string, source model.Source, daily []model.DailyRecord, opts Options) *model.Snapshot {
	enriched := calculator.ComputeVolatility(daily, opts.VolatilityWindow)
	period := opts.Indicators.RSIPeriod
	if period <= 0 {
		period = calculator.DefaultRSIPeriod
	}
	if _, err := calculator.CalculateRSI(enriched, period); err != nil {
		log.Warn().Err(err).Str("instrument", instrument).Int("days", len(enriched)).Msg("series shorter than the RSI lookback")
	}
	return &model.Snapshot{
		Instrument:  instrument,
		Source:      source,
		Daily:       enriched,
		Weekly:      aggregator.Weekly(enriched),
		Monthly:     aggregator.Monthly(enriched),
		Indicators:  calculator.ComputeIndicators(enriched, opts.Indicators),
		GeneratedAt: time.Now().UTC(),
	}
}

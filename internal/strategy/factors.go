package strategy

import (
	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
)

const (
	// RSIOversoldBelow and RSIOverboughtAbove bound the neutral RSI band.
	RSIOversoldBelow   = 30.0
	RSIOverboughtAbove = 70.0
)

// classifyRSI maps RSI to oversold / overbought / neutral.
func classifyRSI(rsi null.Float) model.RSISignal {
	if !rsi.Valid {
		return model.RSINeutral
	}
	switch {
	case rsi.Float64 < RSIOversoldBelow:
		return model.RSIOversold
	case rsi.Float64 > RSIOverboughtAbove:
		return model.RSIOverbought
	default:
		return model.RSINeutral
	}
}

// classifyMACD requires the line, the signal and the histogram to agree.
func classifyMACD(line, signal, hist null.Float) model.TrendSignal {
	if !line.Valid || !signal.Valid || !hist.Valid {
		return model.Neutral
	}
	switch {
	case line.Float64 > signal.Float64 && hist.Float64 > 0:
		return model.Bullish
	case line.Float64 < signal.Float64 && hist.Float64 < 0:
		return model.Bearish
	default:
		return model.Neutral
	}
}

// classifyBollinger has no rule yet and always reads neutral.
func classifyBollinger(_ model.IndicatorPoint) model.TrendSignal {
	return model.Neutral
}

// lean converts a sub-signal into a vote: +1 bullish, -1 bearish, 0 neutral.
func lean(s interface{}) int {
	switch s {
	case model.RSIOversold, model.Bullish:
		return 1
	case model.RSIOverbought, model.Bearish:
		return -1
	default:
		return 0
	}
}

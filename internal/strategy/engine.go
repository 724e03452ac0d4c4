package strategy

import "MarketExplorer/internal/model"

// Classify derives the qualitative signals for day index of ind.
// An out-of-range index or undefined inputs yield neutral readings.
func Classify(ind *model.IndicatorSeries, index int) model.Signals {
	sig := model.NeutralSignals()
	p, ok := ind.At(index)
	if !ok {
		return sig
	}
	sig.Date = p.Date

	// Step a: sub-signals
	sig.RSI = classifyRSI(p.RSI)
	sig.MACD = classifyMACD(p.MACD, p.Signal, p.Hist)
	sig.Bollinger = classifyBollinger(p)

	// Step b: majority vote, tie -> neutral
	bullish, bearish := 0, 0
	for _, v := range []int{lean(sig.RSI), lean(sig.MACD), lean(sig.Bollinger)} {
		switch {
		case v > 0:
			bullish++
		case v < 0:
			bearish++
		}
	}
	switch {
	case bullish > bearish:
		sig.Overall = model.Bullish
	case bearish > bullish:
		sig.Overall = model.Bearish
	}
	return sig
}

// ClassifyLatest classifies the last day of the series.
func ClassifyLatest(ind *model.IndicatorSeries) model.Signals {
	return Classify(ind, ind.Len()-1)
}

// Package report renders snapshots as plain-text summaries for the CLI and API.
package report

import (
	"fmt"
	"sort"
	"strings"

	"MarketExplorer/internal/calculator"
	"MarketExplorer/internal/model"
	"MarketExplorer/internal/strategy"

	"github.com/guregu/null/v6"
)

const notAvailable = "N/A"

// FormatVolume abbreviates with K/M/B suffixes at two decimals.
func FormatVolume(v null.Float) string {
	if !v.Valid {
		return notAvailable
	}
	x := v.Float64
	switch {
	case x >= 1e9:
		return fmt.Sprintf("%.2fB", x/1e9)
	case x >= 1e6:
		return fmt.Sprintf("%.2fM", x/1e6)
	case x >= 1e3:
		return fmt.Sprintf("%.2fK", x/1e3)
	}
	return fmt.Sprintf("%.2f", x)
}

// FormatPercent renders a signed percentage, e.g. "+1.25%".
func FormatPercent(v null.Float) string {
	if !v.Valid {
		return notAvailable
	}
	if v.Float64 > 0 {
		return fmt.Sprintf("+%.2f%%", v.Float64)
	}
	return fmt.Sprintf("%.2f%%", v.Float64)
}

func formatValue(v null.Float, places int) string {
	if !v.Valid {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", places, v.Float64)
}

func direction(change float64) string {
	switch {
	case change > 0:
		return "Gain"
	case change < 0:
		return "Loss"
	}
	return "Neutral"
}

// FormatMetrics renders the metrics panel for the day at index.
func FormatMetrics(snap *model.Snapshot, index int) (string, error) {
	if snap == nil || index < 0 || index >= len(snap.Daily) {
		return "", fmt.Errorf("no daily record at index %d", index)
	}
	d := snap.Daily[index]
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 %s | %s (%s)\n\n", snap.Instrument, d.Date.Format("Monday, January 2, 2006"), snap.Source))
	b.WriteString(fmt.Sprintf("Change: %s [%s]\n", FormatPercent(null.FloatFrom(d.ChangePercent)), direction(d.ChangePercent)))
	b.WriteString(fmt.Sprintf("Open: %.4f | Close: %.4f\n", d.Open, d.Close))
	b.WriteString(fmt.Sprintf("High: %.4f | Low: %.4f\n", d.High, d.Low))
	b.WriteString(fmt.Sprintf("Volume: %s\n", FormatVolume(null.FloatFrom(d.Volume))))
	b.WriteString(fmt.Sprintf("Volatility: %s", formatValue(d.Volatility, 2)))
	if d.Volatility.Valid {
		all := make([]null.Float, len(snap.Daily))
		for i, r := range snap.Daily {
			all[i] = r.Volatility
		}
		pct := calculator.VolatilityPercentile(d.Volatility, all)
		b.WriteString(fmt.Sprintf(" (p%.0f)", pct*100))
	}
	b.WriteString("\n")

	if high, low, err := calculator.PeriodRange(snap.Daily[:index+1], 30); err == nil {
		if pos, err := calculator.RangePosition(d.Close, high, low); err == nil {
			b.WriteString(fmt.Sprintf("30d range: %.4f - %.4f (at %.0f%%)\n", low, high, pos*100))
		}
	}

	if p, ok := snap.Indicators.At(index); ok {
		b.WriteString("\n📈 Indicators:\n")
		periods := make([]int, 0, len(p.SMA))
		for period := range p.SMA {
			periods = append(periods, period)
		}
		sort.Ints(periods)
		for _, period := range periods {
			b.WriteString(fmt.Sprintf("  SMA%d: %s\n", period, formatValue(p.SMA[period], 4)))
		}
		b.WriteString(fmt.Sprintf("  RSI: %s\n", formatValue(p.RSI, 2)))
		b.WriteString(fmt.Sprintf("  MACD: %s | Signal: %s | Hist: %s\n",
			formatValue(p.MACD, 4), formatValue(p.Signal, 4), formatValue(p.Hist, 4)))
		b.WriteString(fmt.Sprintf("  Bollinger: %s / %s / %s\n",
			formatValue(p.Upper, 4), formatValue(p.Middle, 4), formatValue(p.Lower, 4)))
	}

	b.WriteString("\n")
	b.WriteString(FormatSignals(strategy.Classify(&snap.Indicators, index)))
	return b.String(), nil
}

// FormatSignals renders the qualitative classification.
func FormatSignals(s model.Signals) string {
	var b strings.Builder
	b.WriteString("🧭 Signals:\n")
	b.WriteString(fmt.Sprintf("  RSI: %s\n", s.RSI))
	b.WriteString(fmt.Sprintf("  MACD: %s\n", s.MACD))
	b.WriteString(fmt.Sprintf("  Bollinger: %s", s.Bollinger))
	if s.BollingerStatus != "" {
		b.WriteString(fmt.Sprintf(" (%s)", s.BollingerStatus))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Overall: %s\n", s.Overall))
	return b.String()
}

// FormatMonthlySummary lists each month with its change, average daily change and volatility.
func FormatMonthlySummary(buckets []model.BucketRecord) string {
	var b strings.Builder
	b.WriteString("📅 Monthly summary\n\n")
	if len(buckets) == 0 {
		b.WriteString("No data\n")
		return b.String()
	}

	best, worst := 0, 0
	for i, m := range buckets {
		b.WriteString(fmt.Sprintf("%s  %s  avg %s  vol %s  (%d days)\n",
			m.Key,
			FormatPercent(null.FloatFrom(m.ChangePercent)),
			FormatPercent(null.FloatFrom(m.AvgChangePercent)),
			formatValue(m.Volatility, 2),
			m.TradingDays))
		if m.ChangePercent > buckets[best].ChangePercent {
			best = i
		}
		if m.ChangePercent < buckets[worst].ChangePercent {
			worst = i
		}
	}
	b.WriteString(fmt.Sprintf("\nBest: %s (%s)\n", buckets[best].Key, FormatPercent(null.FloatFrom(buckets[best].ChangePercent))))
	b.WriteString(fmt.Sprintf("Worst: %s (%s)\n", buckets[worst].Key, FormatPercent(null.FloatFrom(buckets[worst].ChangePercent))))
	return b.String()
}

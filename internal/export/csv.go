// Package export renders daily and bucket series as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data to export")

// Kind selects one of the CSV layouts.
type Kind string

const (
	KindDaily  Kind = "daily"
	KindPrices Kind = "prices"
	KindWeek   Kind = "week"
	KindMonth  Kind = "month"
)

// ParseKind accepts the layout names, plus "weekly" and "monthly".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "daily", "":
		return KindDaily, nil
	case "prices":
		return KindPrices, nil
	case "week", "weekly":
		return KindWeek, nil
	case "month", "monthly":
		return KindMonth, nil
	}
	return "", fmt.Errorf("unknown export kind %q", s)
}

// Filename suggests a download name like "BTC-USDT_daily_2024-01-31.csv".
func Filename(instrument string, kind Kind, asOf model.Date) string {
	return fmt.Sprintf("%s_%s_%s.csv", instrument, kind, asOf.Key())
}

var (
	dailyHeader  = []string{"Date", "Open", "High", "Low", "Close", "Volume", "Change %", "Volatility"}
	pricesHeader = []string{"Date", "Open", "High", "Low", "Close"}
	bucketHeader = []string{"Period", "Start", "Open", "High", "Low", "Close", "Volume", "Change %", "Avg Change %", "Volatility", "Trading Days"}
)

// WriteDaily writes every daily field. Volatility keeps four decimals and is blank when undefined.
func WriteDaily(w io.Writer, records []model.DailyRecord) error {
	if len(records) == 0 {
		return ErrNoData
	}
	return write(w, dailyHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.Date.Key(),
			fixed(r.Open, 2), fixed(r.High, 2), fixed(r.Low, 2), fixed(r.Close, 2),
			fixed(r.Volume, 2),
			fixed(r.ChangePercent, 2),
			optional(r.Volatility, 4),
		}
	})
}

// WritePrices writes OHLC only.
func WritePrices(w io.Writer, records []model.DailyRecord) error {
	if len(records) == 0 {
		return ErrNoData
	}
	return write(w, pricesHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{r.Date.Key(), fixed(r.Open, 4), fixed(r.High, 4), fixed(r.Low, 4), fixed(r.Close, 4)}
	})
}

// WriteBuckets writes weekly or monthly aggregates.
func WriteBuckets(w io.Writer, buckets []model.BucketRecord) error {
	if len(buckets) == 0 {
		return ErrNoData
	}
	return write(w, bucketHeader, len(buckets), func(i int) []string {
		b := buckets[i]
		return []string{
			b.Key,
			b.Start.Key(),
			fixed(b.Open, 2), fixed(b.High, 2), fixed(b.Low, 2), fixed(b.Close, 2),
			fixed(b.Volume, 2),
			fixed(b.ChangePercent, 2),
			fixed(b.AvgChangePercent, 2),
			optional(b.Volatility, 4),
			strconv.Itoa(b.TradingDays),
		}
	})
}

// Write dispatches on kind using the snapshot's series.
func Write(w io.Writer, kind Kind, snap *model.Snapshot) error {
	if snap == nil {
		return ErrNoData
	}
	switch kind {
	case KindDaily:
		return WriteDaily(w, snap.Daily)
	case KindPrices:
		return WritePrices(w, snap.Daily)
	case KindWeek:
		return WriteBuckets(w, snap.Weekly)
	case KindMonth:
		return WriteBuckets(w, snap.Monthly)
	}
	return fmt.Errorf("unknown export kind %q", kind)
}

func write(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func optional(v null.Float, places int32) string {
	if !v.Valid {
		return ""
	}
	return fixed(v.Float64, places)
}

package collector

import (
	"context"
	"time"

	"MarketExplorer/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	FetchDaily(ctx context.Context, instrument string, from, to time.Time) ([]model.DailyRecord, error)
	Name() string
}

// DateRange is an inclusive [From, To] window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DaysBack returns the window ending at now and starting days earlier.
func DaysBack(now time.Time, days int) DateRange {
	return DateRange{From: now.AddDate(0, 0, -days), To: now}
}

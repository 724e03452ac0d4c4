package collector

import (
	"context"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"MarketExplorer/internal/model"
)

// MockFetcher synthesizes a random-walk series for development and testing.
// Seed 0 draws a fresh series on every call; any other seed is reproducible per instrument.
type MockFetcher struct {
	BasePrice float64
	Seed      int64
	Calendar  *TradingCalendar
	DailyData []model.DailyRecord // returned as-is when set
}

// NewMockFetcher creates a mock priced from 100 on exchange trading days.
func NewMockFetcher(seed int64, cal *TradingCalendar) *MockFetcher {
	return &MockFetcher{BasePrice: 100, Seed: seed, Calendar: cal}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(ctx context.Context, instrument string, from, to time.Time) ([]model.DailyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.DailyData != nil {
		out := make([]model.DailyRecord, len(m.DailyData))
		copy(out, m.DailyData)
		return out, nil
	}
	return m.generate(strings.ToUpper(instrument), from, to), nil
}

// generate walks the price day by day: change uniform in [-2%, 2%),
// high/low up to 2% beyond the body, volume in [100000, 1100000).
func (m *MockFetcher) generate(instrument string, from, to time.Time) []model.DailyRecord {
	rng := rand.New(rand.NewSource(m.seedFor(instrument)))
	price := m.BasePrice
	if price <= 0 {
		price = 100
	}

	var out []model.DailyRecord
	for d := model.NewDate(from); !d.After(to); d = d.AddDays(1) {
		if !m.Calendar.IsTradingDay(d.Time) {
			continue
		}
		change := (rng.Float64() - 0.5) * 4
		open := price
		close := open * (1 + change/100)
		high := max(open, close) * (1 + rng.Float64()*0.02)
		low := min(open, close) * (1 - rng.Float64()*0.02)
		volume := float64(rng.Intn(1000000) + 100000)

		out = append(out, model.NewDailyRecord(instrument, d, open, high, low, close, volume))
		price = close
	}
	return out
}

func (m *MockFetcher) seedFor(instrument string) int64 {
	if m.Seed == 0 {
		return time.Now().UnixNano()
	}
	h := fnv.New64a()
	h.Write([]byte(instrument))
	return m.Seed ^ int64(h.Sum64())
}

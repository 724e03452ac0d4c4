package collector

import (
	"context"
	"testing"
	"time"

	"MarketExplorer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockFetcher_SeededIsReproducible(t *testing.T) {
	m := NewMockFetcher(42, WeekdayCalendar())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	a, err := m.FetchDaily(context.Background(), "BTC-USDT", from, to)
	require.NoError(t, err)
	b, err := m.FetchDaily(context.Background(), "btc-usdt", from, to)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := m.FetchDaily(context.Background(), "ETH-USDT", from, to)
	require.NoError(t, err)
	assert.NotEqual(t, a[0].Close, c[0].Close)
}

func TestMockFetcher_WalkBounds(t *testing.T) {
	m := NewMockFetcher(7, WeekdayCalendar())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records, err := m.FetchDaily(context.Background(), "SOL-USDT", from, from.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, records)

	assert.Equal(t, 100.0, records[0].Open)
	for i, r := range records {
		wd := r.Date.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
		assert.GreaterOrEqual(t, r.ChangePercent, -2.0)
		assert.Less(t, r.ChangePercent, 2.0)
		assert.GreaterOrEqual(t, r.High, r.Open)
		assert.GreaterOrEqual(t, r.High, r.Close)
		assert.LessOrEqual(t, r.Low, r.Open)
		assert.LessOrEqual(t, r.Low, r.Close)
		assert.GreaterOrEqual(t, r.Volume, 100000.0)
		assert.Less(t, r.Volume, 1100000.0)
		require.NoError(t, r.Validate())
		if i > 0 {
			assert.Equal(t, records[i-1].Close, r.Open)
			assert.True(t, records[i-1].Date.Before(r.Date.Time))
		}
	}
}

func TestMockFetcher_FixedData(t *testing.T) {
	fixed := []model.DailyRecord{model.NewDailyRecord("X", model.DateOf(2024, 1, 1), 1, 2, 0.5, 1.5, 10)}
	m := &MockFetcher{DailyData: fixed}
	out, err := m.FetchDaily(context.Background(), "X", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, fixed, out)
}

func TestMockFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockFetcher(1, nil).FetchDaily(ctx, "X", time.Now(), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTradingCalendar_XNYSSkipsHolidays(t *testing.T) {
	cal := NewTradingCalendar("xnys")
	if cal.Fallback {
		t.Skip("xnys calendar not available")
	}
	assert.False(t, cal.IsTradingDay(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsTradingDay(time.Date(2024, 12, 28, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cal.IsTradingDay(time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)))
}

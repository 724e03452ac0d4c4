package report

import (
	"testing"

	"MarketExplorer/internal/model"
	"MarketExplorer/internal/pipeline"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		in   null.Float
		want string
	}{
		{null.FloatFrom(500), "500.00"},
		{null.FloatFrom(12300), "12.30K"},
		{null.FloatFrom(999999), "1000.00K"},
		{null.FloatFrom(4560000), "4.56M"},
		{null.FloatFrom(999999999), "1000.00M"},
		{null.FloatFrom(7890000000), "7.89B"},
		{null.Float{}, "N/A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatVolume(tt.in))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "+1.25%", FormatPercent(null.FloatFrom(1.25)))
	assert.Equal(t, "-0.50%", FormatPercent(null.FloatFrom(-0.5)))
	assert.Equal(t, "0.00%", FormatPercent(null.FloatFrom(0)))
	assert.Equal(t, "N/A", FormatPercent(null.Float{}))
}

func snapshot(n int) *model.Snapshot {
	daily := make([]model.DailyRecord, n)
	start := model.DateOf(2024, 1, 1)
	for i := range daily {
		p := 100 + float64(i%7) - float64(i%3)
		daily[i] = model.NewDailyRecord("BTC-USDT", start.AddDays(i), p, p+2, p-2, p+1, 1500000)
	}
	return pipeline.Run("BTC-USDT", model.SourceMock, daily, pipeline.DefaultOptions())
}

func TestFormatMetrics(t *testing.T) {
	snap := snapshot(60)

	out, err := FormatMetrics(snap, 59)
	require.NoError(t, err)
	assert.Contains(t, out, "BTC-USDT")
	assert.Contains(t, out, "Volume: 1.50M")
	assert.Contains(t, out, "[Gain]")
	assert.Contains(t, out, "RSI: ")
	assert.Contains(t, out, "Overall: ")
	assert.Contains(t, out, "30d range:")

	early, err := FormatMetrics(snap, 0)
	require.NoError(t, err)
	assert.Contains(t, early, "Volatility: N/A")
	assert.Contains(t, early, "RSI: N/A")

	_, err = FormatMetrics(snap, 60)
	assert.Error(t, err)
	_, err = FormatMetrics(nil, 0)
	assert.Error(t, err)
}

func TestFormatMonthlySummary(t *testing.T) {
	buckets := []model.BucketRecord{
		{Key: "2024-01", ChangePercent: 3.2, AvgChangePercent: 0.1, Volatility: null.FloatFrom(35.1), TradingDays: 22},
		{Key: "2024-02", ChangePercent: -4.5, AvgChangePercent: -0.2, TradingDays: 21},
		{Key: "2024-03", ChangePercent: 1, TradingDays: 21},
	}
	out := FormatMonthlySummary(buckets)
	assert.Contains(t, out, "2024-01  +3.20%  avg +0.10%  vol 35.10  (22 days)")
	assert.Contains(t, out, "2024-02  -4.50%  avg -0.20%  vol N/A  (21 days)")
	assert.Contains(t, out, "Best: 2024-01 (+3.20%)")
	assert.Contains(t, out, "Worst: 2024-02 (-4.50%)")

	assert.Contains(t, FormatMonthlySummary(nil), "No data")
}

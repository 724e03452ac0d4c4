package calculator

import (
	"math"
	"testing"
	"time"

	"MarketExplorer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeVolatility_Pinned(t *testing.T) {
	expected := map[int]float64{
		30: 35.72767710899417,
		31: 34.721336627063074,
		34: 32.460220938084234,
		39: 35.10351919427599,
	}
	out := ComputeVolatility(recordsFromCloses(wave), 30)
	require.Len(t, out, len(wave))
	for i := 0; i < 30; i++ {
		assert.False(t, out[i].Volatility.Valid, "index %d should be undefined", i)
	}
	for i, want := range expected {
		require.True(t, out[i].Volatility.Valid, "index %d", i)
		assert.InDelta(t, want, out[i].Volatility.Float64, 1e-9, "index %d", i)
	}
}

func TestComputeVolatility_AlternatingCloses(t *testing.T) {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}
	out := ComputeVolatility(recordsFromCloses(closes), 30)
	require.Len(t, out, 35)
	for i := 0; i < 30; i++ {
		assert.False(t, out[i].Volatility.Valid)
	}
	for i := 30; i < 35; i++ {
		require.True(t, out[i].Volatility.Valid)
		assert.Greater(t, out[i].Volatility.Float64, 0.0)
	}
}

func TestComputeVolatility_SortsUnorderedInput(t *testing.T) {
	day1 := model.DateOf(2024, time.March, 1)
	in := []model.DailyRecord{
		model.NewDailyRecord("X", day1.AddDays(2), 106, 109, 105, 108, 1),
		model.NewDailyRecord("X", day1, 100, 103, 99, 102, 1),
		model.NewDailyRecord("X", day1.AddDays(1), 102, 107, 101, 106, 1),
	}
	out := ComputeVolatility(in, 30)
	require.Len(t, out, 3)
	assert.Equal(t, day1, out[0].Date)
	assert.Equal(t, day1.AddDays(1), out[1].Date)
	assert.Equal(t, day1.AddDays(2), out[2].Date)

	// input untouched
	assert.Equal(t, day1.AddDays(2), in[0].Date)
}

func TestComputeVolatility_Idempotent(t *testing.T) {
	in := recordsFromCloses(wave)
	first := ComputeVolatility(in, 30)
	second := ComputeVolatility(first, 30)
	assert.Equal(t, first, second)
}

func TestComputeVolatility_NonFiniteReturnsExcluded(t *testing.T) {
	closes := append([]float64(nil), wave...)
	closes[31] = 0
	closes[33] = math.NaN()
	out := ComputeVolatility(recordsFromCloses(closes), 30)
	for _, r := range out {
		if r.Volatility.Valid {
			assert.False(t, math.IsNaN(r.Volatility.Float64))
			assert.False(t, math.IsInf(r.Volatility.Float64, 0))
		}
	}
	assert.True(t, out[35].Volatility.Valid)
}

func TestComputeVolatility_TooFewUsableReturns(t *testing.T) {
	closes := []float64{100, 0, 0, 0}
	out := ComputeVolatility(recordsFromCloses(closes), 2)
	for _, r := range out {
		assert.False(t, r.Volatility.Valid)
	}
}

func TestComputeVolatility_DefaultWindow(t *testing.T) {
	out := ComputeVolatility(recordsFromCloses(wave), 0)
	assert.False(t, out[29].Volatility.Valid)
	assert.True(t, out[30].Volatility.Valid)
}

package calculator

import (
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRange(t *testing.T) {
	records := recordsFromCloses([]float64{10, 20, 15, 12})
	high, low, err := PeriodRange(records, 2)
	require.NoError(t, err)
	assert.InDelta(t, 15*1.01, high, 1e-12)
	assert.InDelta(t, 12*0.99, low, 1e-12)

	high, low, err = PeriodRange(records, 100)
	require.NoError(t, err)
	assert.InDelta(t, 20*1.01, high, 1e-12)
	assert.InDelta(t, 10*0.99, low, 1e-12)

	_, _, err = PeriodRange(nil, 5)
	assert.Error(t, err)
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		current, high, low float64
		want               float64
	}{
		{15, 20, 10, 0.5},
		{25, 20, 10, 1},
		{5, 20, 10, 0},
		{10, 10, 10, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.current, tt.high, tt.low)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := RangePosition(1, 1, 2)
	assert.Error(t, err)
}

func TestVolatilityPercentile(t *testing.T) {
	all := []null.Float{null.FloatFrom(10), {}, null.FloatFrom(20), null.FloatFrom(30), null.FloatFrom(40)}
	assert.Equal(t, 0.0, VolatilityPercentile(null.Float{}, all))
	assert.Equal(t, 0.0, VolatilityPercentile(null.FloatFrom(5), all))
	assert.Equal(t, 0.5, VolatilityPercentile(null.FloatFrom(30), all))
	assert.Equal(t, 0.5, VolatilityPercentile(null.FloatFrom(25), all))
	assert.Equal(t, 1.0, VolatilityPercentile(null.FloatFrom(50), all))
	assert.Equal(t, 0.0, VolatilityPercentile(null.FloatFrom(5), []null.Float{{}}))
}

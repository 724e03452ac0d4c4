package filter

import (
	"testing"
	"time"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC)

func rec(daysAgo int, change float64, vol null.Float) model.DailyRecord {
	r := model.NewDailyRecord("X", model.NewDate(now).AddDays(-daysAgo), 100, 110, 90, 100*(1+change/100), 1)
	r.Volatility = vol
	return r
}

func dates(rs []model.DailyRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Date.Key()
	}
	return out
}

func TestApply_Period(t *testing.T) {
	in := []model.DailyRecord{rec(400, 1, null.Float{}), rec(100, 1, null.Float{}), rec(20, 1, null.Float{}), rec(7, 1, null.Float{}), rec(1, 1, null.Float{})}

	tests := []struct {
		period Period
		want   int
	}{
		{PeriodAll, 5},
		{"", 5},
		{PeriodLastYear, 4},
		{PeriodLastQuarter, 3},
		{PeriodLastMonth, 3},
		{PeriodLastWeek, 2},
	}
	for _, tt := range tests {
		assert.Len(t, Apply(in, Criteria{Period: tt.period}, now), tt.want, string(tt.period))
	}
}

func TestApply_ChangeAndVolatility(t *testing.T) {
	in := []model.DailyRecord{
		rec(5, 3, null.FloatFrom(25)),
		rec(4, -4, null.FloatFrom(10)),
		rec(3, 0.5, null.FloatFrom(40)),
		rec(2, -1, null.Float{}),
		rec(1, 0, null.FloatFrom(20)),
	}

	assert.Equal(t, dates(in[:2]), dates(Apply(in, Criteria{DisplayThreshold: 2}, now)))
	assert.Equal(t, []string{in[0].Date.Key(), in[2].Date.Key()}, dates(Apply(in, Criteria{OnlyPositive: true}, now)))
	assert.Equal(t, []string{in[1].Date.Key(), in[3].Date.Key()}, dates(Apply(in, Criteria{OnlyNegative: true}, now)))
	assert.Equal(t, []string{in[0].Date.Key(), in[2].Date.Key(), in[4].Date.Key()}, dates(Apply(in, Criteria{OnlyHighVolatility: true}, now)))
	assert.Equal(t, []string{in[2].Date.Key()}, dates(Apply(in, Criteria{OnlyHighVolatility: true, VolatilityThreshold: 30}, now)))

	combined := Criteria{DisplayThreshold: 2, OnlyPositive: true, OnlyHighVolatility: true}
	assert.Equal(t, []string{in[0].Date.Key()}, dates(Apply(in, combined, now)))
	assert.Equal(t, 3, combined.ActiveCount())
	assert.Equal(t, 0, Criteria{}.ActiveCount())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("lastQuarter")
	require.NoError(t, err)
	assert.Equal(t, PeriodLastQuarter, p)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, p)

	_, err = ParsePeriod("lastDecade")
	assert.Error(t, err)
}

package aggregator

import (
	"fmt"
	"math"
	"sort"

	"MarketExplorer/internal/model"

	"github.com/guregu/null/v6"
	"github.com/rs/zerolog/log"
)

// Aggregate rolls daily records into ISO-week or calendar-month buckets sorted by bucket start.
// Records with non-finite prices are skipped. Empty buckets are never emitted.
func Aggregate(series []model.DailyRecord, g model.Granularity) ([]model.BucketRecord, error) {
	if g != model.Week && g != model.Month {
		return nil, fmt.Errorf("aggregate: unknown granularity %q", g)
	}

	groups := make(map[string][]model.DailyRecord)
	starts := make(map[string]model.Date)
	for _, d := range series {
		if !finiteOHLC(d) {
			log.Debug().Str("date", d.Date.Key()).Str("granularity", string(g)).Msg("skipping malformed record")
			continue
		}
		key, start := bucketOf(d.Date, g)
		groups[key] = append(groups[key], d)
		starts[key] = start
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return starts[keys[i]].Before(starts[keys[j]].Time) })

	out := make([]model.BucketRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, summarize(model.SortedByDate(groups[k]), g, k, starts[k]))
	}
	return out, nil
}

// Weekly aggregates by ISO week (Monday start).
func Weekly(series []model.DailyRecord) []model.BucketRecord {
	out, _ := Aggregate(series, model.Week)
	return out
}

// Monthly aggregates by calendar year-month.
func Monthly(series []model.DailyRecord) []model.BucketRecord {
	out, _ := Aggregate(series, model.Month)
	return out
}

// bucketOf returns the bucket key and the first calendar day of the bucket period.
func bucketOf(d model.Date, g model.Granularity) (string, model.Date) {
	if g == model.Month {
		return d.Format("2006-01"), model.DateOf(d.Year(), d.Month(), 1)
	}
	year, week := d.ISOWeek()
	offset := (int(d.Weekday()) + 6) % 7 // days since Monday
	return fmt.Sprintf("%04d-W%02d", year, week), d.AddDays(-offset)
}

// summarize expects days sorted by date and non-empty.
func summarize(days []model.DailyRecord, g model.Granularity, key string, start model.Date) model.BucketRecord {
	first, last := days[0], days[len(days)-1]
	b := model.BucketRecord{
		Granularity:      g,
		Key:              key,
		Start:            start,
		FirstDay:         first.Date,
		LastDay:          last.Date,
		Open:             first.Open,
		Close:            last.Close,
		High:             math.Inf(-1),
		Low:              math.Inf(1),
		MaxChangePercent: math.Inf(-1),
		MinChangePercent: math.Inf(1),
		TradingDays:      len(days),
	}

	var changeSum, volSum float64
	var volCount int
	for _, d := range days {
		if d.High > b.High {
			b.High = d.High
		}
		if d.Low < b.Low {
			b.Low = d.Low
		}
		b.Volume += d.Volume
		changeSum += d.ChangePercent
		if d.ChangePercent > b.MaxChangePercent {
			b.MaxChangePercent = d.ChangePercent
		}
		if d.ChangePercent < b.MinChangePercent {
			b.MinChangePercent = d.ChangePercent
		}
		if d.Volatility.Valid {
			volSum += d.Volatility.Float64
			volCount++
		}
	}

	b.AvgChangePercent = changeSum / float64(len(days))
	if b.Open != 0 {
		b.ChangePercent = (b.Close - b.Open) / b.Open * 100
	}
	if volCount > 0 {
		b.Volatility = null.FloatFrom(volSum / float64(volCount))
	}
	return b
}

func finiteOHLC(d model.DailyRecord) bool {
	for _, v := range []float64{d.Open, d.High, d.Low, d.Close, d.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BucketStart returns the first calendar day of the bucket containing d.
func BucketStart(d model.Date, g model.Granularity) model.Date {
	_, start := bucketOf(d, g)
	return start
}

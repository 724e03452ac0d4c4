package calculator

import (
	"time"

	"MarketExplorer/internal/model"
)

// wave is 100 + 10*sin(i/3) + 0.5*i rounded to 4 places, i = 0..39.
var wave = []float64{
	100.0, 103.7719, 107.1837, 109.9147, 111.7194, 112.4541, 112.093, 110.7309, 108.5727, 105.9112,
	103.0943, 100.4872, 98.432, 97.2099, 97.0105, 97.9108, 99.8667, 102.718, 106.2058, 110.0013,
	113.7415, 117.0699, 119.675, 121.3251, 121.8936, 121.3729, 119.8755, 117.6212, 114.9132, 112.1046,
	109.5598, 107.6138, 106.536, 106.5001, 107.565, 109.6686, 112.6343, 116.1907, 120.0013, 123.7017,
}

func recordsFromCloses(closes []float64) []model.DailyRecord {
	start := model.DateOf(2024, time.January, 1)
	out := make([]model.DailyRecord, len(closes))
	for i, c := range closes {
		out[i] = model.NewDailyRecord("TEST", start.AddDays(i), c, c*1.01, c*0.99, c, 1000)
	}
	return out
}

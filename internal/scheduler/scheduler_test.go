package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"MarketExplorer/internal/model"
	"MarketExplorer/internal/store"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarket struct {
	mu     sync.Mutex
	state  store.State
	warmed []string
	fail   map[string]error
}

func (m *fakeMarket) State() store.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *fakeMarket) Warm(_ context.Context, inst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warmed = append(m.warmed, inst)
	return m.fail[inst]
}

func (m *fakeMarket) setRSI(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Snapshot = &model.Snapshot{
		Instrument: m.state.Instrument,
		Indicators: model.IndicatorSeries{
			Dates: []model.Date{model.DateOf(2024, 3, 1)},
			RSI:   []null.Float{null.FloatFrom(v)},
		},
	}
}

type recorder struct {
	mu   sync.Mutex
	sent []string
}

func (r *recorder) Send(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func TestRunNow_WarmsCurrentThenWatchlist(t *testing.T) {
	m := &fakeMarket{
		state: store.State{Instrument: "BTC-USDT"},
		fail:  map[string]error{"ETH-USDT": errors.New("boom")},
	}
	s := NewScheduler(context.Background(), m, &recorder{}, []string{"eth-usdt", "BTC-USDT", "SOL-USDT"})

	s.RunNow()
	assert.Equal(t, []string{"BTC-USDT", "ETH-USDT", "SOL-USDT"}, m.warmed)
}

func TestRunNow_NotifiesOnSignalFlip(t *testing.T) {
	m := &fakeMarket{state: store.State{Instrument: "BTC-USDT"}}
	rec := &recorder{}
	s := NewScheduler(context.Background(), m, rec, nil)

	m.setRSI(25)
	s.RunNow()
	assert.Empty(t, rec.sent, "first observation only records the signal")

	s.RunNow()
	assert.Empty(t, rec.sent)

	m.setRSI(75)
	s.RunNow()
	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0], "BTC-USDT signal changed: bullish -> bearish")
}

func TestSummaryTask(t *testing.T) {
	m := &fakeMarket{state: store.State{Instrument: "BTC-USDT"}}
	rec := &recorder{}
	s := NewScheduler(context.Background(), m, rec, nil)

	s.summaryTask()
	assert.Empty(t, rec.sent)

	m.state.Snapshot = &model.Snapshot{Monthly: []model.BucketRecord{{Key: "2024-01", ChangePercent: 2, TradingDays: 20}}}
	s.summaryTask()
	require.Len(t, rec.sent, 1)
	assert.Contains(t, rec.sent[0], "2024-01  +2.00%")
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeMarket{}, nil, nil)
	require.NoError(t, s.RegisterAll("0 */5 * * * *", "0 0 9 1 * *"))
	assert.Len(t, s.Cron.Entries(), 2)

	assert.Error(t, s.RegisterAll("not a cron", ""))
}

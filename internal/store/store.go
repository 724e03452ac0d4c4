package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"MarketExplorer/internal/cache"
	"MarketExplorer/internal/calculator"
	"MarketExplorer/internal/collector"
	"MarketExplorer/internal/model"
	"MarketExplorer/internal/pipeline"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrSuperseded is returned by Refresh when a newer request replaced it before it finished.
var ErrSuperseded = errors.New("store: request superseded by a newer one")

// Loader fetches the daily series for an instrument. *collector.Collector satisfies it.
type Loader interface {
	Collect(ctx context.Context, instrument string, rng collector.DateRange, live bool) ([]model.DailyRecord, model.Source, error)
}

// State is a copy of the store's current view.
type State struct {
	Instrument string          `json:"instrument"`
	Live       bool            `json:"live"`
	Loading    bool            `json:"loading"`
	Err        error           `json:"-"`
	Error      string          `json:"error,omitempty"`
	Snapshot   *model.Snapshot `json:"snapshot,omitempty"`
	Version    uint64          `json:"version"`
}

// Options configures a Store.
type Options struct {
	Instrument string
	DaysBack   int
	Live       bool
	CacheTTL   time.Duration
	Pipeline   pipeline.Options
	Now        func() time.Time
}

// Store holds the selected instrument and its latest snapshot.
// Mock results are cached per instrument; live results never are.
type Store struct {
	loader   Loader
	daysBack int
	pipeline pipeline.Options
	now      func() time.Time

	daily   *cache.Cache[[]model.DailyRecord]
	buckets *cache.Cache[[]model.BucketRecord]
	sf      singleflight.Group
	gen     atomic.Uint64 // bumped on every invalidation; part of the singleflight key

	mu        sync.RWMutex
	state     State
	currentID string

	subMu   sync.Mutex
	subs    map[int]chan State
	nextSub int
}

// New creates a store. No data is loaded until Refresh.
func New(loader Loader, opts Options) *Store {
	if opts.Instrument == "" {
		opts.Instrument = collector.DefaultInstrument
	}
	if opts.DaysBack <= 0 {
		opts.DaysBack = 365
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		loader:   loader,
		daysBack: opts.DaysBack,
		pipeline: opts.Pipeline,
		now:      opts.Now,
		daily:    cache.New[[]model.DailyRecord](opts.CacheTTL),
		buckets:  cache.New[[]model.BucketRecord](opts.CacheTTL),
		state: State{
			Instrument: strings.ToUpper(opts.Instrument),
			Live:       opts.Live,
		},
		subs: make(map[int]chan State),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the latest published snapshot, or nil.
func (s *Store) Snapshot() *model.Snapshot {
	return s.State().Snapshot
}

// SetInstrument selects instrument, invalidates its cached results and reloads.
func (s *Store) SetInstrument(ctx context.Context, instrument string) (*model.Snapshot, error) {
	instrument = strings.ToUpper(strings.TrimSpace(instrument))
	if instrument == "" {
		return nil, errors.New("instrument is required")
	}
	s.invalidate(instrument)
	s.mu.Lock()
	s.state.Instrument = instrument
	s.mu.Unlock()
	log.Info().Str("instrument", instrument).Msg("instrument changed")
	return s.Refresh(ctx)
}

// SetLive switches between live provider data and mock data, then reloads.
func (s *Store) SetLive(ctx context.Context, live bool) (*model.Snapshot, error) {
	s.mu.Lock()
	s.state.Live = live
	s.mu.Unlock()
	log.Info().Bool("live", live).Msg("data mode changed")
	return s.Refresh(ctx)
}

// Regenerate clears the cache and reloads, producing a fresh mock series in mock mode.
func (s *Store) Regenerate(ctx context.Context) (*model.Snapshot, error) {
	s.ClearCache()
	return s.Refresh(ctx)
}

// ClearCache drops every cached result.
func (s *Store) ClearCache() {
	s.gen.Add(1)
	s.daily.Clear()
	s.buckets.Clear()
	log.Debug().Msg("cache cleared")
}

// Refresh loads the current instrument and publishes the result.
// If another request started meanwhile, the result is discarded and ErrSuperseded returned.
func (s *Store) Refresh(ctx context.Context) (*model.Snapshot, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.currentID = id
	instrument, live := s.state.Instrument, s.state.Live
	s.state.Loading = true
	s.state.Err, s.state.Error = nil, ""
	s.state.Version++
	s.publish(s.state)
	s.mu.Unlock()

	snap, err := s.Load(ctx, instrument, live)

	s.mu.Lock()
	if s.currentID != id {
		s.mu.Unlock()
		log.Debug().Str("request", id).Str("instrument", instrument).Msg("discarding stale response")
		return nil, ErrSuperseded
	}
	s.state.Loading = false
	s.state.Version++
	if err != nil {
		s.state.Err, s.state.Error = err, err.Error()
	} else {
		cp := *snap
		cp.RequestID = id
		snap = &cp
		s.state.Snapshot = snap
	}
	s.publish(s.state)
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("instrument", instrument).Bool("live", live).Msg("refresh failed")
		return nil, err
	}
	return snap, nil
}

// Load runs the pipeline for instrument without touching the published state.
// Mock results are served from and stored in the cache; concurrent identical loads share one fetch.
func (s *Store) Load(ctx context.Context, instrument string, live bool) (*model.Snapshot, error) {
	instrument = strings.ToUpper(instrument)
	if !live {
		if snap, ok := s.fromCache(instrument); ok {
			log.Debug().Str("instrument", instrument).Msg("cache hit")
			return snap, nil
		}
	}

	gen := s.gen.Load()
	key := fmt.Sprintf("%s|live=%t|gen=%d", instrument, live, gen)
	v, err, shared := s.sf.Do(key, func() (interface{}, error) {
		daily, source, err := s.loader.Collect(ctx, instrument, collector.DaysBack(s.now(), s.daysBack), live)
		if err != nil {
			return nil, err
		}
		snap := pipeline.Run(instrument, source, daily, s.pipeline)
		if !live && s.gen.Load() == gen {
			s.daily.Set(cache.Key(cache.KindHistorical, instrument), snap.Daily)
			s.buckets.Set(cache.Key(cache.KindWeekly, instrument), snap.Weekly)
			s.buckets.Set(cache.Key(cache.KindMonthly, instrument), snap.Monthly)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug().Str("instrument", instrument).Msg("shared in-flight load")
	}
	return v.(*model.Snapshot), nil
}

// Warm reloads instrument in the background path used by the scheduler.
// The current instrument goes through Refresh so subscribers see the new snapshot.
func (s *Store) Warm(ctx context.Context, instrument string) error {
	instrument = strings.ToUpper(instrument)
	st := s.State()
	s.invalidate(instrument)
	if instrument == st.Instrument {
		_, err := s.Refresh(ctx)
		if errors.Is(err, ErrSuperseded) {
			return nil
		}
		return err
	}
	_, err := s.Load(ctx, instrument, st.Live)
	return err
}

func (s *Store) fromCache(instrument string) (*model.Snapshot, bool) {
	daily, ok1 := s.daily.Get(cache.Key(cache.KindHistorical, instrument))
	weekly, ok2 := s.buckets.Get(cache.Key(cache.KindWeekly, instrument))
	monthly, ok3 := s.buckets.Get(cache.Key(cache.KindMonthly, instrument))
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	return &model.Snapshot{
		Instrument:  instrument,
		Source:      model.SourceMock,
		Daily:       daily,
		Weekly:      weekly,
		Monthly:     monthly,
		Indicators:  calculator.ComputeIndicators(daily, s.pipeline.Indicators),
		GeneratedAt: s.now().UTC(),
	}, true
}

func (s *Store) invalidate(instrument string) {
	s.gen.Add(1)
	prefix := cache.InstrumentPrefix(instrument)
	s.daily.DeletePrefix(prefix)
	s.buckets.DeletePrefix(prefix)
}

package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"MarketExplorer/internal/model"
	"MarketExplorer/internal/notifier"
	"MarketExplorer/internal/report"
	"MarketExplorer/internal/store"
	"MarketExplorer/internal/strategy"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Market is the part of the store the scheduler drives.
type Market interface {
	State() store.State
	Warm(ctx context.Context, instrument string) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Market    Market
	Notifier  notifier.Notifier
	Watchlist []string
	Ctx       context.Context

	mu         sync.Mutex
	lastSignal map[string]model.TrendSignal
}

// NewScheduler creates a new Scheduler. An empty watchlist refreshes only the selected instrument.
func NewScheduler(ctx context.Context, m Market, n notifier.Notifier, watchlist []string) *Scheduler {
	if n == nil {
		n = notifier.LogNotifier{}
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Market:     m,
		Notifier:   n,
		Watchlist:  watchlist,
		Ctx:        ctx,
		lastSignal: make(map[string]model.TrendSignal),
	}
}

// RegisterAll registers the refresh and monthly summary tasks.
func (s *Scheduler) RegisterAll(refreshCron, summaryCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if summaryCron != "" {
		if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
			return fmt.Errorf("register summary task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) instruments() []string {
	current := s.Market.State().Instrument
	out := []string{current}
	for _, inst := range s.Watchlist {
		inst = strings.ToUpper(inst)
		if inst != current {
			out = append(out, inst)
		}
	}
	return out
}

func (s *Scheduler) refreshTask() {
	list := s.instruments()
	log.Info().Strs("instruments", list).Msg("running refresh task")
	for _, inst := range list {
		if err := s.Market.Warm(s.Ctx, inst); err != nil {
			log.Error().Err(err).Str("instrument", inst).Msg("refresh failed")
			if s.Ctx.Err() != nil {
				return
			}
		}
	}
	s.checkSignal()
}

// checkSignal reports the selected instrument's latest signal when its overall lean flips.
func (s *Scheduler) checkSignal() {
	st := s.Market.State()
	if st.Snapshot == nil {
		return
	}
	sig := strategy.ClassifyLatest(&st.Snapshot.Indicators)

	s.mu.Lock()
	prev, seen := s.lastSignal[st.Instrument]
	s.lastSignal[st.Instrument] = sig.Overall
	s.mu.Unlock()

	if !seen || prev == sig.Overall {
		return
	}
	msg := fmt.Sprintf("🔔 %s signal changed: %s -> %s (%s)\n\n%s",
		st.Instrument, prev, sig.Overall, sig.Date.Key(), report.FormatSignals(sig))
	s.trySend(msg)
}

func (s *Scheduler) summaryTask() {
	st := s.Market.State()
	if st.Snapshot == nil {
		log.Warn().Str("instrument", st.Instrument).Msg("no snapshot for monthly summary")
		return
	}
	s.trySend(st.Instrument + "\n" + report.FormatMonthlySummary(st.Snapshot.Monthly))
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(s.Ctx, text); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

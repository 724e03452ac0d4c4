package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"MarketExplorer/internal/model"

	"github.com/rs/zerolog/log"
)

// Supporter is implemented by fetchers that only serve a known instrument set.
type Supporter interface {
	Supports(instrument string) bool
}

// Collector routes a request to a live provider or the mock generator and cleans the result.
type Collector struct {
	Live []Fetcher // tried in order; the first that supports the instrument serves it
	Mock Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(mock Fetcher, live ...Fetcher) *Collector {
	return &Collector{Live: live, Mock: mock}
}

// FetcherFor returns the fetcher that would serve instrument.
func (c *Collector) FetcherFor(instrument string, live bool) (Fetcher, error) {
	if !live {
		if c.Mock == nil {
			return nil, errors.New("no mock fetcher configured")
		}
		return c.Mock, nil
	}
	for _, f := range c.Live {
		if s, ok := f.(Supporter); ok && !s.Supports(instrument) {
			continue
		}
		return f, nil
	}
	return nil, &UnsupportedInstrumentError{Provider: "live", Instrument: instrument}
}

// Collect fetches daily records for instrument over rng.
// Malformed records are dropped; the rest come back sorted by date.
func (c *Collector) Collect(ctx context.Context, instrument string, rng DateRange, live bool) ([]model.DailyRecord, model.Source, error) {
	source := model.SourceMock
	if live {
		source = model.SourceLive
	}
	f, err := c.FetcherFor(instrument, live)
	if err != nil {
		return nil, source, err
	}

	records, err := f.FetchDaily(ctx, instrument, rng.From, rng.To)
	if err != nil {
		return nil, source, fmt.Errorf("fetch %s from %s: %w", instrument, f.Name(), err)
	}

	clean := make([]model.DailyRecord, 0, len(records))
	skipped := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			skipped++
			log.Warn().Err(err).Str("instrument", instrument).Msg("dropping malformed record")
			continue
		}
		if r.Instrument == "" {
			r.Instrument = strings.ToUpper(instrument)
		}
		clean = append(clean, r)
	}

	log.Info().Str("instrument", instrument).Str("provider", f.Name()).
		Int("records", len(clean)).Int("skipped", skipped).Msg("collected daily data")
	return model.SortedByDate(clean), source, nil
}

package cmd

import (
	"strings"

	"MarketExplorer/internal/calculator"
	"MarketExplorer/internal/collector"
	"MarketExplorer/internal/config"
	"MarketExplorer/internal/notifier"
	"MarketExplorer/internal/pipeline"
	"MarketExplorer/internal/store"

	"github.com/rs/zerolog/log"
)

// app is the wired object graph shared by every command.
type app struct {
	collector   *collector.Collector
	gecko       *collector.CoinGeckoFetcher // nil when CoinGecko is not a live provider
	store       *store.Store
	instruments []string
}

func newApp(c *config.Config) *app {
	ds := c.DataSource

	gecko := collector.NewCoinGeckoFetcher(ds.BaseURL, ds.APIKey, c.Proxy, c.Timeout(), c.RateLimit())
	for pair, id := range ds.Instruments {
		if err := gecko.Register(pair, id); err != nil {
			log.Warn().Err(err).Str("pair", pair).Msg("skipping configured instrument")
		}
	}
	yahoo := collector.NewYahooFetcher(ds.YahooURL, c.Proxy, c.Timeout())

	var live []collector.Fetcher
	directory := gecko
	switch ds.Provider {
	case "coingecko":
		live = append(live, gecko)
	case "yahoo":
		live = append(live, yahoo)
		directory = nil
	default:
		live = append(live, gecko, yahoo)
	}

	mock := collector.NewMockFetcher(ds.Seed, collector.NewTradingCalendar(ds.Calendar))
	col := collector.NewCollector(mock, live...)

	names := make([]string, 0, len(live))
	for _, f := range live {
		names = append(names, f.Name())
	}
	log.Info().Strs("providers", names).Bool("live", ds.Live).Int64("seed", ds.Seed).Msg("data sources ready")

	st := store.New(col, store.Options{
		Instrument: ds.Instrument,
		DaysBack:   ds.DaysBack,
		Live:       ds.Live,
		CacheTTL:   c.CacheTTL(),
		Pipeline:   pipelineOptions(c),
	})

	instruments := gecko.Instruments()
	if !gecko.Supports(ds.Instrument) {
		instruments = append(instruments, strings.ToUpper(ds.Instrument))
	}
	return &app{collector: col, gecko: directory, store: st, instruments: instruments}
}

func pipelineOptions(c *config.Config) pipeline.Options {
	p := c.Pipeline
	return pipeline.Options{
		VolatilityWindow: p.VolatilityWindow,
		Indicators: calculator.IndicatorConfig{
			SMAPeriods:      p.SMAPeriods,
			RSIPeriod:       p.RSIPeriod,
			MACDFast:        p.MACDFast,
			MACDSlow:        p.MACDSlow,
			MACDSignal:      p.MACDSignal,
			BollingerPeriod: p.BollingerPeriod,
			BollingerK:      p.BollingerK,
		},
	}
}

func newNotifier(c *config.Config) notifier.Notifier {
	if !c.NotifyEnabled() {
		return notifier.LogNotifier{}
	}
	log.Info().Msg("telegram notifications enabled")
	return notifier.NewTelegramNotifier(c.Telegram.BotToken, c.Telegram.ChatID, c.Proxy)
}

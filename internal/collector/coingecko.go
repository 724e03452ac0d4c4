package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"MarketExplorer/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultCoinGeckoURL is the public v3 API.
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	// DefaultRateLimit is the minimum spacing between two CoinGecko calls.
	DefaultRateLimit = 1200 * time.Millisecond
)

// CoinGeckoFetcher implements Fetcher using the CoinGecko market_chart/range endpoint.
type CoinGeckoFetcher struct {
	BaseURL     string
	APIKey      string
	Client      *http.Client
	IDs         map[string]string
	MinInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time

	idsMu sync.RWMutex
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string, timeout, minInterval time.Duration) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoURL
	}
	ids := make(map[string]string, len(DefaultCoinGeckoIDs))
	for k, v := range DefaultCoinGeckoIDs {
		ids[k] = v
	}
	return &CoinGeckoFetcher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Client:      newHTTPClient(proxyURL, timeout),
		IDs:         ids,
		MinInterval: minInterval,
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// Supports reports whether instrument maps to a coin id.
func (f *CoinGeckoFetcher) Supports(instrument string) bool {
	_, ok := f.coinID(instrument)
	return ok
}

func (f *CoinGeckoFetcher) coinID(instrument string) (string, bool) {
	f.idsMu.RLock()
	defer f.idsMu.RUnlock()
	id, ok := f.IDs[strings.ToUpper(instrument)]
	return id, ok
}

// Register maps instrument to coinID for later fetches.
func (f *CoinGeckoFetcher) Register(instrument, coinID string) error {
	if _, _, err := SplitPair(instrument); err != nil {
		return err
	}
	f.idsMu.Lock()
	defer f.idsMu.Unlock()
	f.IDs[strings.ToUpper(instrument)] = coinID
	return nil
}

// Instruments lists the registered pairs in lexical order.
func (f *CoinGeckoFetcher) Instruments() []string {
	f.idsMu.RLock()
	defer f.idsMu.RUnlock()
	return SortedInstruments(f.IDs)
}

// Coin is one entry of the provider's coin directory.
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ListCoins returns every coin the provider knows, symbols upper-cased.
func (f *CoinGeckoFetcher) ListCoins(ctx context.Context) ([]Coin, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	var coins []Coin
	if err := getJSON(ctx, f.Client, f.Name(), "coins/list", f.BaseURL+"/coins/list", f.header(), &coins); err != nil {
		return nil, err
	}
	for i := range coins {
		coins[i].Symbol = strings.ToUpper(coins[i].Symbol)
	}
	log.Debug().Str("provider", f.Name()).Int("coins", len(coins)).Msg("fetched coin list")
	return coins, nil
}

// ValidateCoinID reports whether the provider knows coinID. A 404 is a clean false;
// other failures come back as errors.
func (f *CoinGeckoFetcher) ValidateCoinID(ctx context.Context, coinID string) (bool, error) {
	if strings.TrimSpace(coinID) == "" {
		return false, nil
	}
	if err := f.wait(ctx); err != nil {
		return false, err
	}
	q := url.Values{}
	for _, k := range []string{"localization", "tickers", "market_data", "community_data", "developer_data"} {
		q.Set(k, "false")
	}
	endpoint := fmt.Sprintf("%s/coins/%s?%s", f.BaseURL, url.PathEscape(coinID), q.Encode())

	var coin Coin
	err := getJSON(ctx, f.Client, f.Name(), coinID, endpoint, f.header(), &coin)
	var fe *DataFetchError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &fe) && fe.Kind == KindNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (f *CoinGeckoFetcher) header() http.Header {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if f.APIKey != "" {
		header.Set("x-cg-demo-api-key", f.APIKey)
	}
	return header
}

// marketChart is the response of /coins/{id}/market_chart/range.
type marketChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (f *CoinGeckoFetcher) FetchDaily(ctx context.Context, instrument string, from, to time.Time) ([]model.DailyRecord, error) {
	instrument = strings.ToUpper(instrument)
	coinID, ok := f.coinID(instrument)
	if !ok {
		return nil, &UnsupportedInstrumentError{Provider: f.Name(), Instrument: instrument}
	}
	quote, err := QuoteCurrency(instrument)
	if err != nil {
		return nil, &UnsupportedInstrumentError{Provider: f.Name(), Instrument: instrument}
	}

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("vs_currency", quote)
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", f.BaseURL, url.PathEscape(coinID), q.Encode())

	var chart marketChart
	if err := getJSON(ctx, f.Client, f.Name(), instrument, endpoint, f.header(), &chart); err != nil {
		return nil, err
	}
	if len(chart.Prices) == 0 {
		return nil, &DataFetchError{
			Provider:   f.Name(),
			Instrument: instrument,
			Kind:       KindDecode,
			StatusCode: http.StatusOK,
			Err:        errors.New("no price data returned"),
		}
	}

	records := groupByDay(instrument, chart.Prices, chart.TotalVolumes)
	log.Debug().Str("provider", f.Name()).Str("instrument", instrument).
		Int("points", len(chart.Prices)).Int("days", len(records)).Msg("fetched market chart")
	return records, nil
}

// wait blocks until MinInterval has passed since the previous call.
func (f *CoinGeckoFetcher) wait(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MinInterval > 0 && !f.lastCall.IsZero() {
		if d := f.MinInterval - time.Since(f.lastCall); d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	f.lastCall = time.Now()
	return nil
}

// groupByDay folds timestamped points into one record per UTC day:
// open = first price, close = last, high/low = extrema, volume = sum of that day's volume points.
func groupByDay(instrument string, prices, volumes [][2]float64) []model.DailyRecord {
	points := make([][2]float64, len(prices))
	copy(points, prices)
	sort.SliceStable(points, func(i, j int) bool { return points[i][0] < points[j][0] })

	byDay := make(map[string]*model.DailyRecord)
	for _, p := range points {
		date := model.NewDate(time.UnixMilli(int64(p[0])).UTC())
		price := p[1]
		d, ok := byDay[date.Key()]
		if !ok {
			byDay[date.Key()] = &model.DailyRecord{
				Instrument: instrument,
				Date:       date,
				Open:       price,
				High:       price,
				Low:        price,
				Close:      price,
			}
			continue
		}
		if price > d.High {
			d.High = price
		}
		if price < d.Low {
			d.Low = price
		}
		d.Close = price
	}
	for _, v := range volumes {
		date := model.NewDate(time.UnixMilli(int64(v[0])).UTC())
		if d, ok := byDay[date.Key()]; ok {
			d.Volume += v[1]
		}
	}

	out := make([]model.DailyRecord, 0, len(byDay))
	for _, d := range byDay {
		d.ChangePercent = model.ChangePercent(d.Open, d.Close)
		out = append(out, *d)
	}
	return model.SortedByDate(out)
}

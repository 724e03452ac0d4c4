package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MarketExplorer/internal/model"
)

// DefaultYahooURL is the public chart API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[strings.ToUpper(symbol)]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(vals []*float64, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	return *vals[i], true
}

func (f *YahooFetcher) FetchDaily(ctx context.Context, instrument string, from, to time.Time) ([]model.DailyRecord, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(instrument)), q.Encode())

	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")

	var chart yahooChart
	if err := getJSON(ctx, f.Client, f.Name(), instrument, endpoint, header, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		kind := KindAPI
		if chart.Chart.Error.Code == "Not Found" {
			kind = KindNotFound
		}
		return nil, &DataFetchError{
			Provider: f.Name(), Instrument: instrument, Kind: kind, StatusCode: http.StatusOK,
			Err: errors.New(chart.Chart.Error.Description),
		}
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &DataFetchError{
			Provider: f.Name(), Instrument: instrument, Kind: KindDecode, StatusCode: http.StatusOK,
			Err: errors.New("no data returned"),
		}
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	records := make([]model.DailyRecord, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, ok1 := valueAt(quote.Open, i)
		h, ok2 := valueAt(quote.High, i)
		l, ok3 := valueAt(quote.Low, i)
		c, ok4 := valueAt(quote.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // skip null bars (holidays etc.)
		}
		v, _ := valueAt(quote.Volume, i)
		records = append(records, model.NewDailyRecord(instrument, model.NewDate(time.Unix(ts, 0).UTC()), o, h, l, c, v))
	}
	return model.SortedByDate(records), nil
}

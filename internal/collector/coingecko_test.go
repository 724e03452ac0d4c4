package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketExplorer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(y int, m time.Month, d, h int) int64 {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC).UnixMilli()
}

func TestCoinGecko_GroupsPointsByUTCDay(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"prices": [[` + itoa(ms(2024, 1, 1, 0)) + `, 100], [` + itoa(ms(2024, 1, 1, 12)) + `, 110],
			           [` + itoa(ms(2024, 1, 1, 23)) + `, 105], [` + itoa(ms(2024, 1, 2, 1)) + `, 104]],
			"total_volumes": [[` + itoa(ms(2024, 1, 1, 0)) + `, 10], [` + itoa(ms(2024, 1, 1, 12)) + `, 15],
			                  [` + itoa(ms(2024, 1, 2, 1)) + `, 7]]
		}`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", 5*time.Second, 0)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	records, err := f.FetchDaily(context.Background(), "btc-usdt", from, to)
	require.NoError(t, err)

	assert.Equal(t, "/coins/bitcoin/market_chart/range", gotPath)
	assert.Contains(t, gotQuery, "vs_currency=usd")
	assert.Contains(t, gotQuery, "from=1704067200")

	require.Len(t, records, 2)
	d1 := records[0]
	assert.Equal(t, model.DateOf(2024, time.January, 1), d1.Date)
	assert.Equal(t, 100.0, d1.Open)
	assert.Equal(t, 110.0, d1.High)
	assert.Equal(t, 100.0, d1.Low)
	assert.Equal(t, 105.0, d1.Close)
	assert.Equal(t, 25.0, d1.Volume)
	assert.InDelta(t, 5.0, d1.ChangePercent, 1e-9)
	assert.Equal(t, "BTC-USDT", d1.Instrument)
	assert.False(t, d1.Volatility.Valid)

	assert.Equal(t, 104.0, records[1].Open)
	assert.Equal(t, 7.0, records[1].Volume)
}

func TestCoinGecko_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status    int
		kind      FetchErrorKind
		retryable bool
	}{
		{http.StatusTooManyRequests, KindRateLimited, true},
		{http.StatusNotFound, KindNotFound, false},
		{http.StatusInternalServerError, KindAPI, false},
		{http.StatusForbidden, KindAPI, false},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		f := NewCoinGeckoFetcher(srv.URL, "", "", time.Second, 0)
		_, err := f.FetchDaily(context.Background(), "ETH-USDT", time.Now().AddDate(0, 0, -3), time.Now())
		srv.Close()

		var dfe *DataFetchError
		require.ErrorAs(t, err, &dfe, "status %d", tt.status)
		assert.Equal(t, tt.kind, dfe.Kind)
		assert.Equal(t, tt.status, dfe.StatusCode)
		assert.Equal(t, tt.retryable, IsRetryable(err))
	}
}

func TestCoinGecko_AnySuccessStatusDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNonAuthoritativeInfo)
		_, _ = w.Write([]byte(`{"prices":[[` + itoa(ms(2024, 1, 1, 0)) + `,1]],"total_volumes":[]}`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", time.Second, 0)
	records, err := f.FetchDaily(context.Background(), "BTC-USDT", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCoinGecko_Connectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := NewCoinGeckoFetcher(url, "", "", time.Second, 0)
	_, err := f.FetchDaily(context.Background(), "BTC-USDT", time.Now().AddDate(0, 0, -3), time.Now())
	var dfe *DataFetchError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, KindConnectivity, dfe.Kind)
	assert.Equal(t, 0, dfe.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestCoinGecko_EmptyAndBadBody(t *testing.T) {
	for _, body := range []string{`{"prices":[],"total_volumes":[]}`, `not json`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		f := NewCoinGeckoFetcher(srv.URL, "", "", time.Second, 0)
		_, err := f.FetchDaily(context.Background(), "BTC-USDT", time.Now().AddDate(0, 0, -3), time.Now())
		srv.Close()

		var dfe *DataFetchError
		require.ErrorAs(t, err, &dfe, body)
		assert.Equal(t, KindDecode, dfe.Kind)
	}
}

func TestCoinGecko_UnsupportedInstrument(t *testing.T) {
	f := NewCoinGeckoFetcher("http://127.0.0.1:0", "", "", time.Second, 0)
	_, err := f.FetchDaily(context.Background(), "FOO-USDT", time.Now(), time.Now())
	var uie *UnsupportedInstrumentError
	require.ErrorAs(t, err, &uie)
	assert.Equal(t, "FOO-USDT", uie.Instrument)
	assert.False(t, f.Supports("FOO-USDT"))
	assert.True(t, f.Supports("sol-usdt"))
}

func TestCoinGecko_RateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"prices":[[` + itoa(ms(2024, 1, 1, 0)) + `,1]],"total_volumes":[]}`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", time.Second, time.Hour)
	_, err := f.FetchDaily(context.Background(), "BTC-USDT", time.Now(), time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = f.FetchDaily(ctx, "BTC-USDT", time.Now(), time.Now())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestQuoteCurrency(t *testing.T) {
	q, err := QuoteCurrency("BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, "usd", q)

	q, err = QuoteCurrency("eth-eur")
	require.NoError(t, err)
	assert.Equal(t, "eur", q)

	_, err = QuoteCurrency("BTCUSDT")
	assert.Error(t, err)
}

func TestCoinGecko_ListCoins(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-cg-demo-api-key")
		assert.Equal(t, "/coins/list", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},{"id":"pepe","symbol":"pepe","name":"Pepe"}]`))
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "demo-key", "", time.Second, 0)
	coins, err := f.ListCoins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Coin{{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"}, {ID: "pepe", Symbol: "PEPE", Name: "Pepe"}}, coins)
	assert.Equal(t, "demo-key", gotKey)
}

func TestCoinGecko_ListCoinsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", time.Second, 0)
	_, err := f.ListCoins(context.Background())
	var dfe *DataFetchError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, KindRateLimited, dfe.Kind)
	assert.True(t, IsRetryable(err))
}

func TestCoinGecko_ValidateCoinIDAndRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/pepe":
			assert.Equal(t, "false", r.URL.Query().Get("market_data"))
			_, _ = w.Write([]byte(`{"id":"pepe","symbol":"pepe","name":"Pepe"}`))
		case "/coins/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	f := NewCoinGeckoFetcher(srv.URL, "", "", time.Second, 0)
	ctx := context.Background()

	ok, err := f.ValidateCoinID(ctx, "pepe")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.ValidateCoinID(ctx, "invalid-coin")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.ValidateCoinID(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.ValidateCoinID(ctx, "broken")
	var dfe *DataFetchError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, KindAPI, dfe.Kind)

	assert.False(t, f.Supports("PEPE-USDT"))
	require.NoError(t, f.Register("pepe-usdt", "pepe"))
	assert.True(t, f.Supports("PEPE-USDT"))
	assert.Contains(t, f.Instruments(), "PEPE-USDT")
	assert.Error(t, f.Register("pepe", "pepe"))
}

func TestCoinGecko_CanceledRequestIsNotWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	f := NewCoinGeckoFetcher(srv.URL, "", "", 5*time.Second, 0)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	_, err := f.ListCoins(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var dfe *DataFetchError
	assert.False(t, errors.As(err, &dfe))
}

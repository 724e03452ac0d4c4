package collector

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCoinGeckoIDs maps trading pairs to CoinGecko coin ids.
var DefaultCoinGeckoIDs = map[string]string{
	"BTC-USDT":   "bitcoin",
	"ETH-USDT":   "ethereum",
	"BNB-USDT":   "binancecoin",
	"SOL-USDT":   "solana",
	"ADA-USDT":   "cardano",
	"XRP-USDT":   "ripple",
	"DOT-USDT":   "polkadot",
	"AVAX-USDT":  "avalanche-2",
	"DOGE-USDT":  "dogecoin",
	"MATIC-USDT": "matic-network",
}

// DefaultInstrument is selected when nothing is configured.
const DefaultInstrument = "BTC-USDT"

// SplitPair splits "BASE-QUOTE" into its upper-case parts.
func SplitPair(instrument string) (base, quote string, err error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(instrument)), "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid instrument format %q, expected BASE-QUOTE", instrument)
	}
	return parts[0], parts[1], nil
}

// QuoteCurrency returns the provider quote currency for a pair. USDT is priced as USD.
func QuoteCurrency(instrument string) (string, error) {
	_, quote, err := SplitPair(instrument)
	if err != nil {
		return "", err
	}
	q := strings.ToLower(quote)
	if q == "usdt" {
		return "usd", nil
	}
	return q, nil
}

// SortedInstruments returns the keys of ids in lexical order.
func SortedInstruments(ids map[string]string) []string {
	out := make([]string, 0, len(ids))
	for k := range ids {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

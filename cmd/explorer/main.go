// Command explorer serves volatility, seasonality and indicator data for crypto pairs and indices.
//
// Usage:
//
//	explorer serve
//	explorer export --instrument ETH-USDT --kind month --out eth_monthly.csv
//	explorer signals --instrument BTC-USDT
package main

import (
	"os"

	"MarketExplorer/cmd/explorer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

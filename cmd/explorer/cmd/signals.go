package cmd

import (
	"fmt"

	"MarketExplorer/internal/report"

	"github.com/spf13/cobra"
)

var (
	signalsInstrument string
	signalsIndex      int
	signalsMonthly    bool
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Print the metrics panel and signals for one day",
	Long: `Runs the pipeline once and prints OHLC, volatility, indicators and the RSI/MACD signals.

Examples:
  explorer signals --instrument BTC-USDT
  explorer signals --instrument SOL-USDT --index 120
  explorer signals --monthly`,
	RunE: runSignals,
}

func init() {
	signalsCmd.Flags().StringVar(&signalsInstrument, "instrument", "", "instrument (default from config)")
	signalsCmd.Flags().IntVar(&signalsIndex, "index", -1, "day index into the daily series (default latest)")
	signalsCmd.Flags().BoolVar(&signalsMonthly, "monthly", false, "also print the monthly summary")
}

func runSignals(cmd *cobra.Command, args []string) error {
	instrument := signalsInstrument
	if instrument == "" {
		instrument = cfg.DataSource.Instrument
	}

	a := newApp(cfg)
	snap, err := a.store.Load(cmd.Context(), instrument, cfg.DataSource.Live)
	if err != nil {
		return fmt.Errorf("load %s: %w", instrument, err)
	}

	index := signalsIndex
	if index < 0 {
		index = len(snap.Daily) - 1
	}
	text, err := report.FormatMetrics(snap, index)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, text)
	if signalsMonthly {
		fmt.Fprintln(out, report.FormatMonthlySummary(snap.Monthly))
	}
	return nil
}

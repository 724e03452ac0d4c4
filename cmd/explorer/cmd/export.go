package cmd

import (
	"fmt"
	"io"
	"os"

	"MarketExplorer/internal/export"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exportInstrument string
	exportKind       string
	exportOut        string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write daily, price or bucket CSV for an instrument",
	Long: `Runs the pipeline once and writes a CSV.

Examples:
  explorer export --instrument BTC-USDT --kind daily
  explorer export --instrument ETH-USDT --kind month --out eth_monthly.csv --live`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportInstrument, "instrument", "", "instrument, e.g. BTC-USDT (default from config)")
	exportCmd.Flags().StringVar(&exportKind, "kind", "daily", "daily, prices, week or month")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	kind, err := export.ParseKind(exportKind)
	if err != nil {
		return err
	}
	instrument := exportInstrument
	if instrument == "" {
		instrument = cfg.DataSource.Instrument
	}

	a := newApp(cfg)
	snap, err := a.store.Load(cmd.Context(), instrument, cfg.DataSource.Live)
	if err != nil {
		return fmt.Errorf("load %s: %w", instrument, err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, kind, snap); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if exportOut != "" {
		log.Info().Str("instrument", snap.Instrument).Str("kind", string(kind)).Str("file", exportOut).Msg("export written")
	}
	return nil
}

// Package cmd holds the explorer CLI commands.
package cmd

import (
	"fmt"

	"MarketExplorer/internal/config"
	"MarketExplorer/internal/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X MarketExplorer/cmd/explorer/cmd.version=...".
var version = "dev"

var (
	cfgFile string
	live    bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Market seasonality and volatility explorer",
	Long: `Market seasonality and volatility explorer.

Fetches daily OHLCV data (CoinGecko, Yahoo Finance or a seeded mock), computes rolling
volatility, weekly/monthly aggregates and technical indicators, and serves them over HTTP.

Commands:
    serve       HTTP + WebSocket API with scheduled refresh
    export      write a CSV for one instrument
    signals     print the metrics panel and signals for one day
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "config file")
	rootCmd.PersistentFlags().BoolVar(&live, "live", false, "use live provider data instead of the mock series")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(signalsCmd)
}

// initConfig loads configuration, applies flag overrides and initializes logging.
func initConfig(cmd *cobra.Command) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("live") {
		c.DataSource.Live = live
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if err := logger.Init(logger.Config{
		Level:          c.Log.Level,
		Format:         c.Log.Format,
		FileEnabled:    c.Log.FileEnabled,
		FilePath:       c.Log.FilePath,
		RotationSize:   c.Log.RotationSize,
		RetentionDays:  c.Log.RetentionDays,
		ServiceName:    "explorer",
		ServiceVersion: version,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg = c
	log.Debug().Str("config", cfgFile).Str("provider", c.DataSource.Provider).Bool("live", c.DataSource.Live).Msg("configuration loaded")
	return nil
}

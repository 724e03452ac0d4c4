package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"MarketExplorer/internal/scheduler"
	"MarketExplorer/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	Long:  `Serves snapshots over HTTP, pushes state changes over /ws and refreshes the watchlist on a cron schedule. Ctrl+C stops it.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info().Str("version", version).Msg("explorer starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg)
	defer a.store.Close()

	opts := server.Options{
		Instruments: a.instruments,
		Version:     version,
		Debug:       zerolog.GlobalLevel() <= zerolog.DebugLevel,
	}
	if a.gecko != nil {
		opts.Coins = a.gecko
	}
	srv := server.New(ctx, a.store, opts)

	sched := scheduler.NewScheduler(ctx, a.store, newNotifier(cfg), cfg.Schedule.Watchlist)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.SummaryCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunNow()
	} else {
		go func() {
			if _, err := a.store.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("initial load failed")
			}
		}()
	}

	log.Info().Str("addr", cfg.Addr()).Msg("explorer is running. Press Ctrl+C to stop.")
	if err := srv.Run(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	log.Info().Msg("explorer stopped")
	return nil
}

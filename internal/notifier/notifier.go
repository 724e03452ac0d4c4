// Package notifier delivers text reports produced by the scheduler.
package notifier

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notifier sends a rendered report somewhere a person will read it.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// LogNotifier writes reports to the application log. Used when no chat is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, text string) error {
	log.Info().Str("report", text).Msg("report")
	return nil
}

package notifier

import (
	"context"

	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/logger"
)

// LogNotifier writes change results to the application log. It stands in for
// Slack when no webhook is configured, typically during development.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a new log-based notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.ForNotifier()}
}

// Notify logs one target's material changes
func (n *LogNotifier) Notify(ctx context.Context, target string, result promo.ChangeResult) error {
	n.log.Info().
		Str("target", target).
		Int("added", len(result.Added)).
		Int("removed", len(result.Removed)).
		Int("changed", len(result.Changed)).
		Msg(result.Summary)
	return nil
}

package notifier

import (
	"context"

	"sjsage522/promowatch/internal/promo"
)

// Notifier delivers filtered change results to a destination
type Notifier interface {
	// Notify sends one target's material changes
	Notify(ctx context.Context, target string, result promo.ChangeResult) error
}

package store

import (
	"context"
	"errors"
	"time"

	"sjsage522/promowatch/internal/promo"
)

// ErrSnapshotNotFound is returned when a target has no stored snapshot yet.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the stored promotion state for one target.
type Snapshot struct {
	Target     string            `json:"target"`
	FetchedAt  time.Time         `json:"fetched_at"`
	Promotions []promo.Promotion `json:"promotions"`
}

// HistoryEntry records one material change event for a target.
type HistoryEntry struct {
	At      time.Time          `json:"at"`
	Summary string             `json:"summary"`
	Result  promo.ChangeResult `json:"result"`
}

// StateStore persists the current snapshot and a pruned change history per
// target.
type StateStore interface {
	// CurrentSnapshot returns the last stored snapshot for a target, or
	// ErrSnapshotNotFound when the target was never scraped.
	CurrentSnapshot(ctx context.Context, target string) (*Snapshot, error)

	// SaveSnapshot replaces the stored snapshot for the snapshot's target.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// AppendHistory prepends a change event to the target's history,
	// pruning the oldest entries beyond the configured maximum.
	AppendHistory(ctx context.Context, target string, entry *HistoryEntry) error

	// History returns up to limit entries, newest first.
	History(ctx context.Context, target string, limit int64) ([]HistoryEntry, error)

	// Close releases the store's connections.
	Close() error
}

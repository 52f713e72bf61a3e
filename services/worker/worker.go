package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/internal/scraper"
	"sjsage522/promowatch/logger"
	"sjsage522/promowatch/services/notifier"
	"sjsage522/promowatch/services/store"
)

// Worker runs the check cycle: scrape each target, diff against the stored
// snapshot, filter noise and deliver material changes.
type Worker struct {
	ctx           context.Context
	scrapers      []scraper.Scraper
	store         store.StateStore
	notifier      notifier.Notifier
	detector      *promo.Detector
	filter        *promo.Filter
	checkInterval time.Duration
	trigger       chan struct{}
	log           *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	scrapers []scraper.Scraper,
	stateStore store.StateStore,
	notif notifier.Notifier,
	detector *promo.Detector,
	filter *promo.Filter,
	checkInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:           ctx,
		scrapers:      scrapers,
		store:         stateStore,
		notifier:      notif,
		detector:      detector,
		filter:        filter,
		checkInterval: checkInterval,
		trigger:       make(chan struct{}, 1),
		log:           logger.ForWorker(),
	}
}

// Start runs check cycles until the context is cancelled. The first cycle
// runs immediately.
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	w.runChecks()

	for {
		select {
		case <-w.ctx.Done():
			return nil
		case <-ticker.C:
			w.runChecks()
		case <-w.trigger:
			w.runChecks()
		}
	}
}

// TriggerRun requests an immediate check cycle. A cycle already pending
// absorbs further triggers.
func (w *Worker) TriggerRun() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// runChecks checks all targets in parallel with per-target error isolation
func (w *Worker) runChecks() {
	start := time.Now()

	var wg sync.WaitGroup
	for _, s := range w.scrapers {
		wg.Add(1)
		go func(s scraper.Scraper) {
			defer wg.Done()
			if err := w.checkTarget(s); err != nil {
				w.log.Error().
					Err(err).
					Str("target", s.GetName()).
					Msg("Target check failed")
			}
		}(s)
	}
	wg.Wait()

	w.log.Debug().
		Dur("elapsed", time.Since(start)).
		Int("targets", len(w.scrapers)).
		Msg("Check cycle complete")
}

// checkTarget runs the pipeline for one target: scrape, diff against the
// previous snapshot, filter and notify, then persist the new snapshot.
func (w *Worker) checkTarget(s scraper.Scraper) error {
	name := s.GetName()

	current, err := s.FetchPromotions()
	if err != nil {
		return err
	}

	previous, err := w.store.CurrentSnapshot(w.ctx, name)
	if err != nil && !errors.Is(err, store.ErrSnapshotNotFound) {
		return err
	}

	snapshot := &store.Snapshot{
		Target:     name,
		FetchedAt:  time.Now().UTC(),
		Promotions: current,
	}

	if previous == nil {
		// First scrape of this target: record state, nothing to compare.
		w.log.Info().
			Str("target", name).
			Int("promotions", len(current)).
			Msg("Recorded initial snapshot")
		return w.store.SaveSnapshot(w.ctx, snapshot)
	}

	result := w.filter.FilterMaterialChanges(w.detector.DetectChanges(current, previous.Promotions))
	if result.HasChanges {
		w.log.Info().
			Str("target", name).
			Str("summary", result.Summary).
			Msg("Material changes detected")

		// Notify before persisting, so a delivery failure leaves the old
		// snapshot in place and the next cycle retries.
		if err := w.notifier.Notify(w.ctx, name, result); err != nil {
			return err
		}
		entry := &store.HistoryEntry{
			At:      snapshot.FetchedAt,
			Summary: result.Summary,
			Result:  result,
		}
		if err := w.store.AppendHistory(w.ctx, name, entry); err != nil {
			return err
		}
	}

	return w.store.SaveSnapshot(w.ctx, snapshot)
}

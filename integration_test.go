package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/internal/scraper"
	"sjsage522/promowatch/services/notifier"
	"sjsage522/promowatch/services/store"
	"sjsage522/promowatch/services/worker"
)

const pageV1 = `
<!DOCTYPE html>
<html>
<body>
    <div class="offers">
        <div class="offer">
            <h3 class="name">Free night after 5 stays</h3>
            <p class="benefit">1 free night</p>
            <span class="validity">03/15/2025 - 04/30/2025</span>
            <span class="rate">$1,000</span>
        </div>
        <div class="offer">
            <h3 class="name">Double points weekend</h3>
            <p class="benefit">2x points on all bookings</p>
        </div>
    </div>
</body>
</html>
`

// Material: the first offer's price moves 20% and a third offer appears.
const pageV2 = `
<!DOCTYPE html>
<html>
<body>
    <div class="offers">
        <div class="offer">
            <h3 class="name">Free night after 5 stays</h3>
            <p class="benefit">1 free night</p>
            <span class="validity">03/15/2025 - 04/30/2025</span>
            <span class="rate">$1,200</span>
        </div>
        <div class="offer">
            <h3 class="name">Double points weekend</h3>
            <p class="benefit">2x points on all bookings</p>
        </div>
        <div class="offer">
            <h3 class="name">Spa credit included</h3>
            <p class="benefit">$50 spa credit per stay</p>
        </div>
    </div>
</body>
</html>
`

// Noise only: extra whitespace and an "(updated ...)" suffix on the perk.
const pageV3 = `
<!DOCTYPE html>
<html>
<body>
    <div class="offers">
        <div class="offer">
            <h3 class="name">Free night   after 5 stays</h3>
            <p class="benefit">1 free night (updated 01/08/2025)</p>
            <span class="validity">03/15/2025 - 04/30/2025</span>
            <span class="rate">$1,200</span>
        </div>
        <div class="offer">
            <h3 class="name">Double points weekend</h3>
            <p class="benefit">2x points on all bookings</p>
        </div>
        <div class="offer">
            <h3 class="name">Spa credit included</h3>
            <p class="benefit">$50 spa credit per stay</p>
        </div>
    </div>
</body>
</html>
`

// memoryStore implements store.StateStore in memory
type memoryStore struct {
	mu        sync.Mutex
	snapshots map[string]*store.Snapshot
	history   map[string][]store.HistoryEntry
}

var _ store.StateStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		snapshots: make(map[string]*store.Snapshot),
		history:   make(map[string][]store.HistoryEntry),
	}
}

func (m *memoryStore) CurrentSnapshot(ctx context.Context, target string) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[target]
	if !ok {
		return nil, store.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (m *memoryStore) SaveSnapshot(ctx context.Context, snapshot *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.Target] = snapshot
	return nil
}

func (m *memoryStore) AppendHistory(ctx context.Context, target string, entry *store.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[target] = append([]store.HistoryEntry{*entry}, m.history[target]...)
	return nil
}

func (m *memoryStore) History(ctx context.Context, target string, limit int64) ([]store.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[target], nil
}

func (m *memoryStore) Close() error {
	return nil
}

func (m *memoryStore) snapshotLen(target string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[target]
	if !ok {
		return -1
	}
	return len(snapshot.Promotions)
}

// TestEndToEndPipeline runs the full loop against fake page and webhook
// servers: scrape, diff, filter, notify, persist.
func TestEndToEndPipeline(t *testing.T) {
	var page atomic.Value
	page.Store(pageV1)

	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page.Load().(string))
	}))
	defer pageServer.Close()

	var postCount atomic.Int64
	var lastPost atomic.Value
	webhookServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		lastPost.Store(payload)
		postCount.Add(1)
		w.Write([]byte("ok"))
	}))
	defer webhookServer.Close()

	norm := promo.NewNormalizer(promo.DefaultConfig())
	target := scraper.Target{
		Name: "StayRewards",
		URL:  pageServer.URL,
		Selectors: scraper.Selectors{
			PromoList: "div.offers div.offer",
			Title:     "h3.name",
			Perk:      "p.benefit",
			Dates:     "span.validity",
			Price:     "span.rate",
		},
	}

	st := newMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := worker.NewWorker(
		ctx,
		[]scraper.Scraper{scraper.NewPageScraper(target, nil, norm)},
		st,
		notifier.NewSlackNotifier(webhookServer.URL),
		promo.NewDetector(norm),
		promo.NewFilter(norm, promo.DefaultThresholds()),
		time.Hour,
	)

	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	// First cycle stores the initial snapshot and posts nothing.
	assert.Eventually(t, func() bool {
		return st.snapshotLen("StayRewards") == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), postCount.Load())

	// A 20% price move plus a brand new offer must reach the webhook.
	page.Store(pageV2)
	w.TriggerRun()

	assert.Eventually(t, func() bool {
		return postCount.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	payload := lastPost.Load().(map[string]interface{})
	text, _ := payload["text"].(string)
	assert.Contains(t, text, "StayRewards")
	assert.Contains(t, text, "1 new promotion and 1 promotion updated")

	history, err := st.History(context.Background(), "StayRewards", 10)
	assert.NoError(t, err)
	assert.Len(t, history, 1)

	// Whitespace and timestamp noise must stay silent.
	page.Store(pageV3)
	w.TriggerRun()

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int64(1), postCount.Load())

	history, err = st.History(context.Background(), "StayRewards", 10)
	assert.NoError(t, err)
	assert.Len(t, history, 1)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/promowatch/internal/promo"
	"sjsage522/promowatch/services/store"
)

// MockStore implements store.StateStore in memory for testing
type MockStore struct {
	snapshots map[string]*store.Snapshot
	history   map[string][]store.HistoryEntry
}

var _ store.StateStore = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		snapshots: make(map[string]*store.Snapshot),
		history:   make(map[string][]store.HistoryEntry),
	}
}

func (m *MockStore) CurrentSnapshot(ctx context.Context, target string) (*store.Snapshot, error) {
	snapshot, ok := m.snapshots[target]
	if !ok {
		return nil, store.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (m *MockStore) SaveSnapshot(ctx context.Context, snapshot *store.Snapshot) error {
	m.snapshots[snapshot.Target] = snapshot
	return nil
}

func (m *MockStore) AppendHistory(ctx context.Context, target string, entry *store.HistoryEntry) error {
	m.history[target] = append([]store.HistoryEntry{*entry}, m.history[target]...)
	return nil
}

func (m *MockStore) History(ctx context.Context, target string, limit int64) ([]store.HistoryEntry, error) {
	return m.history[target], nil
}

func (m *MockStore) Close() error {
	return nil
}

// MockRunner counts manual triggers
type MockRunner struct {
	triggered int
}

func (m *MockRunner) TriggerRun() {
	m.triggered++
}

func newTestServer() (*Server, *MockStore, *MockRunner) {
	st := NewMockStore()
	runner := &MockRunner{}
	server := NewServer(st, []string{"BankPerks", "StayRewards"}, "secret-token", runner)
	return server, st, runner
}

func doRequest(handler http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpointIsOpen(t *testing.T) {
	server, _, _ := newTestServer()
	rec := doRequest(server.Router(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthentication(t *testing.T) {
	server, _, _ := newTestServer()
	router := server.Router()

	rec := doRequest(router, http.MethodGet, "/api/targets", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/targets", "wrong-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/targets", "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticationDisabledWithoutToken(t *testing.T) {
	server := NewServer(NewMockStore(), nil, "", &MockRunner{})
	rec := doRequest(server.Router(), http.MethodGet, "/api/targets", "anything")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListTargets(t *testing.T) {
	server, _, _ := newTestServer()
	rec := doRequest(server.Router(), http.MethodGet, "/api/targets", "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string][]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"BankPerks", "StayRewards"}, body["targets"])
}

func TestTargetState(t *testing.T) {
	server, st, _ := newTestServer()
	router := server.Router()

	// Unknown target
	rec := doRequest(router, http.MethodGet, "/api/targets/Nope/state", "secret-token")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Known target, never scraped
	rec = doRequest(router, http.MethodGet, "/api/targets/BankPerks/state", "secret-token")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	st.SaveSnapshot(context.Background(), &store.Snapshot{
		Target:    "BankPerks",
		FetchedAt: time.Now().UTC(),
		Promotions: []promo.Promotion{
			{Id: "a1", Title: "Free night after 5 stays", Price: "$1,000"},
		},
	})

	rec = doRequest(router, http.MethodGet, "/api/targets/BankPerks/state", "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	var snapshot store.Snapshot
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, "BankPerks", snapshot.Target)
	assert.Len(t, snapshot.Promotions, 1)
}

func TestTargetHistory(t *testing.T) {
	server, st, _ := newTestServer()

	st.AppendHistory(context.Background(), "StayRewards", &store.HistoryEntry{
		At:      time.Now().UTC(),
		Summary: "1 new promotion",
	})

	rec := doRequest(server.Router(), http.MethodGet, "/api/targets/StayRewards/history", "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 new promotion")
}

func TestTriggerRun(t *testing.T) {
	server, _, runner := newTestServer()
	rec := doRequest(server.Router(), http.MethodPost, "/api/run", "secret-token")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, runner.triggered)
}

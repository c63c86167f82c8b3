package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

type fakeSyncer struct {
	running   bool
	triggered bool
	last      *models.CycleSummary
}

func (s *fakeSyncer) Running() bool { return s.running }

func (s *fakeSyncer) Trigger() bool {
	if s.triggered {
		return false
	}
	s.triggered = true
	return true
}

func (s *fakeSyncer) LastSummary() *models.CycleSummary { return s.last }

type fakeHistory struct {
	cycles []models.CycleSummary
	err    error
}

func (h *fakeHistory) Recent(limit int) ([]models.CycleSummary, error) {
	if h.err != nil {
		return nil, h.err
	}
	if limit > 0 && limit < len(h.cycles) {
		return h.cycles[:limit], nil
	}
	return h.cycles, nil
}

func testServer(t *testing.T, syncer Syncer, history HistorySource, authEnabled bool, token string) *httptest.Server {
	t.Helper()
	h := NewHandler(syncer, history)
	srv := httptest.NewServer(NewRouter(h, authEnabled, token, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestStatus_Idle(t *testing.T) {
	srv := testServer(t, &fakeSyncer{}, &fakeHistory{}, false, "")

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Running   bool                 `json:"running"`
		LastCycle *models.CycleSummary `json:"last_cycle"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Running || body.LastCycle != nil {
		t.Errorf("body = %+v, want idle with no last cycle", body)
	}
}

func TestStatus_WithLastCycle(t *testing.T) {
	sum := &models.CycleSummary{
		StartedAt: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		Inserted:  4,
	}
	srv := testServer(t, &fakeSyncer{last: sum}, &fakeHistory{}, false, "")

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		LastCycle *models.CycleSummary `json:"last_cycle"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.LastCycle == nil || body.LastCycle.Inserted != 4 {
		t.Errorf("last_cycle = %+v", body.LastCycle)
	}
}

func TestTriggerSync(t *testing.T) {
	syncer := &fakeSyncer{}
	srv := testServer(t, syncer, &fakeHistory{}, false, "")

	resp, err := http.Post(srv.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sync: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	// Second request: trigger already queued.
	resp, err = http.Post(srv.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sync: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestTriggerSync_WhileRunning(t *testing.T) {
	srv := testServer(t, &fakeSyncer{running: true}, &fakeHistory{}, false, "")

	resp, err := http.Post(srv.URL+"/sync", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sync: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestHistory(t *testing.T) {
	history := &fakeHistory{cycles: []models.CycleSummary{
		{Inserted: 2}, {Inserted: 1},
	}}
	srv := testServer(t, &fakeSyncer{}, history, false, "")

	resp, err := http.Get(srv.URL + "/history?limit=1")
	if err != nil {
		t.Fatalf("GET /history: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Cycles []models.CycleSummary `json:"cycles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Cycles) != 1 || body.Cycles[0].Inserted != 2 {
		t.Errorf("cycles = %+v", body.Cycles)
	}
}

func TestAuth(t *testing.T) {
	srv := testServer(t, &fakeSyncer{}, &fakeHistory{}, true, "secret")

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}
}

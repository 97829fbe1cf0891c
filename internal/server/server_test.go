package server

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/luki/envmon/internal/history"
	"github.com/luki/envmon/internal/sensor"
)

func seededServer(t *testing.T, n int) (*Server, *history.Store) {
	t.Helper()
	store := history.New(1000)
	for i := 1; i <= n; i++ {
		store.Append(sensor.Reading{
			Temperature: 20.0 + float64(i%5),
			Humidity:    40.0 + float64(i%10),
			Timestamp:   int64(i) * 1000,
			Valid:       true,
		})
	}
	srv := New(Options{
		Store:        store,
		DeviceName:   "Test Monitor",
		ListenAddr:   ":8080",
		HistoryLimit: 100,
		Start:        time.Date(2026, 2, 21, 12, 0, 0, 0, time.Local),
		SensorOK:     func() bool { return true },
		LinkUp:       func() bool { return true },
	})
	return srv, store
}

func getJSON(t *testing.T, h http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
	return rec
}

func TestDataEndpoint(t *testing.T) {
	srv, _ := seededServer(t, 150)
	h := srv.Handler()

	var resp dataResponse
	getJSON(t, h, "/data", &resp)

	if len(resp.History) != 100 {
		t.Errorf("history length: got %d, want 100 (default window)", len(resp.History))
	}
	if resp.Current == nil {
		t.Fatal("current should not be null")
	}
	if resp.Current.Timestamp != 150_000 {
		t.Errorf("current timestamp: got %d, want 150000", resp.Current.Timestamp)
	}
	if !strings.HasPrefix(resp.Current.TimestampISO, "2026-02-21T12:02:30") {
		t.Errorf("current timestamp_iso: got %q", resp.Current.TimestampISO)
	}
	if resp.Metadata.TotalReadings != 150 {
		t.Errorf("total_readings: got %d, want 150", resp.Metadata.TotalReadings)
	}
	if resp.Metadata.BufferSize != 1000 {
		t.Errorf("buffer_size: got %d, want 1000", resp.Metadata.BufferSize)
	}
	if !resp.Metadata.WifiConnected {
		t.Error("wifi_connected should be true")
	}

	// Oldest-first ordering.
	if resp.History[0].Timestamp >= resp.History[len(resp.History)-1].Timestamp {
		t.Error("history should be oldest-first")
	}
}

func TestDataFieldNames(t *testing.T) {
	srv, _ := seededServer(t, 2)
	h := srv.Handler()

	var raw map[string]json.RawMessage
	getJSON(t, h, "/data", &raw)
	for _, key := range []string{"current", "history", "metadata"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	var meta map[string]json.RawMessage
	if err := json.Unmarshal(raw["metadata"], &meta); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"total_readings", "buffer_size", "uptime_seconds", "wifi_connected", "sensor_faults"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("missing metadata key %q", key)
		}
	}
}

func TestDataLimitParam(t *testing.T) {
	srv, _ := seededServer(t, 50)
	h := srv.Handler()

	var resp dataResponse
	getJSON(t, h, "/data?limit=5", &resp)
	if len(resp.History) != 5 {
		t.Errorf("limit=5: got %d entries", len(resp.History))
	}

	// Larger than the configured window clamps to the window.
	getJSON(t, h, "/data?limit=100000", &resp)
	if len(resp.History) != 50 {
		t.Errorf("oversized limit: got %d entries, want 50", len(resp.History))
	}

	// Junk limit falls back to the default window.
	getJSON(t, h, "/data?limit=bogus", &resp)
	if len(resp.History) != 50 {
		t.Errorf("junk limit: got %d entries, want 50", len(resp.History))
	}

	getJSON(t, h, "/data?limit=0", &resp)
	if len(resp.History) != 0 {
		t.Errorf("limit=0: got %d entries, want 0", len(resp.History))
	}
}

func TestDataEmptyStore(t *testing.T) {
	srv, _ := seededServer(t, 0)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `"current":null`) {
		t.Errorf("empty store should serialize current as null: %s", body)
	}
	if !strings.Contains(body, `"history":[]`) {
		t.Errorf("empty store should serialize history as []: %s", body)
	}

	var resp dataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.TotalReadings != 0 {
		t.Errorf("total_readings: got %d, want 0", resp.Metadata.TotalReadings)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := seededServer(t, 1)
	h := srv.Handler()

	var resp map[string]any
	getJSON(t, h, "/health", &resp)

	if resp["status"] != "healthy" {
		t.Errorf("status: got %v", resp["status"])
	}
	if resp["sensor_status"] != "ok" {
		t.Errorf("sensor_status: got %v", resp["sensor_status"])
	}
	if _, ok := resp["free_heap"]; !ok {
		t.Error("missing free_heap")
	}
}

func TestHealthSensorError(t *testing.T) {
	store := history.New(10)
	srv := New(Options{
		Store:    store,
		Start:    time.Now(),
		SensorOK: func() bool { return false },
	})

	var resp map[string]any
	getJSON(t, srv.Handler(), "/health", &resp)
	if resp["sensor_status"] != "error" {
		t.Errorf("sensor_status: got %v, want error", resp["sensor_status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := seededServer(t, 3)
	h := srv.Handler()

	var resp map[string]any
	getJSON(t, h, "/status", &resp)

	if resp["device"] != "Test Monitor" {
		t.Errorf("device: got %v", resp["device"])
	}
	if resp["firmware_version"] != "1.0.0" {
		t.Errorf("firmware_version: got %v", resp["firmware_version"])
	}
	if resp["total_readings"] != float64(3) {
		t.Errorf("total_readings: got %v, want 3", resp["total_readings"])
	}
	if resp["last_reading"] == "" {
		t.Error("last_reading should be set")
	}
}

func TestExportCSV(t *testing.T) {
	srv, _ := seededServer(t, 5)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/export.csv", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: got %q", ct)
	}

	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 6 { // header + 5 readings
		t.Fatalf("rows: got %d, want 6", len(rows))
	}
	wantHeader := []string{"timestamp_ms", "timestamp_iso", "temperature", "humidity"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d]: got %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "1000" {
		t.Errorf("first data row timestamp: got %q, want 1000", rows[1][0])
	}
}

func TestIndexAndNotFound(t *testing.T) {
	srv, _ := seededServer(t, 0)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/data") {
		t.Error("index should list endpoints")
	}

	req = httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /nonexistent: status %d, want 404", rec.Code)
	}
}

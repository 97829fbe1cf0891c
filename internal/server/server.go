// Package server exposes current and historical readings over a small
// HTTP API: /data, /health, /status, /export.csv, and an index page.
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/luki/envmon/internal/history"
	"github.com/luki/envmon/internal/sensor"
)

const firmwareVersion = "1.0.0"

const isoLayout = "2006-01-02T15:04:05"

// Options configures a Server. SensorOK and LinkUp may be nil.
type Options struct {
	Store        *history.Store
	Log          *zap.Logger
	DeviceName   string
	ListenAddr   string
	HistoryLimit int       // default window for /data
	Start        time.Time // daemon start, wall clock
	SensorOK     func() bool
	LinkUp       func() bool
}

// Server answers read-only queries against the history store. Handlers
// take one snapshot under the store's lock and serialize afterwards.
type Server struct {
	opts Options
}

// New creates a server around a history store.
func New(opts Options) *Server {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Server{opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/data", s.handleData)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/export.csv", s.handleExport)
	return s.logged(mux)
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		next.ServeHTTP(w, r)
		s.opts.Log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(begin)))
	})
}

// wireReading is the JSON shape shared by current and history entries.
type wireReading struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Timestamp    int64   `json:"timestamp"`
	TimestampISO string  `json:"timestamp_iso"`
}

type wireMetadata struct {
	TotalReadings uint64 `json:"total_readings"`
	BufferSize    int    `json:"buffer_size"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	WifiConnected bool   `json:"wifi_connected"`
	SensorFaults  uint64 `json:"sensor_faults"`
}

type dataResponse struct {
	Current  *wireReading  `json:"current"`
	History  []wireReading `json:"history"`
	Metadata wireMetadata  `json:"metadata"`
}

func (s *Server) toWire(r sensor.Reading) wireReading {
	at := s.opts.Start.Add(time.Duration(r.Timestamp) * time.Millisecond)
	return wireReading{
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		Timestamp:    r.Timestamp,
		TimestampISO: at.Format(isoLayout),
	}
}

func (s *Server) uptimeSeconds() int64 {
	return int64(time.Since(s.opts.Start).Seconds())
}

func (s *Server) linkUp() bool {
	if s.opts.LinkUp == nil {
		return true
	}
	return s.opts.LinkUp()
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	limit := s.opts.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, ok := parseLimit(raw); ok && n < limit {
			limit = n
		}
	}

	snap := s.opts.Store.Snapshot(limit)

	resp := dataResponse{
		History: make([]wireReading, 0, len(snap.History)),
		Metadata: wireMetadata{
			TotalReadings: snap.Total,
			BufferSize:    s.opts.Store.Cap(),
			UptimeSeconds: s.uptimeSeconds(),
			WifiConnected: s.linkUp(),
			SensorFaults:  s.opts.Store.Faults(),
		},
	}
	if snap.Current != nil {
		cur := s.toWire(*snap.Current)
		resp.Current = &cur
	}
	for _, entry := range snap.History {
		resp.History = append(resp.History, s.toWire(entry))
	}

	writeJSON(w, resp)
}

func parseLimit(raw string) (int, bool) {
	n := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
		if n > 1<<20 {
			return 0, false
		}
	}
	return n, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	sensorStatus := "ok"
	if s.opts.SensorOK != nil && !s.opts.SensorOK() {
		sensorStatus = "error"
	}

	writeJSON(w, map[string]any{
		"status":         "healthy",
		"uptime_seconds": s.uptimeSeconds(),
		"free_heap":      mem.HeapIdle,
		"wifi_connected": s.linkUp(),
		"sensor_status":  sensorStatus,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.opts.Store.Snapshot(0)

	lastReading := ""
	if snap.Current != nil {
		lastReading = s.toWire(*snap.Current).TimestampISO
	}

	writeJSON(w, map[string]any{
		"device":           s.opts.DeviceName,
		"firmware_version": firmwareVersion,
		"listen_addr":      s.opts.ListenAddr,
		"ip_address":       localIP(),
		"uptime_seconds":   s.uptimeSeconds(),
		"total_readings":   snap.Total,
		"last_reading":     lastReading,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Endpoint not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<h1>" + s.opts.DeviceName + "</h1>" +
		"<p>Endpoints available:</p>" +
		"<ul>" +
		"<li><a href='/data'>/data</a> - Current and historical sensor readings</li>" +
		"<li><a href='/health'>/health</a> - Health check</li>" +
		"<li><a href='/status'>/status</a> - Device status</li>" +
		"<li><a href='/export.csv'>/export.csv</a> - History as CSV</li>" +
		"</ul>"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

// localIP returns the host's first non-loopback IPv4 address, or an
// empty string when none is up.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

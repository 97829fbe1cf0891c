package server

import (
	"encoding/csv"
	"net/http"
	"strconv"
)

// handleExport streams the full history window as CSV with the format:
//
//	timestamp_ms,timestamp_iso,temperature,humidity
//
// This is a pull-based export for spreadsheets and scripts; nothing is
// written on the device side.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.opts.Store.Snapshot(s.opts.Store.Cap())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="readings.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"timestamp_ms", "timestamp_iso", "temperature", "humidity"})

	for _, entry := range snap.History {
		wire := s.toWire(entry)
		cw.Write([]string{
			strconv.FormatInt(wire.Timestamp, 10),
			wire.TimestampISO,
			strconv.FormatFloat(wire.Temperature, 'f', 1, 64),
			strconv.FormatFloat(wire.Humidity, 'f', 1, 64),
		})
	}
	cw.Flush()
}

// Package client fetches readings from an envmond backend for the
// dashboard, and generates simulated data when the backend is
// unreachable.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const isoLayout = "2006-01-02T15:04:05"

// Point is one decoded reading.
type Point struct {
	Temperature float64
	Humidity    float64
	Time        time.Time
}

// Metadata mirrors the backend's /data metadata block.
type Metadata struct {
	TotalReadings uint64
	BufferSize    int
	UptimeSeconds int64
	LinkUp        bool
	SensorFaults  uint64
}

// Data is one poll result.
type Data struct {
	Current   *Point
	History   []Point
	Meta      Metadata
	Simulated bool
}

// Client polls a backend's /data endpoint.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for a backend base URL like
// "http://localhost:8080".
func New(base string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Addr returns the backend base URL.
func (c *Client) Addr() string { return c.base }

// Wire shapes; field names are the backend contract.
type wireReading struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	Timestamp    int64   `json:"timestamp"`
	TimestampISO string  `json:"timestamp_iso"`
}

type wireResponse struct {
	Current  *wireReading  `json:"current"`
	History  []wireReading `json:"history"`
	Metadata struct {
		TotalReadings uint64 `json:"total_readings"`
		BufferSize    int    `json:"buffer_size"`
		UptimeSeconds int64  `json:"uptime_seconds"`
		WifiConnected bool   `json:"wifi_connected"`
		SensorFaults  uint64 `json:"sensor_faults"`
	} `json:"metadata"`
}

func (w wireReading) point() Point {
	p := Point{Temperature: w.Temperature, Humidity: w.Humidity}
	if t, err := time.ParseInLocation(isoLayout, w.TimestampISO, time.Local); err == nil {
		p.Time = t
	}
	return p
}

// Data fetches up to limit readings from the backend.
func (c *Client) Data(ctx context.Context, limit int) (*Data, error) {
	url := fmt.Sprintf("%s/data?limit=%d", c.base, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned %s", resp.Status)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	d := &Data{
		History: make([]Point, 0, len(wire.History)),
		Meta: Metadata{
			TotalReadings: wire.Metadata.TotalReadings,
			BufferSize:    wire.Metadata.BufferSize,
			UptimeSeconds: wire.Metadata.UptimeSeconds,
			LinkUp:        wire.Metadata.WifiConnected,
			SensorFaults:  wire.Metadata.SensorFaults,
		},
	}
	if wire.Current != nil {
		p := wire.Current.point()
		d.Current = &p
	}
	for _, entry := range wire.History {
		d.History = append(d.History, entry.point())
	}
	return d, nil
}

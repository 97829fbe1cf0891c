// Package sensor provides the temperature/humidity reading model and the
// sources that produce readings: a Linux hwmon probe for DHT-class chips
// and a simulated fallback for hardware-less hosts.
package sensor

import "math"

// Reading is a single temperature/humidity sample.
type Reading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // relative humidity, percent
	Timestamp   int64   `json:"timestamp"`   // milliseconds since daemon start
	Valid       bool    `json:"-"`
}

// DHT22 measurement envelope. A glitching sensor bus produces wild
// values rather than read errors, so anything outside this range is
// treated as a failed read.
const (
	minTemp     = -40.0
	maxTemp     = 80.0
	minHumidity = 0.0
	maxHumidity = 100.0
)

// Plausible reports whether the reading's values are physically possible
// for the sensor class.
func (r Reading) Plausible() bool {
	if math.IsNaN(r.Temperature) || math.IsNaN(r.Humidity) {
		return false
	}
	if r.Temperature < minTemp || r.Temperature > maxTemp {
		return false
	}
	if r.Humidity < minHumidity || r.Humidity > maxHumidity {
		return false
	}
	return true
}

// Source produces one reading per call. Implementations must not block
// longer than a sampling tick; timestamping is the caller's job.
type Source interface {
	Read() (Reading, error)
	Name() string
}

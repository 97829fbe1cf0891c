package client

import (
	"math/rand"
	"time"
)

// Simulated generates a plausible random-walk Data set of n points
// ending now, spaced one second apart. The dashboard falls back to this
// when the backend cannot be reached, so the operator still sees a live
// layout instead of an empty screen.
func Simulated(n int) *Data {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return simulated(n, rng)
}

func simulated(n int, rng *rand.Rand) *Data {
	now := time.Now()
	temp, hum := 22.5, 45.0

	d := &Data{
		History:   make([]Point, 0, n),
		Simulated: true,
		Meta: Metadata{
			TotalReadings: uint64(n),
			BufferSize:    n,
			UptimeSeconds: int64(n),
		},
	}

	for i := 0; i < n; i++ {
		temp += (rng.Float64() - 0.5) * 0.4
		hum += (rng.Float64() - 0.5) * 1.2
		if temp < 15 {
			temp = 15
		}
		if temp > 32 {
			temp = 32
		}
		if hum < 25 {
			hum = 25
		}
		if hum > 75 {
			hum = 75
		}
		d.History = append(d.History, Point{
			Temperature: temp,
			Humidity:    hum,
			Time:        now.Add(-time.Duration(n-1-i) * time.Second),
		})
	}

	if len(d.History) > 0 {
		last := d.History[len(d.History)-1]
		d.Current = &last
	}
	return d
}

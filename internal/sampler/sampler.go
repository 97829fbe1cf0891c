// Package sampler drives the periodic read-and-store cycle: one sensor
// acquisition per tick, stamped with monotonic milliseconds since daemon
// start, appended to the history store, and optionally published.
package sampler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/luki/envmon/internal/history"
	"github.com/luki/envmon/internal/sensor"
)

// Publisher receives each successfully stored reading. Implementations
// must tolerate being called once per tick.
type Publisher interface {
	Publish(ctx context.Context, r sensor.Reading) error
}

// Sampler owns the sampling cadence.
type Sampler struct {
	src      sensor.Source
	store    *history.Store
	pub      Publisher // may be nil
	interval time.Duration
	start    time.Time
	log      *zap.Logger
	healthy  atomic.Bool
}

// New creates a sampler. start is the daemon's start instant, shared
// with the HTTP server so timestamps line up across components.
func New(src sensor.Source, store *history.Store, pub Publisher, interval time.Duration, start time.Time, log *zap.Logger) *Sampler {
	return &Sampler{
		src:      src,
		store:    store,
		pub:      pub,
		interval: interval,
		start:    start,
		log:      log,
	}
}

// Healthy reports whether the most recent acquisition produced a valid
// reading.
func (s *Sampler) Healthy() bool {
	return s.healthy.Load()
}

// Run samples until ctx is cancelled. Sensor I/O happens entirely
// outside the store lock; the store only ever sees a finished reading.
func (s *Sampler) Run(ctx context.Context) {
	s.log.Info("sampler started",
		zap.String("source", s.src.Name()),
		zap.Duration("interval", s.interval))

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sampler stopped")
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Sampler) tick(ctx context.Context) {
	r, err := s.src.Read()
	if err != nil {
		s.healthy.Store(false)
		s.log.Warn("sensor read failed", zap.Error(err))
		s.store.Append(sensor.Reading{}) // counted as a fault, never stored
		return
	}

	r.Timestamp = time.Since(s.start).Milliseconds()

	if !r.Valid {
		s.healthy.Store(false)
		s.log.Warn("discarding implausible reading",
			zap.Float64("temperature", r.Temperature),
			zap.Float64("humidity", r.Humidity))
		s.store.Append(r)
		return
	}

	s.healthy.Store(true)
	s.store.Append(r)
	s.log.Debug("reading stored",
		zap.Float64("temperature", r.Temperature),
		zap.Float64("humidity", r.Humidity),
		zap.Int64("timestamp_ms", r.Timestamp))

	if s.pub != nil {
		if err := s.pub.Publish(ctx, r); err != nil {
			s.log.Warn("telemetry publish failed", zap.Error(err))
		}
	}
}

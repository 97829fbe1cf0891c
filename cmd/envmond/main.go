// Command envmond samples a temperature/humidity sensor on a fixed
// cadence, keeps a bounded in-memory history, and serves it over HTTP.
// Readings can optionally be published to an MQTT broker.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luki/envmon/internal/config"
	"github.com/luki/envmon/internal/history"
	"github.com/luki/envmon/internal/logger"
	"github.com/luki/envmon/internal/publish"
	"github.com/luki/envmon/internal/sampler"
	"github.com/luki/envmon/internal/sensor"
	"github.com/luki/envmon/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "envmond: config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "envmond: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Flush(log)

	if err := run(cfg, log); err != nil {
		log.Error("exiting", zap.Error(err))
		logger.Flush(log)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	src, err := pickSource(cfg, log)
	if err != nil {
		return err
	}

	start := time.Now()
	store := history.New(cfg.BufferCapacity)
	store.Reset()

	var pub *publish.Publisher
	var samplerPub sampler.Publisher
	linkUp := func() bool { return true }
	if cfg.MQTTEnabled {
		pub = publish.New(cfg.MQTTBroker, cfg.MQTTTopic, log)
		defer pub.Close()
		samplerPub = pub
		linkUp = pub.Connected
	}

	samp := sampler.New(src, store, samplerPub, cfg.SampleInterval, start, log)

	srv := server.New(server.Options{
		Store:        store,
		Log:          log,
		DeviceName:   cfg.DeviceName,
		ListenAddr:   cfg.ListenAddr,
		HistoryLimit: cfg.HistoryLimit,
		Start:        start,
		SensorOK:     samp.Healthy,
		LinkUp:       linkUp,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go samp.Run(ctx)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
		serveErr <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func pickSource(cfg *config.Config, log *zap.Logger) (sensor.Source, error) {
	switch cfg.SensorMode {
	case config.ModeSysfs:
		src, err := sensor.Open(cfg.SensorPath)
		if err != nil {
			return nil, fmt.Errorf("open sensor %s: %w", cfg.SensorPath, err)
		}
		log.Info("using hwmon sensor",
			zap.String("chip", src.Name()),
			zap.String("probe", sensor.FriendlyName(src.Name())))
		return src, nil

	case config.ModeSim:
		log.Info("using simulated sensor")
		return sensor.NewSim(time.Now().UnixNano()), nil

	default: // auto
		if src := sensor.Probe(sensor.HwmonRoot); src != nil {
			log.Info("probe found hwmon sensor",
				zap.String("chip", src.Name()),
				zap.String("probe", sensor.FriendlyName(src.Name())))
			return src, nil
		}
		log.Warn("no humidity-capable hwmon chip found, falling back to simulation")
		return sensor.NewSim(time.Now().UnixNano()), nil
	}
}

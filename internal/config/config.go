// Package config loads the daemon configuration from defaults,
// environment variables, and an optional yaml file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sensor selection modes.
const (
	ModeAuto  = "auto"  // probe hwmon, fall back to simulation
	ModeSim   = "sim"   // always simulate
	ModeSysfs = "sysfs" // explicit hwmon device dir, fail if absent
)

// Config holds every configurable value for the daemon.
type Config struct {
	// Server
	ListenAddr   string `mapstructure:"listen_addr"`
	HistoryLimit int    `mapstructure:"history_limit"` // max readings per /data response
	DeviceName   string `mapstructure:"device_name"`

	// Sampling
	SampleInterval time.Duration `mapstructure:"sample_interval"`
	BufferCapacity int           `mapstructure:"buffer_capacity"`
	SensorMode     string        `mapstructure:"sensor_mode"`
	SensorPath     string        `mapstructure:"sensor_path"` // hwmon device dir for sysfs mode

	// Telemetry
	MQTTEnabled bool   `mapstructure:"mqtt_enabled"`
	MQTTBroker  string `mapstructure:"mqtt_broker"` // host:port
	MQTTTopic   string `mapstructure:"mqtt_topic"`

	LogLevel string `mapstructure:"log_level"` // debug|info|warn|error
}

// Load reads configuration from (in decreasing priority):
//  1. environment variables (ENVMON_LISTEN_ADDR, ENVMON_MQTT_BROKER, ...)
//  2. a yaml file (./configs/config.yaml) if it exists.
//  3. built-in defaults.
//
// It returns a fully populated *Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("history_limit", 100)
	v.SetDefault("device_name", "Environmental Monitor")
	v.SetDefault("sample_interval", "1s")
	v.SetDefault("buffer_capacity", 1000)
	v.SetDefault("sensor_mode", ModeAuto)
	v.SetDefault("sensor_path", "")
	v.SetDefault("mqtt_enabled", false)
	v.SetDefault("mqtt_broker", "localhost:1883")
	v.SetDefault("mqtt_topic", "envmon/readings")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("envmon")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Optional yaml file - useful for local dev or a provisioning image
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // ignore error - file is optional

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.SampleInterval < 100*time.Millisecond {
		return fmt.Errorf("sample_interval %v is below 100ms", c.SampleInterval)
	}
	if c.BufferCapacity <= 0 {
		return fmt.Errorf("buffer_capacity must be positive, got %d", c.BufferCapacity)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit)
	}
	switch c.SensorMode {
	case ModeAuto, ModeSim:
	case ModeSysfs:
		if c.SensorPath == "" {
			return fmt.Errorf("sensor_mode %q requires sensor_path", ModeSysfs)
		}
	default:
		return fmt.Errorf("unknown sensor_mode %q", c.SensorMode)
	}
	if c.MQTTEnabled && c.MQTTBroker == "" {
		return fmt.Errorf("mqtt_enabled requires mqtt_broker")
	}
	if c.MQTTEnabled && c.MQTTTopic == "" {
		return fmt.Errorf("mqtt_enabled requires mqtt_topic")
	}
	return nil
}

package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// HwmonRoot is where the kernel exposes hwmon chips.
const HwmonRoot = "/sys/class/hwmon"

// humidityChips lists hwmon chip name prefixes for humidity-capable
// probes (DHT-class, Sensirion, TI, Bosch).
var humidityChips = []string{
	"dht11",
	"dht22",
	"am2302",
	"sht",
	"hdc",
	"htu",
	"si70",
	"bme",
}

// SysfsSource reads one hwmon chip that exposes temp1_input
// (millidegrees C) and humidity1_input (milli-percent RH).
type SysfsSource struct {
	dir  string
	chip string
}

// Probe scans root for a humidity-capable chip. Returns nil if none is
// present — not an error, the caller falls back to simulation.
func Probe(root string) *SysfsSource {
	matches, _ := filepath.Glob(filepath.Join(root, "hwmon*", "name"))

	for _, namePath := range matches {
		dir := filepath.Dir(namePath)
		nameBytes, err := os.ReadFile(namePath)
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(nameBytes))

		if !isHumidityChip(name) {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "humidity1_input")); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, "temp1_input")); err != nil {
			continue
		}
		return &SysfsSource{dir: dir, chip: name}
	}
	return nil
}

// Open returns a source for an explicit hwmon device directory.
func Open(dir string) (*SysfsSource, error) {
	nameBytes, err := os.ReadFile(filepath.Join(dir, "name"))
	if err != nil {
		return nil, fmt.Errorf("not a hwmon device dir: %w", err)
	}
	s := &SysfsSource{dir: dir, chip: strings.TrimSpace(string(nameBytes))}
	if _, err := os.Stat(filepath.Join(dir, "temp1_input")); err != nil {
		return nil, fmt.Errorf("%s has no temperature channel: %w", s.chip, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "humidity1_input")); err != nil {
		return nil, fmt.Errorf("%s has no humidity channel: %w", s.chip, err)
	}
	return s, nil
}

func isHumidityChip(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range humidityChips {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Name returns the chip name reported by the kernel.
func (s *SysfsSource) Name() string { return s.chip }

// Read performs one acquisition of both channels. A reading is marked
// invalid when either value falls outside the sensor envelope.
func (s *SysfsSource) Read() (Reading, error) {
	temp, err := readMilli(filepath.Join(s.dir, "temp1_input"))
	if err != nil {
		return Reading{}, err
	}
	hum, err := readMilli(filepath.Join(s.dir, "humidity1_input"))
	if err != nil {
		return Reading{}, err
	}

	r := Reading{Temperature: temp, Humidity: hum, Valid: true}
	if !r.Plausible() {
		r.Valid = false
	}
	return r, nil
}

// readMilli parses a hwmon attribute file holding a milli-scaled integer.
func readMilli(path string) (float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return float64(v) / 1000.0, nil
}

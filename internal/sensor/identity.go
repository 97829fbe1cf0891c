package sensor

import "strings"

// chipIdentityMap maps hwmon chip name prefixes to friendly probe names.
var chipIdentityMap = []struct {
	prefix string
	name   string
}{
	{"dht11", "DHT11 probe"},
	{"dht22", "DHT22 probe"},
	{"am2302", "AM2302 probe"},
	{"sht", "Sensirion SHT probe"},
	{"htu", "HTU2x probe"},
	{"si70", "Si70xx probe"},
	{"hdc", "TI HDC probe"},
	{"bme", "Bosch BME probe"},
}

// FriendlyName returns a human-readable name for a hwmon chip ID.
func FriendlyName(chip string) string {
	lower := strings.ToLower(chip)
	for _, entry := range chipIdentityMap {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.name
		}
	}
	if lower == "simulated" {
		return "Simulated sensor"
	}
	return "Sensor"
}

// Package config loads runtime configuration from the environment, with
// defaults suitable for local development.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every knob the tracker reads from the environment.
type Config struct {
	MongoURI string
	MongoDB  string

	// RedisURL enables the snapshot cache when non-empty.
	RedisURL string
	CacheTTL time.Duration

	MQTTBrokerURL  string
	MQTTClientID   string
	PublishTimeout time.Duration

	// TickInterval is how often the scheduler recomputes truck positions.
	TickInterval time.Duration
	// MinMoveMeters suppresses writes for movements smaller than this.
	MinMoveMeters float64
	// SpeedKmh is the assumed travel speed between stops.
	SpeedKmh float64
}

// Load reads the environment into a Config. Unset or unparsable values fall
// back to their defaults.
func Load() Config {
	return Config{
		MongoURI:       getString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getString("MONGO_DB", "foodtruck"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CacheTTL:       time.Duration(getInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		MQTTBrokerURL:  getString("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:   getString("MQTT_CLIENT_ID", "truck-tracker"),
		PublishTimeout: time.Duration(getInt("PUBLISH_TIMEOUT_MS", 2000)) * time.Millisecond,
		TickInterval:   time.Duration(getInt("TRUCK_LOCATION_UPDATE_MS", 5000)) * time.Millisecond,
		MinMoveMeters:  getFloat("MIN_MOVE_METERS", 2),
		SpeedKmh:       getFloat("TRUCK_SPEED_KMH", 20),
	}
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

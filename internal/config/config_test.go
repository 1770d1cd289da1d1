package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "foodtruck", cfg.MongoDB)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 2.0, cfg.MinMoveMeters)
	assert.Equal(t, 20.0, cfg.SpeedKmh)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("TRUCK_LOCATION_UPDATE_MS", "1000")
	t.Setenv("TRUCK_SPEED_KMH", "40")
	t.Setenv("MIN_MOVE_METERS", "not-a-number")

	cfg := Load()
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 40.0, cfg.SpeedKmh)
	assert.Equal(t, 2.0, cfg.MinMoveMeters, "unparsable values keep the default")
}

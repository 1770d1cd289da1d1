package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		expected               float64
		tolerance              float64
	}{
		{"same point", 16.4825, 80.6994, 16.4825, 80.6994, 0, 0.001},
		{"one degree longitude at equator", 0, 0, 0, 1, 111195, 100},
		{"hundredth degree longitude at equator", 0, 0, 0, 0.01, 1112, 2},
		{"kanuru to benz circle", 16.4825, 80.6994, 16.4995, 80.6466, 5950, 150},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 343500, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	ab := HaversineMeters(16.4825, 80.6994, 16.5135, 80.6826)
	ba := HaversineMeters(16.5135, 80.6826, 16.4825, 80.6994)
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestLerp(t *testing.T) {
	lat, lng := Lerp(0, 0, 10, 20, 0)
	assert.Equal(t, 0.0, lat)
	assert.Equal(t, 0.0, lng)

	lat, lng = Lerp(0, 0, 10, 20, 1)
	assert.Equal(t, 10.0, lat)
	assert.Equal(t, 20.0, lng)

	lat, lng = Lerp(0, 0, 10, 20, 0.25)
	assert.InDelta(t, 2.5, lat, 1e-12)
	assert.InDelta(t, 5.0, lng, 1e-12)
}

func TestValidLatLng(t *testing.T) {
	assert.True(t, ValidLatLng(0, 0))
	assert.True(t, ValidLatLng(-90, 180))
	assert.True(t, ValidLatLng(90, -180))
	assert.False(t, ValidLatLng(90.1, 0))
	assert.False(t, ValidLatLng(0, -180.5))
	assert.False(t, ValidLatLng(math.NaN(), 0))
	assert.False(t, ValidLatLng(0, math.Inf(1)))
}

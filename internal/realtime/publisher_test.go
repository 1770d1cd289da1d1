package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtruckhq/truck-tracker/internal/models"
)

func TestTruckLocationTopic(t *testing.T) {
	assert.Equal(t, "trucks/64f1/location", TruckLocationTopic("64f1"))
}

func TestLocationEventSelfContained(t *testing.T) {
	ev := LocationEvent{
		TruckID: "64f1",
		LiveLocation: models.LiveLocation{
			Lat:       16.4825,
			Lng:       80.6994,
			UpdatedAt: time.Date(2026, 3, 15, 9, 5, 0, 0, time.UTC),
		},
		Status:           models.StatusMoving,
		CurrentStopIndex: 2,
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "64f1", decoded["truckId"])
	assert.Equal(t, "MOVING", decoded["status"])
	assert.Equal(t, float64(2), decoded["currentStopIndex"])
	loc, ok := decoded["liveLocation"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 16.4825, loc["lat"])
	assert.Equal(t, 80.6994, loc["lng"])
	assert.NotEmpty(t, loc["updatedAt"])
}

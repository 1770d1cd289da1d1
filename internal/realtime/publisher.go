// Package realtime defines the publish boundary for truck state changes and
// its MQTT implementation. Publishing is fire-and-forget, at most once; the
// persisted truck state is never rolled back on a publish failure.
package realtime

import (
	"github.com/foodtruckhq/truck-tracker/internal/models"
)

// Publisher pushes a JSON-serializable payload to a topic. Implementations
// are injected into the scheduler and control service at construction.
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// TruckUpdatesTopic carries every truck change for subscribers watching the
// whole fleet.
const TruckUpdatesTopic = "trucks/updates"

// TruckLocationTopic is the truck-scoped topic for location subscribers.
func TruckLocationTopic(truckID string) string {
	return "trucks/" + truckID + "/location"
}

// LocationEvent is the payload on a truck's location topic. It is
// self-contained: subscribers need no server-side state to interpret it.
type LocationEvent struct {
	TruckID          string              `json:"truckId"`
	LiveLocation     models.LiveLocation `json:"liveLocation"`
	Status           models.Status       `json:"status"`
	CurrentStopIndex int                 `json:"currentStopIndex"`
}

// UpdateEvent is the payload on the global updates topic, carrying the
// changed fields of one truck.
type UpdateEvent struct {
	TruckID string                 `json:"truckId"`
	Fields  map[string]interface{} `json:"fields"`
}

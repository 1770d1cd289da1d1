package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stop is one scheduled waypoint on a truck's daily tour.
type Stop struct {
	Name     string  `bson:"name" json:"name"`
	Lat      float64 `bson:"lat" json:"lat"`
	Lng      float64 `bson:"lng" json:"lng"`
	WaitTime int     `bson:"waitTime" json:"waitTime"` // dwell time in minutes
}

// RoutePlan is the ordered set of stops plus the daily operating window,
// describing a truck's repeating tour. Stop order is significant.
type RoutePlan struct {
	Name       string `bson:"name,omitempty" json:"name,omitempty"`
	Timezone   string `bson:"timezone" json:"timezone"`
	DailyStart string `bson:"dailyStart" json:"dailyStart"` // HH:MM, local to Timezone
	DailyEnd   string `bson:"dailyEnd" json:"dailyEnd"`     // HH:MM, local to Timezone
	Stops      []Stop `bson:"stops" json:"stops"`
}

// HasStops reports whether the plan exists and holds at least one stop.
func (p *RoutePlan) HasStops() bool {
	return p != nil && len(p.Stops) > 0
}

// Truck is the subset of the truck document owned by the tracking engine.
type Truck struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name,omitempty" json:"name,omitempty"`
	Status           Status             `bson:"status" json:"status"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
	RoutePlan        *RoutePlan         `bson:"routePlan,omitempty" json:"routePlan,omitempty"`
	CurrentStopIndex int                `bson:"currentStopIndex" json:"currentStopIndex"`
	LiveLocation     *LiveLocation      `bson:"liveLocation,omitempty" json:"liveLocation,omitempty"`
	CurrentLocation  *Location          `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	// Location is the legacy display field older clients still read; writes
	// that set CurrentLocation mirror it here.
	Location *Location `bson:"location,omitempty" json:"location,omitempty"`
	Manager          primitive.ObjectID `bson:"manager,omitempty" json:"manager,omitempty"`
	UpdatedAt        time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// ClampStopIndex forces CurrentStopIndex into [0, len(stops)-1]. A truck with
// no plan is clamped to 0.
func (t *Truck) ClampStopIndex() {
	n := 0
	if t.RoutePlan != nil {
		n = len(t.RoutePlan.Stops)
	}
	if n == 0 || t.CurrentStopIndex < 0 {
		t.CurrentStopIndex = 0
		return
	}
	if t.CurrentStopIndex >= n {
		t.CurrentStopIndex = n - 1
	}
}

// Role represents user roles in the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Actor identifies the already-authenticated user performing a route control
// operation. Authentication itself happens upstream.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}

// CanControl reports whether the actor may run route control operations on the
// truck: admins always, managers only on trucks they are assigned to.
func (a Actor) CanControl(t *Truck) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleManager && !t.Manager.IsZero() && t.Manager == a.ID
}

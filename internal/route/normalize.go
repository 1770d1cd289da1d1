// Package route turns raw route plans into canonical ones and computes the
// simulated position of a truck along its plan at a given instant.
package route

import (
	"errors"
	"math"
	"strings"

	"github.com/foodtruckhq/truck-tracker/internal/geo"
	"github.com/foodtruckhq/truck-tracker/internal/models"
)

const (
	// DefaultTimezone is applied when a plan names no IANA zone.
	DefaultTimezone = "Asia/Kolkata"
	// DefaultDailyStart and DefaultDailyEnd bound the operating window when
	// the plan leaves them unset.
	DefaultDailyStart = "09:00"
	DefaultDailyEnd   = "11:00"

	defaultWaitMinutes = 15
)

// ErrInvalidRoutePlan rejects plans that end up with fewer than two usable stops.
var ErrInvalidRoutePlan = errors.New("route plan must have at least 2 valid stops")

// StopInput is one candidate stop from an unvalidated plan.
type StopInput struct {
	Name     string   `json:"name"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	WaitTime *float64 `json:"waitTime,omitempty"`
	StayMin  *float64 `json:"stayMin,omitempty"` // legacy alias for WaitTime
}

// PlanInput is an unvalidated route plan as submitted by an operator.
type PlanInput struct {
	Name       string      `json:"name,omitempty"`
	Timezone   string      `json:"timezone,omitempty"`
	DailyStart string      `json:"dailyStart,omitempty"`
	DailyEnd   string      `json:"dailyEnd,omitempty"`
	Stops      []StopInput `json:"stops"`
}

// Normalize validates and canonicalizes a raw plan. Stops missing a non-empty
// name or a finite in-range coordinate are dropped; if fewer than two survive
// the whole plan is rejected. Normalizing an already-normalized plan yields an
// identical plan.
func Normalize(in PlanInput) (*models.RoutePlan, error) {
	stops := make([]models.Stop, 0, len(in.Stops))
	for _, s := range in.Stops {
		name := strings.TrimSpace(s.Name)
		if name == "" || !geo.ValidLatLng(s.Lat, s.Lng) {
			continue
		}
		stops = append(stops, models.Stop{
			Name:     name,
			Lat:      s.Lat,
			Lng:      s.Lng,
			WaitTime: normalizeWait(s.WaitTime, s.StayMin),
		})
	}
	if len(stops) < 2 {
		return nil, ErrInvalidRoutePlan
	}

	plan := &models.RoutePlan{
		Name:       strings.TrimSpace(in.Name),
		Timezone:   in.Timezone,
		DailyStart: in.DailyStart,
		DailyEnd:   in.DailyEnd,
		Stops:      stops,
	}
	if plan.Timezone == "" {
		plan.Timezone = DefaultTimezone
	}
	if plan.DailyStart == "" {
		plan.DailyStart = DefaultDailyStart
	}
	if plan.DailyEnd == "" {
		plan.DailyEnd = DefaultDailyEnd
	}
	return plan, nil
}

// InputFromPlan converts a stored plan back to its input form, so callers can
// re-run Normalize over plans persisted before current validation rules.
func InputFromPlan(p *models.RoutePlan) PlanInput {
	in := PlanInput{
		Name:       p.Name,
		Timezone:   p.Timezone,
		DailyStart: p.DailyStart,
		DailyEnd:   p.DailyEnd,
		Stops:      make([]StopInput, 0, len(p.Stops)),
	}
	for _, s := range p.Stops {
		wait := float64(s.WaitTime)
		in.Stops = append(in.Stops, StopInput{Name: s.Name, Lat: s.Lat, Lng: s.Lng, WaitTime: &wait})
	}
	return in
}

// DefaultPlan returns the fixed demo route used by the bulk-apply convenience
// operation for trucks that have no plan at all. Explicit plan edits must never
// fall back to it.
func DefaultPlan() *models.RoutePlan {
	return &models.RoutePlan{
		Timezone:   DefaultTimezone,
		DailyStart: DefaultDailyStart,
		DailyEnd:   DefaultDailyEnd,
		Stops: []models.Stop{
			{Name: "Kanuru", Lat: 16.4825, Lng: 80.6994, WaitTime: 20},
			{Name: "Benz Circle", Lat: 16.4995, Lng: 80.6466, WaitTime: 20},
			{Name: "McDonalds Gurunanak Colony", Lat: 16.5078, Lng: 80.6485, WaitTime: 20},
			{Name: "Autonagar", Lat: 16.5135, Lng: 80.6826, WaitTime: 20},
		},
	}
}

func normalizeWait(wait, legacy *float64) int {
	v := wait
	if v == nil {
		v = legacy
	}
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 1 {
		return defaultWaitMinutes
	}
	return int(*v)
}

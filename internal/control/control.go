// Package control implements the operator-facing route control operations:
// start/advance/stop route, manual status and location overrides, and route
// plan replacement. It shares the status vocabulary, stop-index semantics and
// publish contract with the live tracking scheduler.
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/foodtruckhq/truck-tracker/internal/cache"
	"github.com/foodtruckhq/truck-tracker/internal/db"
	"github.com/foodtruckhq/truck-tracker/internal/geo"
	"github.com/foodtruckhq/truck-tracker/internal/models"
	"github.com/foodtruckhq/truck-tracker/internal/realtime"
	"github.com/foodtruckhq/truck-tracker/internal/route"
)

var (
	// ErrForbidden rejects actors who are neither admin nor the truck's manager.
	ErrForbidden = errors.New("not allowed to control this truck")
	// ErrInvalidTransition rejects advance-route from a state it is not defined for.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvalidLocation rejects manual coordinates outside WGS84 range.
	ErrInvalidLocation = errors.New("invalid location")
)

// RouteState is the result of a route state transition.
type RouteState struct {
	Status           models.Status `json:"status"`
	CurrentStopIndex int           `json:"currentStopIndex"`
}

// StatusLocation is the result of a manual status/location update.
type StatusLocation struct {
	Status       models.Status        `json:"status"`
	LiveLocation *models.LiveLocation `json:"liveLocation,omitempty"`
}

// LocationInput carries a partial manual location: only the provided fields
// are merged into the stored live location.
type LocationInput struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

// StatusLocationInput is the free-form operator update for managers without
// automated GPS.
type StatusLocationInput struct {
	Status       string         `json:"status,omitempty"`
	LiveLocation *LocationInput `json:"liveLocation,omitempty"`
}

// Service executes route control operations against the truck store.
type Service struct {
	store db.TruckStore
	pub   realtime.Publisher
	cache *cache.TruckCache
	locks *db.TruckLocks
	now   func() time.Time
}

// NewService wires a control service. The same lock set must be shared with
// the scheduler so writes to one truck are serialized.
func NewService(store db.TruckStore, pub realtime.Publisher, c *cache.TruckCache, locks *db.TruckLocks) *Service {
	return &Service{store: store, pub: pub, cache: c, locks: locks, now: time.Now}
}

// StartRoute puts a truck on its route: status MOVING, stop index clamped
// into the plan, display location snapped to the clamped stop. The plan must
// normalize to at least two stops.
func (s *Service) StartRoute(ctx context.Context, actor models.Actor, truckID string) (*RouteState, error) {
	unlock := s.locks.Lock(truckID)
	defer unlock()

	truck, err := s.authorized(ctx, actor, truckID)
	if err != nil {
		return nil, err
	}
	if truck.RoutePlan == nil {
		return nil, route.ErrInvalidRoutePlan
	}
	plan, err := route.Normalize(route.InputFromPlan(truck.RoutePlan))
	if err != nil {
		return nil, err
	}

	loc, idx := route.StopLocation(plan, truck.CurrentStopIndex)
	status := models.StatusMoving
	err = s.store.UpdateTruck(ctx, truckID, db.TruckUpdate{
		Status:           &status,
		CurrentStopIndex: &idx,
		CurrentLocation:  &loc,
		Location:         &loc,
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, truckID, map[string]interface{}{
		"status":           status,
		"currentStopIndex": idx,
		"currentLocation":  loc,
	})

	log.WithFields(log.Fields{"truck_id": truckID, "stop": idx}).Info("route started")
	return &RouteState{Status: status, CurrentStopIndex: idx}, nil
}

// AdvanceRoute moves a truck one step through its serving/moving cycle:
// a MOVING truck arrives at the next stop, a SERVING truck departs its
// current one, a CLOSED truck resumes. Anything else is rejected.
func (s *Service) AdvanceRoute(ctx context.Context, actor models.Actor, truckID string) (*RouteState, error) {
	unlock := s.locks.Lock(truckID)
	defer unlock()

	truck, err := s.authorized(ctx, actor, truckID)
	if err != nil {
		return nil, err
	}
	if !truck.RoutePlan.HasStops() {
		return nil, route.ErrInvalidRoutePlan
	}

	n := len(truck.RoutePlan.Stops)
	idx := truck.CurrentStopIndex
	upd := db.TruckUpdate{}
	var status models.Status

	switch truck.Status {
	case models.StatusMoving:
		// arrived at the next stop
		idx = (idx + 1) % n
		status = models.StatusServing
		loc, clamped := route.StopLocation(truck.RoutePlan, idx)
		idx = clamped
		upd.CurrentLocation = &loc
		upd.Location = &loc
	case models.StatusServing, models.StatusClosed:
		status = models.StatusMoving
	default:
		return nil, fmt.Errorf("%w: cannot advance from %s", ErrInvalidTransition, truck.Status)
	}

	upd.Status = &status
	upd.CurrentStopIndex = &idx
	if err := s.store.UpdateTruck(ctx, truckID, upd); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, truckID, map[string]interface{}{
		"status":           status,
		"currentStopIndex": idx,
	})

	log.WithFields(log.Fields{"truck_id": truckID, "status": status, "stop": idx}).Info("route advanced")
	return &RouteState{Status: status, CurrentStopIndex: idx}, nil
}

// StopRoute closes the truck regardless of its current state.
func (s *Service) StopRoute(ctx context.Context, actor models.Actor, truckID string) (*RouteState, error) {
	unlock := s.locks.Lock(truckID)
	defer unlock()

	truck, err := s.authorized(ctx, actor, truckID)
	if err != nil {
		return nil, err
	}

	status := models.StatusClosed
	if err := s.store.UpdateTruck(ctx, truckID, db.TruckUpdate{Status: &status}); err != nil {
		return nil, err
	}
	s.afterWrite(ctx, truckID, map[string]interface{}{"status": status})

	log.WithField("truck_id", truckID).Info("route stopped")
	return &RouteState{Status: status, CurrentStopIndex: truck.CurrentStopIndex}, nil
}

// SetStatusLocation applies a manual status and/or location override. A
// non-simulatable status takes the truck out of the scheduler's selection, so
// the override survives subsequent ticks until the operator re-opens the
// truck.
func (s *Service) SetStatusLocation(ctx context.Context, actor models.Actor, truckID string, in StatusLocationInput) (*StatusLocation, error) {
	unlock := s.locks.Lock(truckID)
	defer unlock()

	truck, err := s.authorized(ctx, actor, truckID)
	if err != nil {
		return nil, err
	}

	status := truck.Status
	upd := db.TruckUpdate{}
	if in.Status != "" {
		status, err = models.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		upd.Status = &status
	}

	live := truck.LiveLocation
	if in.LiveLocation != nil {
		merged := models.LiveLocation{}
		if live != nil {
			merged = *live
		}
		if in.LiveLocation.Lat != nil {
			merged.Lat = *in.LiveLocation.Lat
		}
		if in.LiveLocation.Lng != nil {
			merged.Lng = *in.LiveLocation.Lng
		}
		if !geo.ValidLatLng(merged.Lat, merged.Lng) {
			return nil, ErrInvalidLocation
		}
		merged.UpdatedAt = s.now()
		live = &merged
		upd.LiveLocation = live
	}

	if upd.Status == nil && upd.LiveLocation == nil {
		return &StatusLocation{Status: status, LiveLocation: live}, nil
	}
	if err := s.store.UpdateTruck(ctx, truckID, upd); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"status": status}
	if upd.LiveLocation != nil {
		fields["liveLocation"] = *live
		locEvent := realtime.LocationEvent{
			TruckID:          truckID,
			LiveLocation:     *live,
			Status:           status,
			CurrentStopIndex: truck.CurrentStopIndex,
		}
		if err := s.pub.Publish(realtime.TruckLocationTopic(truckID), locEvent); err != nil {
			log.WithError(err).WithField("truck_id", truckID).Warn("location publish failed")
		}
	}
	s.afterWrite(ctx, truckID, fields)

	log.WithFields(log.Fields{"truck_id": truckID, "status": status}).Info("status/location updated")
	return &StatusLocation{Status: status, LiveLocation: live}, nil
}

// CreateOrUpdateRoutePlan replaces a truck's plan wholesale after validating
// it. The stop index is clamped into the new plan's bounds and the display
// location recomputed, so a shorter plan never leaves a stale index behind.
// Invalid input fails the whole operation; it is never silently defaulted.
func (s *Service) CreateOrUpdateRoutePlan(ctx context.Context, actor models.Actor, truckID string, in route.PlanInput) (*models.RoutePlan, error) {
	plan, err := route.Normalize(in)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(truckID)
	defer unlock()

	truck, err := s.authorized(ctx, actor, truckID)
	if err != nil {
		return nil, err
	}

	loc, idx := route.StopLocation(plan, truck.CurrentStopIndex)
	err = s.store.UpdateTruck(ctx, truckID, db.TruckUpdate{
		RoutePlan:        plan,
		CurrentStopIndex: &idx,
		CurrentLocation:  &loc,
		Location:         &loc,
	})
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, truckID, map[string]interface{}{
		"routePlan":        *plan,
		"currentStopIndex": idx,
		"currentLocation":  loc,
	})

	log.WithFields(log.Fields{"truck_id": truckID, "stops": len(plan.Stops)}).Info("route plan replaced")
	return plan, nil
}

// ApplyDefaultRoutePlans bulk-assigns the demo plan to every truck that has
// no usable plan. Admin only; this is the one operation where defaulting is
// allowed.
func (s *Service) ApplyDefaultRoutePlans(ctx context.Context, actor models.Actor) (matched, modified int64, err error) {
	if actor.Role != models.RoleAdmin {
		return 0, 0, ErrForbidden
	}
	matched, modified, err = s.store.ApplyDefaultRoutePlan(ctx, route.DefaultPlan())
	if err != nil {
		return 0, 0, err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.WithError(err).Debug("cache invalidation failed")
	}
	log.WithFields(log.Fields{"matched": matched, "modified": modified}).Info("default route plans applied")
	return matched, modified, nil
}

// Deactivate takes a truck out of service entirely; the scheduler ignores
// inactive trucks.
func (s *Service) Deactivate(ctx context.Context, actor models.Actor, truckID string) error {
	return s.setActive(ctx, actor, truckID, false, models.StatusClosed)
}

// Reactivate puts a truck back in service.
func (s *Service) Reactivate(ctx context.Context, actor models.Actor, truckID string) error {
	return s.setActive(ctx, actor, truckID, true, models.StatusOpen)
}

func (s *Service) setActive(ctx context.Context, actor models.Actor, truckID string, active bool, status models.Status) error {
	unlock := s.locks.Lock(truckID)
	defer unlock()

	if _, err := s.authorized(ctx, actor, truckID); err != nil {
		return err
	}
	err := s.store.UpdateTruck(ctx, truckID, db.TruckUpdate{
		IsActive: &active,
		Status:   &status,
	})
	if err != nil {
		return err
	}
	s.afterWrite(ctx, truckID, map[string]interface{}{"isActive": active, "status": status})
	return nil
}

// GetTruck returns a truck snapshot for display, served through the cache.
func (s *Service) GetTruck(ctx context.Context, truckID string) (*models.Truck, error) {
	if cached, err := s.cache.Get(ctx, truckID); err == nil && cached != nil {
		return cached, nil
	}
	truck, err := s.store.FindTruckByID(ctx, truckID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, truckID, truck); err != nil {
		log.WithError(err).WithField("truck_id", truckID).Debug("cache set failed")
	}
	return truck, nil
}

// authorized fetches the truck and checks the actor may control it.
func (s *Service) authorized(ctx context.Context, actor models.Actor, truckID string) (*models.Truck, error) {
	truck, err := s.store.FindTruckByID(ctx, truckID)
	if err != nil {
		return nil, err
	}
	if !actor.CanControl(truck) {
		return nil, ErrForbidden
	}
	return truck, nil
}

// afterWrite invalidates the snapshot cache and publishes the changed fields
// on the global updates topic. Both are best-effort.
func (s *Service) afterWrite(ctx context.Context, truckID string, fields map[string]interface{}) {
	if err := s.cache.Invalidate(ctx, truckID); err != nil {
		log.WithError(err).WithField("truck_id", truckID).Debug("cache invalidation failed")
	}
	ev := realtime.UpdateEvent{TruckID: truckID, Fields: fields}
	if err := s.pub.Publish(realtime.TruckUpdatesTopic, ev); err != nil {
		log.WithError(err).WithField("truck_id", truckID).Warn("update publish failed")
	}
}

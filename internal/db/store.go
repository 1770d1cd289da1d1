package db

import (
	"context"
	"errors"

	"github.com/foodtruckhq/truck-tracker/internal/models"
)

// ErrTruckNotFound is returned when no truck matches the given id.
var ErrTruckNotFound = errors.New("truck not found")

// TruckUpdate is a partial update of the tracking-owned truck fields. Nil
// fields are left untouched; the whole update is applied as one document
// write.
type TruckUpdate struct {
	Status           *models.Status
	CurrentStopIndex *int
	LiveLocation     *models.LiveLocation
	CurrentLocation  *models.Location
	Location         *models.Location
	RoutePlan        *models.RoutePlan
	IsActive         *bool
}

// TruckStore defines the persistence operations the tracking engine needs
// from the truck collection.
type TruckStore interface {
	// FindSimulatable returns active trucks whose status is simulatable and
	// whose route plan has at least one stop.
	FindSimulatable(ctx context.Context) ([]models.Truck, error)
	// FindTruckByID returns a single truck with its status normalized to the
	// canonical vocabulary.
	FindTruckByID(ctx context.Context, id string) (*models.Truck, error)
	// UpdateTruck applies the non-nil fields of upd to one truck atomically.
	UpdateTruck(ctx context.Context, id string, upd TruckUpdate) error
	// ApplyDefaultRoutePlan bulk-assigns plan to every truck lacking a plan
	// with at least one stop, returning matched and modified counts.
	ApplyDefaultRoutePlan(ctx context.Context, plan *models.RoutePlan) (matched, modified int64, err error)
}

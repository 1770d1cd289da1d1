// Package tracker runs the live tracking loop: every tick it recomputes the
// planned position of each simulatable truck, persists material changes and
// fans them out.
package tracker

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/foodtruckhq/truck-tracker/internal/cache"
	"github.com/foodtruckhq/truck-tracker/internal/db"
	"github.com/foodtruckhq/truck-tracker/internal/geo"
	"github.com/foodtruckhq/truck-tracker/internal/models"
	"github.com/foodtruckhq/truck-tracker/internal/realtime"
	"github.com/foodtruckhq/truck-tracker/internal/route"
)

const (
	// DefaultInterval between ticks.
	DefaultInterval = 5 * time.Second
	// DefaultMinMoveMeters suppresses writes for movements below this distance.
	DefaultMinMoveMeters = 2.0
)

// Config tunes the scheduler.
type Config struct {
	Interval      time.Duration // tick period; DefaultInterval when zero
	MinMoveMeters float64       // movement threshold; DefaultMinMoveMeters when zero
	SpeedKmh      float64       // assumed travel speed; route.DefaultSpeedKmh when zero
}

// Scheduler drives the simulated positions of all active trucks.
type Scheduler struct {
	store   db.TruckStore
	pub     realtime.Publisher
	cache   *cache.TruckCache
	locks   *db.TruckLocks
	cfg     Config
	now     func() time.Time
	inTick  atomic.Bool
	stopped chan struct{}
	done    chan struct{}
}

// New wires a scheduler. The publisher and cache are injected; no global
// connection state is reached for.
func New(store db.TruckStore, pub realtime.Publisher, c *cache.TruckCache, locks *db.TruckLocks, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MinMoveMeters <= 0 {
		cfg.MinMoveMeters = DefaultMinMoveMeters
	}
	return &Scheduler{
		store:   store,
		pub:     pub,
		cache:   c,
		locks:   locks,
		cfg:     cfg,
		now:     time.Now,
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the tick loop in the background. The first tick runs
// immediately.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop halts the loop, letting an in-flight tick finish before returning.
func (s *Scheduler) Stop() {
	close(s.stopped)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	s.Tick(context.Background())
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopped:
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}

// Tick runs one pass over all simulatable trucks. If a previous tick is still
// running the call is skipped, not queued.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.inTick.CompareAndSwap(false, true) {
		log.Debug("tick still running, skipping")
		return
	}
	defer s.inTick.Store(false)

	trucks, err := s.store.FindSimulatable(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to list simulatable trucks")
		return
	}
	for _, t := range trucks {
		id := t.ID.Hex()
		if err := s.updateTruck(ctx, id); err != nil {
			// one bad truck never aborts the batch
			log.WithError(err).WithField("truck_id", id).Warn("truck position update failed")
		}
	}
}

func (s *Scheduler) updateTruck(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	// fresh read under the lock so the diff is never based on stale state
	truck, err := s.store.FindTruckByID(ctx, id)
	if err != nil {
		return err
	}
	if !truck.IsActive || !truck.Status.Simulatable() || !truck.RoutePlan.HasStops() {
		return nil
	}

	now := s.now()
	pos := route.PlannedPosition(truck.RoutePlan, now, route.Options{SpeedKmh: s.cfg.SpeedKmh})
	if pos == nil {
		return nil
	}

	moved := math.Inf(1)
	if truck.LiveLocation != nil {
		moved = geo.HaversineMeters(truck.LiveLocation.Lat, truck.LiveLocation.Lng, pos.Lat, pos.Lng)
	}
	statusChanged := truck.Status != pos.Status
	stopChanged := truck.CurrentStopIndex != pos.CurrentStopIndex
	if moved < s.cfg.MinMoveMeters && !statusChanged && !stopChanged {
		return nil
	}

	live := models.LiveLocation{Lat: pos.Lat, Lng: pos.Lng, UpdatedAt: now}
	err = s.store.UpdateTruck(ctx, id, db.TruckUpdate{
		Status:           &pos.Status,
		CurrentStopIndex: &pos.CurrentStopIndex,
		LiveLocation:     &live,
	})
	if err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.WithError(err).WithField("truck_id", id).Debug("cache invalidation failed")
	}
	s.publish(id, live, pos)

	log.WithFields(log.Fields{
		"truck_id": id,
		"lat":      pos.Lat,
		"lng":      pos.Lng,
		"status":   pos.Status,
		"stop":     pos.CurrentStopIndex,
	}).Debug("truck position updated")
	return nil
}

// publish fans the change out on both topics. Failures are logged only; the
// persisted state stands.
func (s *Scheduler) publish(id string, live models.LiveLocation, pos *route.Position) {
	locEvent := realtime.LocationEvent{
		TruckID:          id,
		LiveLocation:     live,
		Status:           pos.Status,
		CurrentStopIndex: pos.CurrentStopIndex,
	}
	if err := s.pub.Publish(realtime.TruckLocationTopic(id), locEvent); err != nil {
		log.WithError(err).WithField("truck_id", id).Warn("location publish failed")
	}
	updEvent := realtime.UpdateEvent{
		TruckID: id,
		Fields: map[string]interface{}{
			"liveLocation":     live,
			"status":           pos.Status,
			"currentStopIndex": pos.CurrentStopIndex,
		},
	}
	if err := s.pub.Publish(realtime.TruckUpdatesTopic, updEvent); err != nil {
		log.WithError(err).WithField("truck_id", id).Warn("update publish failed")
	}
}

package route

import (
	"math"
	"time"

	"github.com/foodtruckhq/truck-tracker/internal/geo"
	"github.com/foodtruckhq/truck-tracker/internal/models"
)

const (
	// DefaultSpeedKmh is the assumed travel speed between stops.
	DefaultSpeedKmh = 20.0

	// minTravelMinutes floors each travel leg to avoid zero-length segments
	// between coincident stops.
	minTravelMinutes = 0.1

	coordEpsilon = 1e-6
)

// Options tunes the position calculation.
type Options struct {
	// SpeedKmh is the assumed travel speed; DefaultSpeedKmh when zero.
	SpeedKmh float64
}

// Position is the computed simulated state of a truck at an instant.
type Position struct {
	Lat              float64
	Lng              float64
	Status           models.Status
	CurrentStopIndex int
}

// segment is one slice of the cyclic tour: either a stay at a stop or a
// travel leg between two consecutive stops.
type segment struct {
	stay     bool
	from     models.Stop
	to       models.Stop
	index    int // stay: this stop's index; travel: destination stop's index
	duration float64
}

// PlannedPosition computes where on its route plan a truck is at the given
// instant, along with its status and current stop index. It returns nil when
// the plan has fewer than two usable stops; every other degenerate input
// (unparseable timezone or window, zero-duration tour) resolves to the first
// stop so the background loop never halts on bad data.
func PlannedPosition(plan *models.RoutePlan, now time.Time, opts Options) *Position {
	if plan == nil {
		return nil
	}
	stops := usableStops(plan)
	if len(stops) < 2 {
		return nil
	}
	loop, loopIndex := closeLoop(stops)

	tz := plan.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	nowMin, nowErr := minutesOfDay(now, tz)
	startMin, startErr := parseHHMM(orDefault(plan.DailyStart, DefaultDailyStart))
	endMin, endErr := parseHHMM(orDefault(plan.DailyEnd, DefaultDailyEnd))
	if nowErr != nil || startErr != nil || endErr != nil {
		return parkedAtFirst(stops)
	}

	// Outside the daily window the truck is parked at its first stop.
	if nowMin < startMin || nowMin > endMin {
		return parkedAtFirst(stops)
	}

	speed := opts.SpeedKmh
	if speed <= 0 {
		speed = DefaultSpeedKmh
	}

	segments := buildSegments(loop, loopIndex, speed)
	total := 0.0
	for _, s := range segments {
		total += s.duration
	}
	if total <= 0 {
		return parkedAtFirst(stops)
	}

	// The tour loops continuously inside the operating window, however many
	// cycles fit.
	window := math.Max(1, endMin-startMin)
	elapsed := math.Mod(nowMin-startMin, window)
	elapsed = math.Mod(elapsed, total)

	for _, seg := range segments {
		if elapsed <= seg.duration {
			if seg.stay {
				return &Position{
					Lat:              seg.from.Lat,
					Lng:              seg.from.Lng,
					Status:           models.StatusServing,
					CurrentStopIndex: seg.index,
				}
			}
			t := 0.0
			if seg.duration > 0 {
				t = elapsed / seg.duration
			}
			lat, lng := geo.Lerp(seg.from.Lat, seg.from.Lng, seg.to.Lat, seg.to.Lng, t)
			return &Position{
				Lat:              lat,
				Lng:              lng,
				Status:           models.StatusMoving,
				CurrentStopIndex: seg.index,
			}
		}
		elapsed -= seg.duration
	}

	return parkedAtFirst(stops)
}

// StopLocation returns the coordinates of the stop at index, clamped into the
// plan's bounds. Used when manual control snaps a truck onto its plan.
func StopLocation(plan *models.RoutePlan, index int) (models.Location, int) {
	stops := usableStops(plan)
	if len(stops) == 0 {
		return models.Location{}, 0
	}
	if index < 0 {
		index = 0
	}
	if index >= len(stops) {
		index = len(stops) - 1
	}
	return models.Location{Lat: stops[index].Lat, Lng: stops[index].Lng}, index
}

// usableStops re-applies stop-level validation on read, since stored plans may
// predate current rules.
func usableStops(plan *models.RoutePlan) []models.Stop {
	if plan == nil {
		return nil
	}
	out := make([]models.Stop, 0, len(plan.Stops))
	for _, s := range plan.Stops {
		if s.Name == "" || !geo.ValidLatLng(s.Lat, s.Lng) {
			continue
		}
		if s.WaitTime < 1 {
			s.WaitTime = defaultWaitMinutes
		}
		out = append(out, s)
	}
	return out
}

// closeLoop appends the first stop when the last one is not already (within
// epsilon) the same point, making the tour cyclic without mutating the stored
// plan. The returned index slice maps each loop position back to the original
// stop index, so the appended closing stop reads as stop 0 again.
func closeLoop(stops []models.Stop) ([]models.Stop, []int) {
	idx := make([]int, len(stops))
	for i := range stops {
		idx[i] = i
	}
	first, last := stops[0], stops[len(stops)-1]
	if math.Abs(first.Lat-last.Lat) < coordEpsilon && math.Abs(first.Lng-last.Lng) < coordEpsilon {
		return stops, idx
	}
	loop := make([]models.Stop, 0, len(stops)+1)
	loop = append(loop, stops...)
	loop = append(loop, first)
	return loop, append(idx, 0)
}

func buildSegments(loop []models.Stop, loopIndex []int, speedKmh float64) []segment {
	segments := make([]segment, 0, 2*(len(loop)-1))
	for i := 0; i < len(loop)-1; i++ {
		a, b := loop[i], loop[i+1]
		segments = append(segments, segment{
			stay:     true,
			from:     a,
			index:    loopIndex[i],
			duration: float64(a.WaitTime),
		})
		distKm := geo.HaversineMeters(a.Lat, a.Lng, b.Lat, b.Lng) / 1000.0
		travelMin := math.Max(minTravelMinutes, distKm/speedKmh*60)
		segments = append(segments, segment{
			from:     a,
			to:       b,
			index:    loopIndex[i+1],
			duration: travelMin,
		})
	}
	return segments
}

func parkedAtFirst(stops []models.Stop) *Position {
	return &Position{
		Lat:              stops[0].Lat,
		Lng:              stops[0].Lng,
		Status:           models.StatusServing,
		CurrentStopIndex: 0,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

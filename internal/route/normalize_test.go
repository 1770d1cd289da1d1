package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtruckhq/truck-tracker/internal/models"
)

func fptr(v float64) *float64 { return &v }

func TestNormalizeValidPlan(t *testing.T) {
	plan, err := Normalize(PlanInput{
		Name:       " Morning Loop ",
		Timezone:   "Asia/Kolkata",
		DailyStart: "08:00",
		DailyEnd:   "12:00",
		Stops: []StopInput{
			{Name: "  Kanuru ", Lat: 16.4825, Lng: 80.6994, WaitTime: fptr(20)},
			{Name: "Benz Circle", Lat: 16.4995, Lng: 80.6466},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Morning Loop", plan.Name)
	assert.Equal(t, "08:00", plan.DailyStart)
	assert.Equal(t, "12:00", plan.DailyEnd)
	require.Len(t, plan.Stops, 2)
	assert.Equal(t, "Kanuru", plan.Stops[0].Name)
	assert.Equal(t, 20, plan.Stops[0].WaitTime)
	assert.Equal(t, 15, plan.Stops[1].WaitTime, "missing wait time defaults to 15")
}

func TestNormalizeDefaults(t *testing.T) {
	plan, err := Normalize(PlanInput{
		Stops: []StopInput{
			{Name: "A", Lat: 0, Lng: 0},
			{Name: "B", Lat: 1, Lng: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, plan.Timezone)
	assert.Equal(t, DefaultDailyStart, plan.DailyStart)
	assert.Equal(t, DefaultDailyEnd, plan.DailyEnd)
}

func TestNormalizeDropsInvalidStops(t *testing.T) {
	plan, err := Normalize(PlanInput{
		Stops: []StopInput{
			{Name: "A", Lat: 0, Lng: 0},
			{Name: "", Lat: 1, Lng: 1},                  // empty name
			{Name: "   ", Lat: 1, Lng: 1},               // blank name
			{Name: "C", Lat: 91, Lng: 0},                // lat out of range
			{Name: "D", Lat: 0, Lng: -181},              // lng out of range
			{Name: "E", Lat: math.NaN(), Lng: 0},        // non-finite
			{Name: "F", Lat: 0, Lng: math.Inf(1)},       // non-finite
			{Name: "B", Lat: 1, Lng: 1, WaitTime: fptr(5)},
		},
	})
	require.NoError(t, err)
	require.Len(t, plan.Stops, 2)
	assert.Equal(t, "A", plan.Stops[0].Name)
	assert.Equal(t, "B", plan.Stops[1].Name)
}

func TestNormalizeRejectsTooFewStops(t *testing.T) {
	_, err := Normalize(PlanInput{Stops: []StopInput{{Name: "A", Lat: 0, Lng: 0}}})
	assert.ErrorIs(t, err, ErrInvalidRoutePlan)

	_, err = Normalize(PlanInput{})
	assert.ErrorIs(t, err, ErrInvalidRoutePlan)

	// two candidates but only one survives
	_, err = Normalize(PlanInput{Stops: []StopInput{
		{Name: "A", Lat: 0, Lng: 0},
		{Name: "", Lat: 1, Lng: 1},
	}})
	assert.ErrorIs(t, err, ErrInvalidRoutePlan)
}

func TestNormalizeWaitTimeCoercion(t *testing.T) {
	tests := []struct {
		name     string
		stop     StopInput
		expected int
	}{
		{"explicit wait", StopInput{Name: "A", WaitTime: fptr(30)}, 30},
		{"legacy stayMin alias", StopInput{Name: "A", StayMin: fptr(25)}, 25},
		{"waitTime wins over alias", StopInput{Name: "A", WaitTime: fptr(10), StayMin: fptr(40)}, 10},
		{"absent", StopInput{Name: "A"}, 15},
		{"zero invalid", StopInput{Name: "A", WaitTime: fptr(0)}, 15},
		{"negative invalid", StopInput{Name: "A", WaitTime: fptr(-5)}, 15},
		{"NaN invalid", StopInput{Name: "A", WaitTime: fptr(math.NaN())}, 15},
		{"fractional truncated", StopInput{Name: "A", WaitTime: fptr(7.9)}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := PlanInput{Stops: []StopInput{tt.stop, {Name: "B", Lat: 1, Lng: 1}}}
			plan, err := Normalize(in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, plan.Stops[0].WaitTime)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize(PlanInput{
		Name:     "loop",
		Timezone: "Europe/Madrid",
		Stops: []StopInput{
			{Name: " A ", Lat: 40.4168, Lng: -3.7038},
			{Name: "B", Lat: 40.42, Lng: -3.70, WaitTime: fptr(8)},
		},
	})
	require.NoError(t, err)

	second, err := Normalize(InputFromPlan(first))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.Len(t, plan.Stops, 4)
	assert.Equal(t, DefaultTimezone, plan.Timezone)
	for _, s := range plan.Stops {
		assert.NotEmpty(t, s.Name)
		assert.GreaterOrEqual(t, s.WaitTime, 1)
	}

	// the default plan is already canonical
	normalized, err := Normalize(InputFromPlan(plan))
	require.NoError(t, err)
	assert.Equal(t, plan.Stops, normalized.Stops)
}

func TestDefaultPlanNotSharedState(t *testing.T) {
	a := DefaultPlan()
	a.Stops[0].Name = "mutated"
	b := DefaultPlan()
	assert.Equal(t, "Kanuru", b.Stops[0].Name)
}

func twoStopPlan(waitA, waitB int) *models.RoutePlan {
	return &models.RoutePlan{
		Timezone:   "UTC",
		DailyStart: "09:00",
		DailyEnd:   "11:00",
		Stops: []models.Stop{
			{Name: "A", Lat: 0, Lng: 0, WaitTime: waitA},
			{Name: "B", Lat: 0, Lng: 0.01, WaitTime: waitB},
		},
	}
}

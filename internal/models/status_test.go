package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Status
		wantErr  bool
	}{
		{"canonical open", "OPEN", StatusOpen, false},
		{"legacy active", "active", StatusOpen, false},
		{"lowercase open", "open", StatusOpen, false},
		{"preparing", "preparing", StatusPreparing, false},
		{"serving", "SERVING", StatusServing, false},
		{"sold_out underscore", "sold_out", StatusSoldOut, false},
		{"sold-out hyphen", "sold-out", StatusSoldOut, false},
		{"soldout joined", "SoldOut", StatusSoldOut, false},
		{"closed", "closed", StatusClosed, false},
		{"legacy inactive", "inactive", StatusClosed, false},
		{"legacy offline", "offline", StatusClosed, false},
		{"legacy maintenance", "maintenance", StatusClosed, false},
		{"moving", "MOVING", StatusMoving, false},
		{"legacy en_route", "en_route", StatusMoving, false},
		{"legacy en-route", "en-route", StatusMoving, false},
		{"legacy in_transit", "in_transit", StatusMoving, false},
		{"legacy in-transit", "in-transit", StatusMoving, false},
		{"surrounding whitespace", "  closed  ", StatusClosed, false},
		{"unknown", "parked", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusPreparing, StatusServing, StatusSoldOut, StatusClosed, StatusMoving} {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}
	assert.False(t, Status("active").Valid(), "aliases are not canonical")
	assert.False(t, Status("").Valid())
}

func TestSimulatableSpellings(t *testing.T) {
	assert.ElementsMatch(t, []string{
		"SERVING", "MOVING",
		"serving", "moving",
		"en_route", "en-route", "in_transit", "in-transit",
	}, SimulatableSpellings(), "every stored spelling that reads back as SERVING or MOVING, and nothing else")
}

func TestStatusSimulatable(t *testing.T) {
	assert.True(t, StatusServing.Simulatable())
	assert.True(t, StatusMoving.Simulatable())
	for _, s := range []Status{StatusOpen, StatusPreparing, StatusSoldOut, StatusClosed} {
		assert.False(t, s.Simulatable(), "expected %s not to be simulatable", s)
	}
}

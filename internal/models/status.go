package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the canonical operating status of a truck.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusPreparing Status = "PREPARING"
	StatusServing   Status = "SERVING"
	StatusSoldOut   Status = "SOLD_OUT"
	StatusClosed    Status = "CLOSED"
	StatusMoving    Status = "MOVING"
)

// ErrInvalidStatus is returned when a status string maps to no canonical value.
var ErrInvalidStatus = errors.New("invalid status")

// statusAliases maps legacy status spellings to the canonical vocabulary.
// Older truck documents and API clients still use these.
var statusAliases = map[string]Status{
	"open":       StatusOpen,
	"active":     StatusOpen,
	"preparing":  StatusPreparing,
	"serving":    StatusServing,
	"sold_out":   StatusSoldOut,
	"sold-out":   StatusSoldOut,
	"soldout":    StatusSoldOut,
	"closed":     StatusClosed,
	"inactive":   StatusClosed,
	"offline":    StatusClosed,
	"maintenance": StatusClosed,
	"moving":     StatusMoving,
	"en_route":   StatusMoving,
	"en-route":   StatusMoving,
	"in_transit": StatusMoving,
	"in-transit": StatusMoving,
}

// ParseStatus maps a raw status string (canonical or legacy alias, any case)
// to its canonical form. Unknown values are rejected.
func ParseStatus(raw string) (Status, error) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Valid reports whether s is one of the canonical status values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusPreparing, StatusServing, StatusSoldOut, StatusClosed, StatusMoving:
		return true
	default:
		return false
	}
}

// Simulatable reports whether a truck in this status is driven by the
// live tracking scheduler.
func (s Status) Simulatable() bool {
	return s == StatusServing || s == StatusMoving
}

// SimulatableSpellings returns every stored spelling (canonical or legacy)
// that maps to a simulatable status, for use in query filters.
func SimulatableSpellings() []string {
	out := []string{string(StatusServing), string(StatusMoving)}
	for alias, canonical := range statusAliases {
		if canonical.Simulatable() {
			out = append(out, alias)
		}
	}
	return out
}

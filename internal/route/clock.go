package route

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	// Plans carry IANA zone names; embed the tz database so lookups work in
	// scratch containers without /usr/share/zoneinfo.
	_ "time/tzdata"
)

// minutesOfDay converts an instant to minutes since local midnight in the
// given IANA zone, with sub-minute precision. All wall-clock conversion for
// the tour arithmetic goes through here so it can be tested with fixed
// instants.
func minutesOfDay(now time.Time, tz string) (float64, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	t := now.In(loc)
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0, nil
}

// parseHHMM parses an "HH:MM" string into minutes since midnight.
func parseHHMM(v string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid HH:MM value %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid HH:MM value %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid HH:MM value %q", v)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid HH:MM value %q", v)
	}
	return float64(h*60 + m), nil
}

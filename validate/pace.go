package validate

import (
	"fmt"
	"math"
)

// PlaceholderPace is returned alongside an error whenever a pace cannot
// be computed, so the display layer never sees NaN or Inf.
const PlaceholderPace = "0:00"

// Pace derives the minutes-per-kilometre pace from a distance and a
// duration string, formatted as M:SS. The duration may be in any form
// Duration accepts.
func Pace(distanceKm float64, duration string) (string, error) {
	if distanceKm <= 0 || math.IsNaN(distanceKm) {
		return PlaceholderPace, errf("pace", "invalid distance")
	}

	_, totalSeconds, err := Duration(duration)
	if err != nil {
		return PlaceholderPace, errf("pace", "invalid duration")
	}

	paceSeconds := float64(totalSeconds) / distanceKm
	if math.IsInf(paceSeconds, 0) || math.IsNaN(paceSeconds) {
		return PlaceholderPace, errf("pace", "cannot calculate pace")
	}

	mins := int(paceSeconds) / 60
	secs := int(paceSeconds) % 60

	return fmt.Sprintf("%d:%02d", mins, secs), nil
}

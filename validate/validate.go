// Package validate checks and normalizes raw external input before it
// is admitted into the training log. Input arrives from two untrusted
// sources, free-text manual entry and OCR extraction, so every entry
// point funnels through the same acceptance policy here.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/tobani/outrun/internal/timeutil"
)

const (
	// MaxDistanceKm is the largest plausible single-session distance.
	MaxDistanceKm = 200

	// MaxDurationSeconds caps a session at 24 hours.
	MaxDurationSeconds = 86400

	minHeartRate = 40
	maxHeartRate = 220

	minWeightKg = 30
	maxWeightKg = 300

	// maxDateAge is how far back a session date may lie.
	maxDateAge = 5 // years
)

// Error is a field-level validation failure. It is always recoverable
// and its message is meant to be shown to the user as-is.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Reason
}

func errf(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Distance parses a distance in kilometres. It rejects non-numeric
// input, non-positive values, and values above MaxDistanceKm.
func Distance(raw string) (float64, error) {
	km, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errf("distance", "must be a valid number")
	}

	if km <= 0 {
		return 0, errf("distance", "must be greater than 0")
	}

	if km > MaxDistanceKm {
		return 0, errf(
			"distance",
			"seems unreasonably high (max %dkm)",
			MaxDistanceKm,
		)
	}

	return km, nil
}

// Duration parses an elapsed time in HH:MM:SS, MM:SS, or SS form and
// returns the canonical HH:MM:SS string together with the total number
// of seconds. Minutes and seconds tokens must be below 60, the total
// span must be positive and no more than 24 hours.
func Duration(raw string) (normalized string, totalSeconds int, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, errf("duration", "is required")
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return "", 0, errf("duration", "format must be HH:MM:SS, MM:SS, or SS")
	}

	nums := make([]int, len(parts))

	for i, p := range parts {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil || n < 0 {
			return "", 0, errf("duration", "must contain valid numbers")
		}

		nums[i] = n
	}

	// Positional tokens beyond the leading one must be below 60.
	for _, n := range nums[1:] {
		if n >= 60 {
			return "", 0, errf(
				"duration",
				"minutes and seconds must be less than 60",
			)
		}
	}

	switch len(nums) {
	case 3:
		totalSeconds = nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		totalSeconds = nums[0]*60 + nums[1]
	default:
		totalSeconds = nums[0]
	}

	if totalSeconds == 0 {
		return "", 0, errf("duration", "must be greater than 0")
	}

	if totalSeconds > MaxDurationSeconds {
		return "", 0, errf("duration", "too long (max 24 hours)")
	}

	normalized = fmt.Sprintf(
		"%02d:%02d:%02d",
		totalSeconds/3600,
		(totalSeconds%3600)/60,
		totalSeconds%60,
	)

	return normalized, totalSeconds, nil
}

// HeartRate parses an optional average heart rate in BPM. Empty input
// is valid and reported as absent.
func HeartRate(raw string) (bpm int, present bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}

	bpm, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, false, errf("heart rate", "must be a valid number")
	}

	if bpm < minHeartRate {
		return 0, false, errf("heart rate", "too low (min %d BPM)", minHeartRate)
	}

	if bpm > maxHeartRate {
		return 0, false, errf("heart rate", "too high (max %d BPM)", maxHeartRate)
	}

	return bpm, true, nil
}

// Weight parses a body weight in kilograms.
func Weight(raw string) (float64, error) {
	kg, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errf("weight", "must be a valid number")
	}

	if kg <= 0 {
		return 0, errf("weight", "must be greater than 0")
	}

	if kg < minWeightKg {
		return 0, errf("weight", "seems too low (min %dkg)", minWeightKg)
	}

	if kg > maxWeightKg {
		return 0, errf("weight", "seems too high (max %dkg)", maxWeightKg)
	}

	return kg, nil
}

// Date parses a calendar date and returns it in YYYY-MM-DD form. Dates
// more than one day in the future are rejected, which still tolerates
// same-day timezone skew. Dates older than five years are rejected.
func Date(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errf("date", "is required")
	}

	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return "", errf("date", "invalid date format")
	}

	now := time.Now()

	tomorrow := timeutil.RoundToEnd(now.AddDate(0, 0, 1))
	if t.After(tomorrow) {
		return "", errf("date", "cannot be in the future")
	}

	oldest := now.AddDate(-maxDateAge, 0, 0)
	if t.Before(oldest) {
		return "", errf("date", "too old (max %d years ago)", maxDateAge)
	}

	return t.Format(timeutil.DateOnly), nil
}

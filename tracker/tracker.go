// Package tracker owns the canonical in-memory training log and
// reconciles the three sources that can replace it: the local snapshot
// at boot, remote subscription pushes, and imported transfer codes.
package tracker

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/transfer"
	"github.com/tobani/outrun/validate"
)

// ErrRunNotFound is returned when an edit names an id that is not in
// the log. The log is left unchanged.
var ErrRunNotFound = errors.New("run not found")

// RunFields are the validated fields for a new or edited run. Callers
// must have passed raw input through the validate package first; the
// tracker derives pace itself and never accepts one.
type RunFields struct {
	Date         string
	DistanceKm   float64
	Duration     string
	AvgHeartRate int
	Source       models.RunSource
	Type         models.RunType
}

// Tracker holds the canonical training log. It is not safe for
// concurrent use; the Controller serializes access to it.
type Tracker struct {
	state models.TrainingState
}

// New returns a Tracker seeded with the given state. The layout order
// is healed so newly-introduced section tags are always present.
func New(state models.TrainingState) *Tracker {
	state = state.Clone()
	state.LayoutOrder = HealLayout(state.LayoutOrder)

	return &Tracker{state: state}
}

// Snapshot returns a deep copy of the current state for persistence,
// encoding, and sync consumers.
func (t *Tracker) Snapshot() models.TrainingState {
	return t.state.Clone()
}

// AddRun assigns a fresh id, derives the pace, and prepends the run to
// the log.
func (t *Tracker) AddRun(f RunFields) models.Run {
	pace, _ := validate.Pace(f.DistanceKm, f.Duration)

	run := models.Run{
		ID:           uuid.NewString(),
		Date:         f.Date,
		DistanceKm:   f.DistanceKm,
		Duration:     f.Duration,
		Pace:         pace,
		AvgHeartRate: f.AvgHeartRate,
		Source:       f.Source,
		Type:         f.Type,
	}

	t.state.Runs = append([]models.Run{run}, t.state.Runs...)

	return run
}

// UpdateRun replaces all fields of the run with the given id and
// recomputes its pace. The id and source are immutable.
func (t *Tracker) UpdateRun(id string, f RunFields) (models.Run, error) {
	for i := range t.state.Runs {
		if t.state.Runs[i].ID != id {
			continue
		}

		pace, _ := validate.Pace(f.DistanceKm, f.Duration)

		r := &t.state.Runs[i]
		r.Date = f.Date
		r.DistanceKm = f.DistanceKm
		r.Duration = f.Duration
		r.Pace = pace
		r.AvgHeartRate = f.AvgHeartRate

		if f.Type != "" {
			r.Type = f.Type
		}

		return *r, nil
	}

	return models.Run{}, ErrRunNotFound
}

// AddWeight inserts a measurement and keeps the weight log sorted by
// date descending.
func (t *Tracker) AddWeight(date string, kg float64) models.WeightEntry {
	entry := models.WeightEntry{
		ID:       uuid.NewString(),
		Date:     date,
		WeightKg: kg,
	}

	t.state.Weights = append([]models.WeightEntry{entry}, t.state.Weights...)

	sort.SliceStable(t.state.Weights, func(i, j int) bool {
		return t.state.Weights[i].Date > t.state.Weights[j].Date
	})

	return entry
}

// SetTheme records the display preference. Theme is device-local and
// never synced to the remote document.
func (t *Tracker) SetTheme(theme models.Theme) {
	t.state.Theme = theme
}

// ReplaceRuns overwrites the entire run log. The stored copy is always
// non-nil so an intentionally emptied log still serializes as an empty
// list rather than an absent field.
func (t *Tracker) ReplaceRuns(runs []models.Run) {
	t.state.Runs = make([]models.Run, len(runs))
	copy(t.state.Runs, runs)
}

// ReplaceWeights overwrites the entire weight log.
func (t *Tracker) ReplaceWeights(weights []models.WeightEntry) {
	t.state.Weights = make([]models.WeightEntry, len(weights))
	copy(t.state.Weights, weights)
}

// ReplaceLayout overwrites the section order, healing it first.
func (t *Tracker) ReplaceLayout(layout []string) {
	t.state.LayoutOrder = HealLayout(layout)
}

// Apply overwrites state field-by-field from a decoded transfer
// payload. Fields absent from the payload are left untouched, which
// keeps partial transfers forward and backward compatible.
func (t *Tracker) Apply(p *transfer.Payload) {
	if p.Runs != nil {
		t.ReplaceRuns(*p.Runs)
	}

	if p.Weights != nil {
		t.ReplaceWeights(*p.Weights)
	}

	if p.Theme != nil {
		t.SetTheme(*p.Theme)
	}

	if p.LayoutOrder != nil {
		t.ReplaceLayout(*p.LayoutOrder)
	}
}

// SortedRuns returns the run log ordered by date descending for
// display. Insertion order in the log itself is not meaningful.
func SortedRuns(runs []models.Run) []models.Run {
	sorted := append([]models.Run(nil), runs...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	return sorted
}

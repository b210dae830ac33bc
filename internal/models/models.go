// Package models defines the canonical data types for the training log.
package models

// Theme is the display theme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// RunSource indicates how a run entry got into the log.
type RunSource string

const (
	SourceManual RunSource = "manual"
	SourceUpload RunSource = "upload"
)

// RunType classifies a training session.
type RunType string

const (
	TypeParkrun   RunType = "parkrun"
	TypeLong      RunType = "long"
	TypeEasy      RunType = "easy"
	TypeTreadmill RunType = "treadmill"
	TypeOther     RunType = "other"
)

// RunTypes lists every valid session classification.
var RunTypes = []RunType{
	TypeParkrun,
	TypeLong,
	TypeEasy,
	TypeTreadmill,
	TypeOther,
}

// Run is one completed training session. Pace is derived from distance
// and duration and is never set directly.
type Run struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	DistanceKm   float64   `json:"distanceKm"`
	Duration     string    `json:"duration"` // HH:MM:SS
	Pace         string    `json:"pace"`     // M:SS per km
	AvgHeartRate int       `json:"avgHeartRate,omitempty"`
	Source       RunSource `json:"source"`
	Type         RunType   `json:"type"`
}

// WeightEntry is one body-weight measurement.
type WeightEntry struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"` // YYYY-MM-DD
	WeightKg float64 `json:"weightKg"`
}

// Layout section tags. The records section was added after the first
// release, so persisted layouts may lack it (see tracker layout healing).
const (
	SectionStrategy = "strategy"
	SectionRecords  = "records"
	SectionCharts   = "charts"
	SectionHistory  = "history"
)

// DefaultLayout returns the seed presentation order for a fresh install.
func DefaultLayout() []string {
	return []string{SectionStrategy, SectionCharts, SectionHistory}
}

// SeedWeights returns the starting weight log for a fresh install.
func SeedWeights() []WeightEntry {
	return []WeightEntry{{ID: "0", Date: "2025-01-01", WeightKg: 74.5}}
}

// TrainingState is the full portable snapshot of the training log.
type TrainingState struct {
	Runs        []Run         `json:"runs"`
	Weights     []WeightEntry `json:"weights"`
	Theme       Theme         `json:"theme"`
	LayoutOrder []string      `json:"layoutOrder"`
}

// Clone returns a deep copy so that consumers never share mutable
// slices with the canonical state.
func (s TrainingState) Clone() TrainingState {
	c := TrainingState{Theme: s.Theme}

	if s.Runs != nil {
		c.Runs = make([]Run, len(s.Runs))
		copy(c.Runs, s.Runs)
	}

	if s.Weights != nil {
		c.Weights = make([]WeightEntry, len(s.Weights))
		copy(c.Weights, s.Weights)
	}

	if s.LayoutOrder != nil {
		c.LayoutOrder = make([]string, len(s.LayoutOrder))
		copy(c.LayoutOrder, s.LayoutOrder)
	}

	return c
}

// Goal is a named target distance with a deadline.
type Goal struct {
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Distance float64 `json:"distance"`
}

// Profile holds the static athlete profile that feeds coaching prompts.
type Profile struct {
	Name           string  `json:"name"`
	Condition      string  `json:"condition"`
	Baseline       string  `json:"baseline"`
	StartingWeight float64 `json:"starting_weight"`
	TargetWeight   float64 `json:"target_weight"`
	ShortTermGoal  Goal    `json:"short_term_goal"`
	LongTermGoal   Goal    `json:"long_term_goal"`
}

// Insight is the fixed-shape response from the coaching-text service.
type Insight struct {
	Summary        string `json:"summary"`
	ToneCheck      string `json:"toneCheck"`
	Recommendation string `json:"recommendation"`
	FocusArea      string `json:"focusArea"`
}

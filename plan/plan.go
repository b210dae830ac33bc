// Package plan holds the fixed multi-month training plan and resolves
// the week currently in effect.
package plan

import (
	"time"

	"github.com/tobani/outrun/internal/timeutil"
)

// Week is one planned training week.
type Week struct {
	Number     int
	StartDate  string // YYYY-MM-DD
	Phase      int
	ParkrunKm  float64
	LongRunKm  float64
	IsRecovery bool
	Milestone  string
}

// Plan is the full training block: four phases building from a 5k base
// to the half marathon, with a recovery week closing each mesocycle.
var Plan = []Week{
	// Phase 1: Jan - Mar (build to 10k)
	{Number: 1, StartDate: "2026-01-05", Phase: 1, ParkrunKm: 5, LongRunKm: 7},
	{Number: 2, StartDate: "2026-01-12", Phase: 1, ParkrunKm: 5, LongRunKm: 7.5},
	{Number: 3, StartDate: "2026-01-19", Phase: 1, ParkrunKm: 5, LongRunKm: 8},
	{Number: 4, StartDate: "2026-01-26", Phase: 1, ParkrunKm: 5, LongRunKm: 6, IsRecovery: true},
	{Number: 5, StartDate: "2026-02-02", Phase: 1, ParkrunKm: 5, LongRunKm: 8.5},
	{Number: 6, StartDate: "2026-02-09", Phase: 1, ParkrunKm: 5, LongRunKm: 9},
	{Number: 7, StartDate: "2026-02-16", Phase: 1, ParkrunKm: 5, LongRunKm: 9.5},
	{Number: 8, StartDate: "2026-02-23", Phase: 1, ParkrunKm: 5, LongRunKm: 7, IsRecovery: true},
	{Number: 9, StartDate: "2026-03-02", Phase: 1, ParkrunKm: 5, LongRunKm: 10, Milestone: "First 10k!"},
	{Number: 10, StartDate: "2026-03-09", Phase: 1, ParkrunKm: 5, LongRunKm: 10},
	{Number: 11, StartDate: "2026-03-16", Phase: 1, ParkrunKm: 5, LongRunKm: 10},
	{Number: 12, StartDate: "2026-03-23", Phase: 1, ParkrunKm: 5, LongRunKm: 8, IsRecovery: true},

	// Phase 2: Apr - Jun (extend to 15k)
	{Number: 13, StartDate: "2026-03-30", Phase: 2, ParkrunKm: 5, LongRunKm: 11},
	{Number: 14, StartDate: "2026-04-06", Phase: 2, ParkrunKm: 5, LongRunKm: 11.5},
	{Number: 15, StartDate: "2026-04-13", Phase: 2, ParkrunKm: 5, LongRunKm: 12},
	{Number: 16, StartDate: "2026-04-20", Phase: 2, ParkrunKm: 5, LongRunKm: 9, IsRecovery: true},
	{Number: 17, StartDate: "2026-04-27", Phase: 2, ParkrunKm: 5, LongRunKm: 12.5},
	{Number: 18, StartDate: "2026-05-04", Phase: 2, ParkrunKm: 5, LongRunKm: 13},
	{Number: 19, StartDate: "2026-05-11", Phase: 2, ParkrunKm: 5, LongRunKm: 13.5},
	{Number: 20, StartDate: "2026-05-18", Phase: 2, ParkrunKm: 5, LongRunKm: 10, IsRecovery: true},
	{Number: 21, StartDate: "2026-05-25", Phase: 2, ParkrunKm: 5, LongRunKm: 14},
	{Number: 22, StartDate: "2026-06-01", Phase: 2, ParkrunKm: 5, LongRunKm: 14.5},
	{Number: 23, StartDate: "2026-06-08", Phase: 2, ParkrunKm: 5, LongRunKm: 15, Milestone: "First 15k!"},
	{Number: 24, StartDate: "2026-06-15", Phase: 2, ParkrunKm: 5, LongRunKm: 11, IsRecovery: true},

	// Phase 3: Jul - Sep (build to 20k)
	{Number: 25, StartDate: "2026-06-22", Phase: 3, ParkrunKm: 5, LongRunKm: 15.5},
	{Number: 26, StartDate: "2026-06-29", Phase: 3, ParkrunKm: 5, LongRunKm: 16},
	{Number: 27, StartDate: "2026-07-06", Phase: 3, ParkrunKm: 5, LongRunKm: 16.5},
	{Number: 28, StartDate: "2026-07-13", Phase: 3, ParkrunKm: 5, LongRunKm: 12, IsRecovery: true},
	{Number: 29, StartDate: "2026-07-20", Phase: 3, ParkrunKm: 5, LongRunKm: 17},
	{Number: 30, StartDate: "2026-07-27", Phase: 3, ParkrunKm: 5, LongRunKm: 17.5},
	{Number: 31, StartDate: "2026-08-03", Phase: 3, ParkrunKm: 5, LongRunKm: 18},
	{Number: 32, StartDate: "2026-08-10", Phase: 3, ParkrunKm: 5, LongRunKm: 13, IsRecovery: true},
	{Number: 33, StartDate: "2026-08-17", Phase: 3, ParkrunKm: 5, LongRunKm: 18.5},
	{Number: 34, StartDate: "2026-08-24", Phase: 3, ParkrunKm: 5, LongRunKm: 19},
	{Number: 35, StartDate: "2026-08-31", Phase: 3, ParkrunKm: 5, LongRunKm: 20, Milestone: "Longest Run!"},
	{Number: 36, StartDate: "2026-09-07", Phase: 3, ParkrunKm: 5, LongRunKm: 14, IsRecovery: true},

	// Phase 4: Oct - Nov (race prep)
	{Number: 37, StartDate: "2026-09-14", Phase: 4, ParkrunKm: 5, LongRunKm: 18},
	{Number: 38, StartDate: "2026-09-21", Phase: 4, ParkrunKm: 5, LongRunKm: 19},
	{Number: 39, StartDate: "2026-09-28", Phase: 4, ParkrunKm: 5, LongRunKm: 15, IsRecovery: true},
	{Number: 40, StartDate: "2026-10-05", Phase: 4, ParkrunKm: 5, LongRunKm: 18},
	{Number: 41, StartDate: "2026-10-12", Phase: 4, ParkrunKm: 5, LongRunKm: 16},
	{Number: 42, StartDate: "2026-10-19", Phase: 4, ParkrunKm: 5, LongRunKm: 13},
	{Number: 43, StartDate: "2026-10-26", Phase: 4, ParkrunKm: 5, LongRunKm: 10},
	{Number: 44, StartDate: "2026-11-02", Phase: 4, ParkrunKm: 3, LongRunKm: 21.1, Milestone: "Half Marathon!"},
}

// CurrentWeek returns the plan week containing the given time, falling
// back to week one outside the plan's range.
func CurrentWeek(now time.Time) Week {
	for _, w := range Plan {
		start, err := time.ParseInLocation(
			timeutil.DateOnly,
			w.StartDate,
			now.Location(),
		)
		if err != nil {
			continue
		}

		end := start.AddDate(0, 0, 7)

		if !now.Before(start) && now.Before(end) {
			return w
		}
	}

	return Plan[0]
}

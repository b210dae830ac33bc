package plan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tobani/outrun/plan"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	return t
}

func TestPlanShape(t *testing.T) {
	assert.Len(t, plan.Plan, 44)

	// Week numbers are contiguous and starts are seven days apart.
	for i, w := range plan.Plan {
		assert.Equal(t, i+1, w.Number)

		if i == 0 {
			continue
		}

		prev := date(plan.Plan[i-1].StartDate)
		assert.Equal(t, prev.AddDate(0, 0, 7), date(w.StartDate))
	}

	final := plan.Plan[len(plan.Plan)-1]
	assert.Equal(t, 21.1, final.LongRunKm)
	assert.Equal(t, "Half Marathon!", final.Milestone)
}

func TestCurrentWeek(t *testing.T) {
	cases := []struct {
		name string
		now  string
		want int
	}{
		{name: "first day of the plan", now: "2026-01-05", want: 1},
		{name: "mid week", now: "2026-01-08", want: 1},
		{name: "rolls over on the next monday", now: "2026-01-12", want: 2},
		{name: "deep into phase three", now: "2026-08-20", want: 33},
		{name: "race week", now: "2026-11-05", want: 44},
		{name: "before the plan falls back", now: "2025-12-25", want: 1},
		{name: "after the plan falls back", now: "2026-12-01", want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := plan.CurrentWeek(date(tc.now))
			assert.Equal(t, tc.want, got.Number)
		})
	}
}

func TestRecoveryWeeksCutVolume(t *testing.T) {
	for i, w := range plan.Plan {
		if !w.IsRecovery || i == 0 {
			continue
		}

		assert.Less(
			t,
			w.LongRunKm,
			plan.Plan[i-1].LongRunKm,
			"week %d", w.Number,
		)
	}
}

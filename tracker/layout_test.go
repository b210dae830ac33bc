package tracker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/tracker"
)

func TestHealLayout(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "already complete",
			input: []string{"strategy", "records", "charts", "history"},
			want:  []string{"strategy", "records", "charts", "history"},
		},
		{
			name:  "empty falls back to default",
			input: nil,
			want:  []string{"strategy", "records", "charts", "history"},
		},
		{
			name:  "missing records inserted after strategy",
			input: []string{"strategy", "charts", "history"},
			want:  []string{"strategy", "records", "charts", "history"},
		},
		{
			name:  "custom order preserved around the insertion",
			input: []string{"history", "strategy", "charts"},
			want:  []string{"history", "strategy", "records", "charts"},
		},
		{
			name:  "anchor absent appends at the end",
			input: []string{"charts", "history"},
			want:  []string{"charts", "history", "records"},
		},
		{
			name:  "duplicates collapse",
			input: []string{"strategy", "strategy", "records", "charts", "history"},
			want:  []string{"strategy", "records", "charts", "history"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tracker.HealLayout(tc.input))
		})
	}
}

func TestHydrateWritesBackHealedLayout(t *testing.T) {
	state := models.TrainingState{
		Runs:        []models.Run{},
		Weights:     models.SeedWeights(),
		Theme:       models.ThemeLight,
		LayoutOrder: []string{"strategy", "charts", "history"},
	}

	db := newPersisterMock(state)
	ctrl := tracker.NewController(db, &syncerMock{}, "", discardLogger())

	assert.NoError(t, ctrl.Hydrate())

	assert.Equal(
		t,
		[]string{"strategy", "records", "charts", "history"},
		ctrl.Snapshot().LayoutOrder,
	)
	assert.Equal(t, 1, db.writes["layout"])

	// An already healed snapshot does not trigger a write.
	assert.NoError(t, ctrl.Hydrate())
	assert.Equal(t, 1, db.writes["layout"])
}

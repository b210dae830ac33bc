package transfer_test

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/transfer"
)

func sampleState() models.TrainingState {
	return models.TrainingState{
		Runs: []models.Run{
			{
				ID:           "run-1",
				Date:         "2026-02-14",
				DistanceKm:   5,
				Duration:     "00:28:30",
				Pace:         "5:42",
				AvgHeartRate: 152,
				Source:       models.SourceManual,
				Type:         models.TypeParkrun,
			},
			{
				ID:         "run-2",
				Date:       "2026-02-15",
				DistanceKm: 12.5,
				Duration:   "01:15:00",
				Pace:       "6:00",
				Source:     models.SourceUpload,
				Type:       models.TypeLong,
			},
		},
		Weights: []models.WeightEntry{
			{ID: "w-1", Date: "2026-02-10", WeightKg: 73.2},
		},
		Theme:       models.ThemeDark,
		LayoutOrder: []string{"charts", "strategy", "records", "history"},
	}
}

func TestRoundTrip(t *testing.T) {
	state := sampleState()

	token, err := transfer.Encode(state)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	payload, err := transfer.Decode(token)
	assert.NoError(t, err)

	assert.Empty(t, cmp.Diff(state.Runs, *payload.Runs))
	assert.Empty(t, cmp.Diff(state.Weights, *payload.Weights))
	assert.Equal(t, state.Theme, *payload.Theme)
	assert.Equal(t, state.LayoutOrder, *payload.LayoutOrder)
}

func TestDecodeFromLink(t *testing.T) {
	token, err := transfer.Encode(sampleState())
	assert.NoError(t, err)

	link := transfer.ShareLink("https://outrun.app/share", token)

	payload, err := transfer.Decode(link)
	assert.NoError(t, err)
	assert.Len(t, *payload.Runs, 2)
}

func TestDecodePartialPayload(t *testing.T) {
	// An older device may send only some top-level fields; the rest
	// must come back absent, not zeroed.
	token := base64.RawURLEncoding.EncodeToString(
		[]byte(`{"theme":"light"}`),
	)

	payload, err := transfer.Decode(token)
	assert.NoError(t, err)

	assert.Nil(t, payload.Runs)
	assert.Nil(t, payload.Weights)
	assert.Nil(t, payload.LayoutOrder)
	assert.Equal(t, models.ThemeLight, *payload.Theme)
}

func TestDecodeAcceptsPaddedTokens(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte(`{"theme":"dark"}`))

	payload, err := transfer.Decode(token)
	assert.NoError(t, err)
	assert.Equal(t, models.ThemeDark, *payload.Theme)
}

func TestDecodeRejectsCorruptTokens(t *testing.T) {
	valid, err := transfer.Encode(sampleState())
	assert.NoError(t, err)

	cases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "!!!not-base64!!!"},
		{name: "truncated", token: valid[:len(valid)/2]},
		{
			name: "not json",
			token: base64.RawURLEncoding.EncodeToString(
				[]byte("plain text"),
			),
		},
		{
			name: "wrong field type",
			token: base64.RawURLEncoding.EncodeToString(
				[]byte(`{"runs":"not-a-list"}`),
			),
		},
		{
			name: "unknown theme",
			token: base64.RawURLEncoding.EncodeToString(
				[]byte(`{"theme":"sepia"}`),
			),
		},
		{
			name: "run without id",
			token: base64.RawURLEncoding.EncodeToString(
				[]byte(`{"runs":[{"date":"2026-01-01"}]}`),
			),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transfer.Decode(tc.token)
			assert.ErrorIs(t, err, transfer.ErrCorruptCode)
		})
	}
}

func TestParseToken(t *testing.T) {
	assert.Equal(t, "abc123", transfer.ParseToken("  abc123 "))
	assert.Equal(
		t,
		"abc123",
		transfer.ParseToken("https://outrun.app/share?sync=abc123"),
	)
	assert.Equal(
		t,
		"abc123",
		transfer.ParseToken("https://outrun.app/share?foo=bar&sync=abc123"),
	)
}

package coach_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobani/outrun/coach"
	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/internal/timeutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completionServer fakes an OpenAI-compatible chat completions
// endpoint that always answers with the given content.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NotEmpty(t, r.Header.Get("Authorization"))

			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": content}},
				},
			}

			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}),
	)
}

func sampleProfile() models.Profile {
	return models.Profile{
		Name:      "Athlete",
		Condition: "Cerebral Palsy",
		Baseline:  "30 minute 5k",
		LongTermGoal: models.Goal{
			Name:     "Half Marathon",
			Date:     "2026-11-02",
			Distance: 21.1,
		},
	}
}

func sampleRun() models.Run {
	return models.Run{
		ID:         "run-1",
		Date:       "2026-02-14",
		DistanceKm: 5,
		Duration:   "00:28:30",
		Pace:       "5:42",
		Source:     models.SourceManual,
		Type:       models.TypeParkrun,
	}
}

func TestAdviceParsesFencedResponse(t *testing.T) {
	srv := completionServer(t, "Here you go:\n```json\n"+
		`{"summary":"Solid aerobic session.",`+
		`"toneCheck":"Stretch your calves tonight.",`+
		`"recommendation":"Active Recovery",`+
		`"focusArea":"Recovery"}`+
		"\n```")

	defer srv.Close()

	client := coach.NewClient("test-key", discardLogger())
	client.SetAPIURL(srv.URL)

	insight := client.Advice(
		context.Background(),
		sampleRun(),
		[]models.Run{sampleRun()},
		sampleProfile(),
	)

	assert.Equal(t, "Solid aerobic session.", insight.Summary)
	assert.Equal(t, "Active Recovery", insight.Recommendation)
	assert.Equal(t, "Recovery", insight.FocusArea)
}

func TestAdviceFallsBackOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)

	defer srv.Close()

	client := coach.NewClient("test-key", discardLogger())
	client.SetAPIURL(srv.URL)

	insight := client.Advice(
		context.Background(),
		sampleRun(),
		nil,
		sampleProfile(),
	)

	assert.Equal(t, coach.FallbackInsight(), insight)
}

func TestAdviceFallsBackOnGarbageContent(t *testing.T) {
	srv := completionServer(t, "sorry, I cannot help with that")

	defer srv.Close()

	client := coach.NewClient("test-key", discardLogger())
	client.SetAPIURL(srv.URL)

	insight := client.Advice(
		context.Background(),
		sampleRun(),
		nil,
		sampleProfile(),
	)

	assert.Equal(t, coach.FallbackInsight(), insight)
}

func TestExtractRun(t *testing.T) {
	srv := completionServer(t, `{"distanceKm":5.02,"duration":"00:28:30",`+
		`"pace":"5:40","avgHeartRate":152,"date":"2026-02-14"}`)

	defer srv.Close()

	client := coach.NewClient("test-key", discardLogger())
	client.SetAPIURL(srv.URL)

	ext, err := client.ExtractRun(context.Background(), []byte("fake-png"))
	assert.NoError(t, err)
	assert.Equal(t, 5.02, ext.DistanceKm)
	assert.Equal(t, "00:28:30", ext.Duration)
	assert.Equal(t, 152, ext.AvgHeartRate)
}

func TestExtractRunRejectsMalformedResponse(t *testing.T) {
	srv := completionServer(t, "not json at all")

	defer srv.Close()

	client := coach.NewClient("test-key", discardLogger())
	client.SetAPIURL(srv.URL)

	_, err := client.ExtractRun(context.Background(), []byte("fake-png"))

	var extErr *coach.ExtractionError

	assert.ErrorAs(t, err, &extErr)
}

func TestIngestExtraction(t *testing.T) {
	today := timeutil.Today()

	cases := []struct {
		name     string
		ext      coach.Extraction
		wantErr  bool
		wantType models.RunType
		wantDate string
		wantHR   int
	}{
		{
			name: "short run inferred as parkrun",
			ext: coach.Extraction{
				DistanceKm:   5,
				Duration:     "00:28:30",
				AvgHeartRate: 152,
				Date:         "2026-02-14",
			},
			wantType: models.TypeParkrun,
			wantDate: "2026-02-14",
			wantHR:   152,
		},
		{
			name: "long run keeps long type",
			ext: coach.Extraction{
				DistanceKm: 15,
				Duration:   "01:30:00",
				Date:       "2026-02-14",
			},
			wantType: models.TypeLong,
			wantDate: "2026-02-14",
		},
		{
			name: "missing date defaults to today",
			ext: coach.Extraction{
				DistanceKm: 5,
				Duration:   "00:28:30",
			},
			wantType: models.TypeParkrun,
			wantDate: today,
		},
		{
			name: "implausible heart rate dropped silently",
			ext: coach.Extraction{
				DistanceKm:   5,
				Duration:     "00:28:30",
				AvgHeartRate: 999,
				Date:         "2026-02-14",
			},
			wantType: models.TypeParkrun,
			wantDate: "2026-02-14",
			wantHR:   0,
		},
		{
			name:    "zero distance aborts",
			ext:     coach.Extraction{Duration: "00:28:30"},
			wantErr: true,
		},
		{
			name:    "garbage duration aborts",
			ext:     coach.Extraction{DistanceKm: 5, Duration: "fast"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := coach.IngestExtraction(tc.ext)

			if tc.wantErr {
				var extErr *coach.ExtractionError

				assert.ErrorAs(t, err, &extErr)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.wantType, fields.Type)
			assert.Equal(t, tc.wantDate, fields.Date)
			assert.Equal(t, tc.wantHR, fields.AvgHeartRate)
			assert.Equal(t, models.SourceUpload, fields.Source)
		})
	}
}

func TestFallbackInsightIsUsable(t *testing.T) {
	insight := coach.FallbackInsight()

	assert.NotEmpty(t, insight.Summary)
	assert.NotEmpty(t, insight.Recommendation)
	assert.NotEmpty(t, insight.FocusArea)
}

func TestAdviceTimesOutAgainstHungServer(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			// Drain the body so the server starts its background
			// read; otherwise a client disconnect never cancels
			// r.Context() and srv.Close blocks forever.
			_, _ = io.Copy(io.Discard, r.Body)
			<-r.Context().Done()
		}),
	)

	defer srv.Close()

	client := coach.NewClient("test-key", discardLogger())
	client.SetAPIURL(srv.URL)

	ctx, cancel := context.WithTimeout(
		context.Background(),
		50*time.Millisecond,
	)
	defer cancel()

	insight := client.Advice(ctx, sampleRun(), nil, sampleProfile())
	assert.Equal(t, coach.FallbackInsight(), insight)
}

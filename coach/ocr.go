package coach

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/internal/timeutil"
	"github.com/tobani/outrun/tracker"
	"github.com/tobani/outrun/validate"
)

// parkrunThresholdKm separates short parkrun-style sessions from long
// runs when inferring the type of an uploaded screenshot.
const parkrunThresholdKm = 6

// ExtractionError means the OCR service produced implausible or
// unparseable data for a screenshot. The ingestion of that image is
// aborted; nothing enters the log.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "screenshot extraction failed: " + e.Reason
}

// Extraction is the best-effort partial run the OCR service returns.
// Fields may be absent or wrong; none are trusted until validated.
type Extraction struct {
	DistanceKm   float64 `json:"distanceKm"`
	Duration     string  `json:"duration"`
	Pace         string  `json:"pace"`
	AvgHeartRate int     `json:"avgHeartRate"`
	Date         string  `json:"date"`
}

const extractPrompt = `Act as an elite OCR engine for running-app screenshots. Extract the data precisely.

Context:
- "Distance" is usually shown in large text.
- "Moving Time" or "Time" is the duration.
- If units are in miles (mi), convert them to kilometers (km) (1 mi = 1.60934 km).

Required JSON schema:
{
  "distanceKm": number,
  "duration": "HH:MM:SS",
  "pace": "MM:SS",
  "avgHeartRate": number,
  "date": "YYYY-MM-DD"
}

If a piece of data is missing, omit the field. Return ONLY the JSON object.`

// ExtractRun sends a screenshot to the extraction service and returns
// whatever partial run data it could read.
func (c *Client) ExtractRun(
	ctx context.Context,
	image []byte,
) (Extraction, error) {
	parts := []contentPart{
		{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: "data:image/png;base64," +
					base64.StdEncoding.EncodeToString(image),
			},
		},
		{Type: "text", Text: extractPrompt},
	}

	text, err := c.chat(ctx, parts)
	if err != nil {
		return Extraction{}, &ExtractionError{Reason: err.Error()}
	}

	var ext Extraction

	if err := json.Unmarshal([]byte(cleanJSON(text)), &ext); err != nil {
		return Extraction{}, &ExtractionError{
			Reason: "service returned malformed data",
		}
	}

	return ext, nil
}

// IngestExtraction turns raw OCR output into validated run fields. A
// rejected distance or duration aborts the whole ingestion with a
// user-visible reason rather than admitting a zero or garbage run.
// A missing date defaults to today; heart rate is optional.
func IngestExtraction(ext Extraction) (tracker.RunFields, error) {
	km, err := validate.Distance(fmt.Sprintf("%g", ext.DistanceKm))
	if err != nil {
		return tracker.RunFields{}, &ExtractionError{Reason: err.Error()}
	}

	duration, _, err := validate.Duration(ext.Duration)
	if err != nil {
		return tracker.RunFields{}, &ExtractionError{Reason: err.Error()}
	}

	date := ext.Date
	if date == "" {
		date = timeutil.Today()
	}

	date, err = validate.Date(date)
	if err != nil {
		return tracker.RunFields{}, &ExtractionError{Reason: err.Error()}
	}

	fields := tracker.RunFields{
		Date:       date,
		DistanceKm: km,
		Duration:   duration,
		Source:     models.SourceUpload,
		Type:       models.TypeLong,
	}

	if km < parkrunThresholdKm {
		fields.Type = models.TypeParkrun
	}

	if ext.AvgHeartRate != 0 {
		bpm, present, err := validate.HeartRate(
			fmt.Sprintf("%d", ext.AvgHeartRate),
		)
		if err == nil && present {
			fields.AvgHeartRate = bpm
		}
	}

	return fields, nil
}

// Package coach talks to the external generative-text service for
// coaching advice and run-screenshot extraction. Both calls are
// best-effort collaborators: coaching failures fall back to a canned
// local insight, and extracted fields are never trusted until they
// pass validation.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tobani/outrun/internal/models"
)

const (
	// DefaultAPIURL is an OpenAI-compatible chat completions endpoint.
	DefaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"

	DefaultModel = "llama-3.3-70b-versatile"
)

var errEmptyResponse = errors.New("empty response from coaching service")

// Client calls the generative-text service.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a coaching client for the given API key.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: DefaultAPIURL,
		model:  DefaultModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// SetAPIURL overrides the chat completions endpoint.
func (c *Client) SetAPIURL(u string) {
	c.apiURL = u
}

// SetModel overrides the model used for completions.
func (c *Client) SetModel(model string) {
	c.model = model
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// chat sends the given message parts and returns the raw completion.
func (c *Client) chat(ctx context.Context, parts []contentPart) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: parts},
		},
		Temperature: 0.4,
		MaxTokens:   1024,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.apiURL,
		bytes.NewReader(jsonData),
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var chatResp chatResponse

	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf(
			"coaching service error: %s",
			chatResp.Error.Message,
		)
	}

	if len(chatResp.Choices) == 0 ||
		chatResp.Choices[0].Message.Content == "" {
		return "", errEmptyResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}

// cleanJSON strips markdown fences or conversational filler around a
// JSON object by slicing from the first '{' to the last '}'.
func cleanJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// FallbackInsight is returned whenever the coaching service cannot be
// reached or returns garbage, so a failed call never reaches the user
// as an error.
func FallbackInsight() models.Insight {
	return models.Insight{
		Summary:        "Run logged successfully.",
		ToneCheck:      "Coaching service offline. Monitor your physical stiffness manually today.",
		Recommendation: "Standard recovery protocol.",
		FocusArea:      "Recovery",
	}
}

// Advice requests a coaching insight for the most recent run given the
// run history and athlete profile. It always returns a usable insight.
func (c *Client) Advice(
	ctx context.Context,
	recent models.Run,
	history []models.Run,
	profile models.Profile,
) models.Insight {
	prompt := fmt.Sprintf(`Coach persona: expert in adaptive running and %s.
Athlete: %s, baseline %s, goal: %s (%gkm) on %s.

Analyze the latest session:
Date: %s, Distance: %gkm, Duration: %s, Pace: %s/km. Sessions logged so far: %d.

Respond with only a JSON object of this shape:
{
  "summary": "short 1-sentence impact of this run",
  "toneCheck": "specific advice for stiffness/fatigue today",
  "recommendation": "next session type (Rest, Active Recovery, Threshold)",
  "focusArea": "one of: Recovery, Endurance, Speed, Mobility"
}`,
		profile.Condition,
		profile.Name,
		profile.Baseline,
		profile.LongTermGoal.Name,
		profile.LongTermGoal.Distance,
		profile.LongTermGoal.Date,
		recent.Date,
		recent.DistanceKm,
		recent.Duration,
		recent.Pace,
		len(history),
	)

	text, err := c.chat(ctx, []contentPart{{Type: "text", Text: prompt}})
	if err != nil {
		c.logger.Error("coaching advice failed", slog.Any("error", err))
		return FallbackInsight()
	}

	var insight models.Insight

	if err := json.Unmarshal([]byte(cleanJSON(text)), &insight); err != nil {
		c.logger.Error("coaching response malformed", slog.Any("error", err))
		return FallbackInsight()
	}

	if insight.Summary == "" {
		return FallbackInsight()
	}

	return insight
}

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultPollInterval = 5 * time.Second

var errUnexpectedStatus = errors.New("unexpected response status")

// Client is a Syncer backed by a JSON document endpoint. Each identity
// owns a single document at <endpoint>/users/<id>; PATCH merges the
// given fields into it and the server stamps lastUpdated.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option modifies a Client.
type Option func(*Client)

// WithPollInterval overrides how often the subscription polls the
// remote document.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a Syncer for the given document endpoint.
func NewClient(endpoint string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       logger,
		pollInterval: defaultPollInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// New returns the configured Syncer: a document Client when an endpoint
// is set, otherwise the local-only Noop.
func New(endpoint string, logger *slog.Logger, opts ...Option) Syncer {
	if endpoint == "" {
		return Noop{}
	}

	return NewClient(endpoint, logger, opts...)
}

func (c *Client) docURL(identityID string) string {
	return c.endpoint + "/users/" + url.PathEscape(identityID)
}

// Push merges the given fields into the identity's remote document.
func (c *Client) Push(
	ctx context.Context,
	identityID string,
	doc Document,
) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding sync document: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPatch,
		c.docURL(identityID),
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cloud sync: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("cloud sync: %w: %s", errUnexpectedStatus, resp.Status)
	}

	return nil
}

// fetch retrieves the identity's current remote document. A 404 means
// the document does not exist yet and is not an error.
func (c *Client) fetch(
	ctx context.Context,
	identityID string,
) (*Document, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.docURL(identityID),
		nil,
	)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", errUnexpectedStatus, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var doc Document

	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decoding sync document: %w", err)
	}

	return &doc, nil
}

// Subscribe polls the remote document and invokes onChange with the
// full document content whenever its lastUpdated stamp advances.
// Callbacks stop as soon as the returned unsubscribe function runs.
func (c *Client) Subscribe(
	ctx context.Context,
	identityID string,
	onChange func(Document),
) (UnsubscribeFunc, error) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		var lastSeen time.Time

		for {
			doc, err := c.fetch(ctx, identityID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}

				c.logger.Error(
					"remote subscription poll failed",
					slog.String("identity", identityID),
					slog.Any("error", err),
				)
			} else if doc != nil && doc.LastUpdated.After(lastSeen) {
				lastSeen = doc.LastUpdated

				if ctx.Err() != nil {
					return
				}

				onChange(*doc)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return UnsubscribeFunc(cancel), nil
}

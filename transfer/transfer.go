// Package transfer encodes the training log into a compact, URL-safe
// token for manual cross-device migration, and decodes such tokens back
// into a partial state payload.
package transfer

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tobani/outrun/internal/models"
)

// QueryParam is the URL query parameter that carries a transfer token
// in a shareable link.
const QueryParam = "sync"

// ErrCorruptCode indicates a transfer token that cannot be decoded into
// a well-formed payload. The existing log is never touched when this is
// returned.
var ErrCorruptCode = errors.New("transfer code is corrupt or truncated")

// Payload is a decoded transfer token. Each field is independently
// optional so that partial transfers remain forward and backward
// compatible: absent fields leave the receiving log untouched.
type Payload struct {
	Runs        *[]models.Run         `json:"runs,omitempty"`
	Weights     *[]models.WeightEntry `json:"weights,omitempty"`
	Theme       *models.Theme         `json:"theme,omitempty"`
	LayoutOrder *[]string             `json:"layoutOrder,omitempty"`
}

// Encode serializes the full training state into a token suitable for a
// URL query parameter or manual copy-paste.
func Encode(state models.TrainingState) (string, error) {
	b, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encoding transfer state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ShareLink embeds a token into a shareable URL.
func ShareLink(baseURL, token string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "?" + QueryParam + "=" + token
	}

	q := u.Query()
	q.Set(QueryParam, token)
	u.RawQuery = q.Encode()

	return u.String()
}

// ParseToken accepts either a bare token or a full URL carrying the
// token as a query parameter, and returns the bare token.
func ParseToken(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err == nil {
			if tok := u.Query().Get(QueryParam); tok != "" {
				return tok
			}
		}
	}

	return raw
}

// Decode reverses Encode. The input may be a bare token or a URL. A
// token that cannot be base64-decoded, is not valid JSON, or whose
// fields do not match the expected shape yields ErrCorruptCode; absent
// top-level fields are fine.
func Decode(raw string) (*Payload, error) {
	token := ParseToken(raw)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrCorruptCode)
	}

	b, err := decodeBase64(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptCode, "invalid encoding")
	}

	var p Payload

	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptCode, "malformed payload")
	}

	if err := checkPayload(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

// decodeBase64 tries the canonical raw-URL alphabet first, then the
// padded and standard variants so hand-copied tokens survive.
func decodeBase64(token string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	}

	var err error

	for _, enc := range encodings {
		var b []byte

		b, err = enc.DecodeString(token)
		if err == nil {
			return b, nil
		}
	}

	return nil, err
}

// checkPayload rejects decoded payloads whose present fields carry
// values that could not have come from a valid training state. Decoded
// input is untrusted; structural JSON parsing alone is not enough.
func checkPayload(p *Payload) error {
	if p.Theme != nil {
		switch *p.Theme {
		case models.ThemeDark, models.ThemeLight:
		default:
			return fmt.Errorf("%w: unknown theme %q", ErrCorruptCode, *p.Theme)
		}
	}

	if p.Runs != nil {
		for _, r := range *p.Runs {
			if r.ID == "" {
				return fmt.Errorf("%w: run entry without id", ErrCorruptCode)
			}
		}
	}

	if p.Weights != nil {
		for _, w := range *p.Weights {
			if w.ID == "" {
				return fmt.Errorf("%w: weight entry without id", ErrCorruptCode)
			}
		}
	}

	return nil
}

// Package store persists training-log snapshots to a local BoltDB
// database. Each logical piece of state (runs, weights, layout, theme)
// lives under its own key so a corrupt value only loses that piece.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/tobani/outrun/internal/models"
)

var errOutrunRunning = errors.New(
	"is Outrun already running? Only one instance can be active at a time",
)

const stateBucket = "state"

// Keys within the state bucket. Each holds an independently-serialized
// JSON value.
var (
	keyRuns    = []byte("runs")
	keyWeights = []byte("weights")
	keyLayout  = []byte("layout")
	keyTheme   = []byte("theme")
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

func (c *Client) put(key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put(key, value)
	})
}

// SaveRuns overwrites the persisted run log.
func (c *Client) SaveRuns(runs []models.Run) error {
	return c.put(keyRuns, runs)
}

// SaveWeights overwrites the persisted weight log.
func (c *Client) SaveWeights(weights []models.WeightEntry) error {
	return c.put(keyWeights, weights)
}

// SaveLayout overwrites the persisted section order.
func (c *Client) SaveLayout(layout []string) error {
	return c.put(keyLayout, layout)
}

// SaveTheme overwrites the persisted theme preference.
func (c *Client) SaveTheme(theme models.Theme) error {
	return c.put(keyTheme, theme)
}

// SaveState persists the entire snapshot in a single transaction.
func (c *Client) SaveState(state models.TrainingState) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(stateBucket))

		pairs := []struct {
			key []byte
			val any
		}{
			{keyRuns, state.Runs},
			{keyWeights, state.Weights},
			{keyLayout, state.LayoutOrder},
			{keyTheme, state.Theme},
		}

		for _, p := range pairs {
			value, err := json.Marshal(p.val)
			if err != nil {
				return err
			}

			if err := b.Put(p.key, value); err != nil {
				return err
			}
		}

		return nil
	})
}

// Load reads the persisted snapshot. A missing or corrupt value falls
// back to its documented default: an empty run log, the seed weight
// entry, the default section order, and the light theme.
func (c *Client) Load() (models.TrainingState, error) {
	state := models.TrainingState{
		Runs:        []models.Run{},
		Weights:     models.SeedWeights(),
		Theme:       models.ThemeLight,
		LayoutOrder: models.DefaultLayout(),
	}

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(stateBucket))

		if v := b.Get(keyRuns); v != nil {
			var runs []models.Run
			if json.Unmarshal(v, &runs) == nil && runs != nil {
				state.Runs = runs
			}
		}

		if v := b.Get(keyWeights); v != nil {
			var weights []models.WeightEntry
			if json.Unmarshal(v, &weights) == nil && weights != nil {
				state.Weights = weights
			}
		}

		if v := b.Get(keyLayout); v != nil {
			var layout []string
			if json.Unmarshal(v, &layout) == nil && len(layout) > 0 {
				state.LayoutOrder = layout
			}
		}

		if v := b.Get(keyTheme); v != nil {
			var theme models.Theme
			if json.Unmarshal(v, &theme) == nil {
				if theme == models.ThemeDark || theme == models.ThemeLight {
					state.Theme = theme
				}
			}
		}

		return nil
	})

	return state, err
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errOutrunRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}

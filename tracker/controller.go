package tracker

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tobani/outrun/cloud"
	"github.com/tobani/outrun/internal/models"
	"github.com/tobani/outrun/transfer"
)

const pushTimeout = 10 * time.Second

// Persister snapshots the training log to durable local storage. It is
// invoked on every state change; local storage is the durable fallback
// of record regardless of remote reachability.
type Persister interface {
	Load() (models.TrainingState, error)
	SaveState(models.TrainingState) error
	SaveRuns([]models.Run) error
	SaveWeights([]models.WeightEntry) error
	SaveLayout([]string) error
	SaveTheme(models.Theme) error
}

// Controller orchestrates the training log against its three incoming
// state sources, highest precedence first: an explicit transfer-code
// import, the remote subscription while linked, and the local snapshot
// applied once at boot. Local mutations always persist locally and
// push to the remote when an identity is linked.
//
// Two devices editing concurrently can each overwrite the other's most
// recent change; resolution is last callback applied wins.
type Controller struct {
	mu       sync.Mutex
	tracker  *Tracker
	db       Persister
	syncer   cloud.Syncer
	identity string
	logger   *slog.Logger
	pushes   sync.WaitGroup
}

// NewController wires the record store to its persistence and sync
// collaborators. identityID may be empty, which disables remote sync.
func NewController(
	db Persister,
	syncer cloud.Syncer,
	identityID string,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		tracker:  New(models.TrainingState{}),
		db:       db,
		syncer:   syncer,
		identity: identityID,
		logger:   logger,
	}
}

// Hydrate applies the local snapshot as the baseline state. It runs
// once, at startup, before any other source can be applied. If layout
// healing changed the persisted order, the healed order is written
// back immediately.
func (c *Controller) Hydrate() error {
	state, err := c.db.Load()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker = New(state)

	if healed := c.tracker.Snapshot().LayoutOrder; !slices.Equal(
		healed,
		state.LayoutOrder,
	) {
		return c.db.SaveLayout(healed)
	}

	return nil
}

// Snapshot returns a read-only copy of the canonical state.
func (c *Controller) Snapshot() models.TrainingState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tracker.Snapshot()
}

// Linked reports whether a remote identity session is present.
func (c *Controller) Linked() bool {
	return c.identity != ""
}

// LogRun admits a validated run into the log, persists the run log,
// and pushes it to the remote document when linked.
func (c *Controller) LogRun(f RunFields) (models.Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run := c.tracker.AddRun(f)

	runs := c.tracker.Snapshot().Runs

	if err := c.db.SaveRuns(runs); err != nil {
		return run, err
	}

	c.push(cloud.Document{Runs: &runs})

	return run, nil
}

// EditRun replaces the fields of an existing run. Editing an unknown
// id returns ErrRunNotFound and leaves the log unchanged.
func (c *Controller) EditRun(id string, f RunFields) (models.Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run, err := c.tracker.UpdateRun(id, f)
	if err != nil {
		return run, err
	}

	runs := c.tracker.Snapshot().Runs

	if err := c.db.SaveRuns(runs); err != nil {
		return run, err
	}

	c.push(cloud.Document{Runs: &runs})

	return run, nil
}

// LogWeight admits a validated weight measurement.
func (c *Controller) LogWeight(
	date string,
	kg float64,
) (models.WeightEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.tracker.AddWeight(date, kg)

	weights := c.tracker.Snapshot().Weights

	if err := c.db.SaveWeights(weights); err != nil {
		return entry, err
	}

	c.push(cloud.Document{Weights: &weights})

	return entry, nil
}

// SetTheme records the display preference locally. Theme never syncs.
func (c *Controller) SetTheme(theme models.Theme) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker.SetTheme(theme)

	return c.db.SaveTheme(theme)
}

// Export encodes the full current state into a transfer token.
func (c *Controller) Export() (string, error) {
	return transfer.Encode(c.Snapshot())
}

// Import decodes a transfer token or shared link and unconditionally
// overwrites the corresponding fields of the log. An explicit import
// always wins over existing local and remote state. A corrupt token is
// rejected before any state is touched.
func (c *Controller) Import(raw string) error {
	payload, err := transfer.Decode(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker.Apply(payload)

	state := c.tracker.Snapshot()

	if err := c.db.SaveState(state); err != nil {
		return err
	}

	// The whole imported state is pushed, including any list the token
	// emptied, so the importing device's copy becomes canonical.
	c.push(cloud.Document{
		Runs:        &state.Runs,
		Weights:     &state.Weights,
		LayoutOrder: &state.LayoutOrder,
	})

	return nil
}

// PushAll sends the full current log (minus theme) to the remote
// document. Used by the explicit sync command and after an import.
func (c *Controller) PushAll() {
	state := c.Snapshot()

	c.push(cloud.Document{
		Runs:        &state.Runs,
		Weights:     &state.Weights,
		LayoutOrder: &state.LayoutOrder,
	})
}

// Subscribe establishes the live remote feed. While subscribed, every
// remote change overwrites the runs, weights, and layout fields of the
// local log. The returned unsubscribe function must be called when the
// session ends so late callbacks cannot resurrect stale state.
func (c *Controller) Subscribe(
	ctx context.Context,
) (cloud.UnsubscribeFunc, error) {
	if !c.Linked() {
		return func() {}, nil
	}

	return c.syncer.Subscribe(ctx, c.identity, c.applyRemote)
}

// applyRemote overwrites local fields from a remote document. The
// cloud document is the live canonical copy once linked, so no merge
// is attempted. Persistence failures here are logged; there is no user
// action to surface them to.
func (c *Controller) applyRemote(doc cloud.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if doc.Runs != nil {
		c.tracker.ReplaceRuns(*doc.Runs)

		if err := c.db.SaveRuns(c.tracker.Snapshot().Runs); err != nil {
			c.logger.Error("persisting remote runs", slog.Any("error", err))
		}
	}

	if doc.Weights != nil {
		c.tracker.ReplaceWeights(*doc.Weights)

		if err := c.db.SaveWeights(c.tracker.Snapshot().Weights); err != nil {
			c.logger.Error("persisting remote weights", slog.Any("error", err))
		}
	}

	if doc.LayoutOrder != nil {
		c.tracker.ReplaceLayout(*doc.LayoutOrder)

		if err := c.db.SaveLayout(c.tracker.Snapshot().LayoutOrder); err != nil {
			c.logger.Error("persisting remote layout", slog.Any("error", err))
		}
	}
}

// push sends the given fields to the remote document as a detached
// background task. Failures are logged and swallowed: the local
// mutation that triggered the push has already been persisted and is
// never rolled back.
func (c *Controller) push(doc cloud.Document) {
	if !c.Linked() {
		return
	}

	c.pushes.Add(1)

	go func() {
		defer c.pushes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		if err := c.syncer.Push(ctx, c.identity, doc); err != nil {
			c.logger.Error(
				"remote push failed",
				slog.String("identity", c.identity),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until all in-flight remote pushes have settled. Called
// before process exit so short-lived commands do not drop pushes.
func (c *Controller) Wait() {
	c.pushes.Wait()
}

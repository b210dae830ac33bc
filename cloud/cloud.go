// Package cloud syncs the training log against a remote per-identity
// document. Sync is entirely optional: without a configured endpoint
// every operation degrades to a no-op and the program runs in
// local-only mode.
package cloud

import (
	"context"
	"time"

	"github.com/tobani/outrun/internal/models"
)

// Document is the remote per-identity document shape. The theme
// preference is intentionally device-local and never synced.
//
// The list fields are pointers so that absent and present-but-empty
// stay distinct on the wire: a nil field is omitted and leaves the
// remote value untouched by the merge, while a pointer to an empty
// list serializes as [] and clears it. Without this an emptied log
// could never propagate.
type Document struct {
	Runs        *[]models.Run         `json:"runs,omitempty"`
	Weights     *[]models.WeightEntry `json:"weights,omitempty"`
	LayoutOrder *[]string             `json:"layoutOrder,omitempty"`
	LastUpdated time.Time             `json:"lastUpdated,omitzero"`
}

// UnsubscribeFunc tears down a live subscription. It must be called
// when the identity session ends so late callbacks cannot resurrect
// stale state.
type UnsubscribeFunc func()

// Syncer pushes local state to a remote document and subscribes to
// remote changes. Push is fire-and-forget from the caller's
// perspective: implementations log failures rather than surfacing
// them, and local durability never depends on remote reachability.
type Syncer interface {
	Push(ctx context.Context, identityID string, doc Document) error
	Subscribe(
		ctx context.Context,
		identityID string,
		onChange func(Document),
	) (UnsubscribeFunc, error)
}

// Noop is the Syncer used when no remote backend is configured.
type Noop struct{}

func (Noop) Push(context.Context, string, Document) error {
	return nil
}

func (Noop) Subscribe(
	context.Context,
	string,
	func(Document),
) (UnsubscribeFunc, error) {
	return func() {}, nil
}

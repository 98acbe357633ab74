package policies

import (
	"context"
	"errors"

	"vendibook/internal/domain/checkout"
)

// ErrSessionNotFound is returned by session stores for unknown ids.
var ErrSessionNotFound = errors.New("policies: checkout session not found")

// SessionStore persists in-progress checkout selections between API calls.
// Only the selection snapshot is stored; derived pricing is recomputed on
// load.
type SessionStore interface {
	Load(ctx context.Context, id string) (checkout.Snapshot, error)
	Save(ctx context.Context, snap checkout.Snapshot) error
	Delete(ctx context.Context, id string) error
}

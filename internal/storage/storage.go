// Package storage defines the persistence contracts for personas and
// per-user preferences. Implementations live in subpackages.
package storage

import (
	"context"

	"github.com/vioshim/proxyengine/internal/persona"
	apperrors "github.com/vioshim/proxyengine/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// PersonaStore persists personas with their variants and boundary pairs.
type PersonaStore interface {
	// Put persists a persona, assigning an ID when it has none.
	Put(ctx context.Context, p *persona.Persona) error
	// Get fetches a persona by ID.
	Get(ctx context.Context, id int64) (*persona.Persona, error)
	// List returns an owner's personas within a scope, oldest first. The
	// order doubles as segmentation priority.
	List(ctx context.Context, ownerID, scopeID int64) ([]*persona.Persona, error)
	// Delete removes a persona. Deleting an absent persona is not an error.
	Delete(ctx context.Context, id int64) error
}

// PreferenceStore persists per-user resolution preferences.
type PreferenceStore interface {
	// PutTimezone records a user's IANA timezone name.
	PutTimezone(ctx context.Context, userID int64, zone string) error
	// Timezone fetches a user's IANA timezone name.
	Timezone(ctx context.Context, userID int64) (string, error)
}

package store

import (
	"context"

	"rolodex/internal/contact/models"
	"rolodex/pkg/platform/sentinel"
)

// Sentinel errors returned by every Store implementation.
// Services translate these to domain errors at their boundary.
var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

// Store is the persistence contract for contacts. Implementations are safe
// for concurrent use and never hand out references to their internal state.
//
// CreateContact re-checks name and email uniqueness under the store's own
// serialization and returns ErrConflict when another contact already holds
// either. UpdateContact performs a full replacement and returns ErrNotFound
// for unknown IDs; it applies no uniqueness rule. DeleteContact reports
// whether a record was removed.
type Store interface {
	CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetAllContacts(ctx context.Context) ([]*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	DeleteContact(ctx context.Context, id int64) (bool, error)
}

// conflicting reports whether candidate collides with any contact in existing.
func conflicting(candidate *models.Contact, existing []*models.Contact) bool {
	for _, c := range existing {
		if candidate.ConflictsWith(c) {
			return true
		}
	}
	return false
}

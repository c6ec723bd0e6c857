// Package vaults persists the single encrypted blob each user owns.
//
// Save is an atomic compare-and-swap. An absent vault reads as version 1,
// and every save bumps the version: the first save creates the row at
// version 2 no matter what the caller expected, every later save succeeds
// only when the stored version equals the caller's expected version. Both
// backends express this as a single conditional upsert so concurrent saves
// can never silently clobber each other.
package vaults

import (
	"context"

	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
)

type Repository interface {
	// Get returns the user's vault or common.ErrorNotFound if they never
	// saved one. An empty payload is a stored value, not an absence.
	Get(ctx context.Context, userID string) (*models.Vault, error)

	// Save stores the payload under the CAS contract above and returns the
	// new version, or common.ErrVersionConflict for a stale expectedVersion.
	Save(ctx context.Context, userID, encryptedData string, expectedVersion int64) (int64, error)

	Count(ctx context.Context) (int64, error)
}

// Package settings persists per-user preference rows. A row is created with
// defaults in the same transaction as the user at registration.
package settings

import (
	"context"

	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Settings) (*models.Settings, error)
	GetByUserID(ctx context.Context, userID string) (*models.Settings, error)
}

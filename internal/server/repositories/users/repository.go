// Package users persists account records. Email uniqueness is enforced by
// the backing store's unique index, never by check-then-insert logic.
package users

import (
	"context"

	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	Count(ctx context.Context) (int64, error)
}

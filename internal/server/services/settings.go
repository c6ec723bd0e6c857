package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/repomanager"
)

type SettingsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSettingsService(db *sql.DB, m repomanager.RepositoryManager) *SettingsService {
	return &SettingsService{db: db, repomanager: m}
}

// GetSettings returns the user's preferences, falling back to defaults when
// no row exists (accounts created before the settings table was added).
func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {

	settings, err := s.repomanager.Settings(s.db).GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.Settings{
				UserID:   userID,
				Theme:    models.DefaultTheme,
				AutoLock: models.DefaultAutoLock,
			}, nil
		}
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return settings, nil
}

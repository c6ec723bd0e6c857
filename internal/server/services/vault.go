package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/server/config"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/repomanager"
)

type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *VaultService {
	return &VaultService{db: db, repomanager: m}
}

// GetVault returns the user's encrypted payload and version. A user who
// never saved a vault gets (nil, 1): nil payload is the "no vault yet"
// sentinel and is distinct from a stored empty string.
func (s *VaultService) GetVault(ctx context.Context, userID string) (*string, int64, error) {

	vault, err := s.repomanager.Vaults(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, 1, nil
		}
		return nil, 0, fmt.Errorf("loading vault: %w", err)
	}

	return &vault.EncryptedData, vault.Version, nil
}

// SaveVault stores the payload under the optimistic-concurrency contract and
// returns the new version. A stale expectedVersion surfaces as
// common.ErrVersionConflict; the caller must re-fetch and retry.
func (s *VaultService) SaveVault(ctx context.Context, userID, encryptedData string, expectedVersion int64) (int64, error) {

	if expectedVersion < 1 {
		return 0, fmt.Errorf("%w: version must be a positive integer", common.ErrorValidation)
	}

	newVersion, err := s.repomanager.Vaults(s.db).Save(ctx, userID, encryptedData, expectedVersion)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return 0, common.ErrVersionConflict
		}
		return 0, fmt.Errorf("saving vault: %w", err)
	}

	return newVersion, nil
}

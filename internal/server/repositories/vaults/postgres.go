package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/dbx"
	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Vault, error) {
	query :=
		`SELECT id, user_id, encrypted_data, version, created_at, updated_at FROM vaults
		 WHERE user_id = $1
		 `

	vault := &models.Vault{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&vault.ID, &vault.UserID, &vault.EncryptedData, &vault.Version, &vault.CreatedAt, &vault.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return vault, nil
}

// Save relies on the UNIQUE(user_id) constraint: the insert either creates
// the row (an absent vault counts as baseline version 1, so the first save
// stores 2) or falls into the conditional update. An update with a stale
// version matches no row, which surfaces as ErrNoRows.
func (r *PostgresRepository) Save(ctx context.Context, userID, encryptedData string, expectedVersion int64) (int64, error) {
	query :=
		`INSERT INTO vaults (id, user_id, encrypted_data, version)
		 VALUES ($1, $2, $3, 2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET encrypted_data = EXCLUDED.encrypted_data,
		     version = vaults.version + 1,
		     updated_at = now()
		 WHERE vaults.version = $4
		 RETURNING version
		 `

	var newVersion int64
	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), userID, encryptedData, expectedVersion).Scan(&newVersion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrVersionConflict
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return newVersion, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaults`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

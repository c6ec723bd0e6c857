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

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.Vault, error) {
	query :=
		`SELECT id, user_id, encrypted_data, version, created_at, updated_at FROM vaults
		 WHERE user_id = ?
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

// Save mirrors the postgres implementation: a single conditional upsert so
// the read-compare-write sequence stays atomic per user.
func (r *SQLiteRepository) Save(ctx context.Context, userID, encryptedData string, expectedVersion int64) (int64, error) {
	query :=
		`INSERT INTO vaults (id, user_id, encrypted_data, version)
		 VALUES (?, ?, ?, 2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET encrypted_data = excluded.encrypted_data,
		     version = vaults.version + 1,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE vaults.version = ?
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

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vaults`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

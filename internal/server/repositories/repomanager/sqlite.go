package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/ciphersafe/internal/dbx"
	"github.com/dmitrijs2005/ciphersafe/internal/server/migrations"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/settings"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/users"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/vaults"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends repositories backed by an embedded SQLite
// file, for single-node deployments without a database server.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() (*SQLiteRepositoryManager, error) {
	return &SQLiteRepositoryManager{}, nil
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Vaults(db dbx.DBTX) vaults.Repository {
	return vaults.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewSQLiteRepository(db)
}

// RunMigrations sets up goose with the embedded sqlite migrations and runs
// them against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "sqlite")
}

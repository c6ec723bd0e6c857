// Package repomanager vends backend-specific repository implementations
// behind one interface, so use-case code is written once and the storage
// backend (PostgreSQL or embedded SQLite) is chosen at startup.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/ciphersafe/internal/dbx"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/settings"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/users"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/vaults"
)

// Driver names accepted in configuration.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type RepositoryManager interface {
	// RunMigrations applies the embedded goose migrations for the backend.
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Vaults(db dbx.DBTX) vaults.Repository
	Settings(db dbx.DBTX) settings.Repository
}

// New returns the RepositoryManager for the configured driver.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepositoryManager()
	case DriverSQLite:
		return NewSQLiteRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown database driver: %q", driver)
	}
}

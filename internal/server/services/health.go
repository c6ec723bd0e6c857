package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/repomanager"
)

// HealthStats is reported by the health endpoint alongside reachability.
type HealthStats struct {
	Users  int64
	Vaults int64
}

type HealthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewHealthService(db *sql.DB, m repomanager.RepositoryManager) *HealthService {
	return &HealthService{db: db, repomanager: m}
}

// Check pings the store and gathers row counts. Any failure means the
// backing store is unreachable or broken.
func (s *HealthService) Check(ctx context.Context) (*HealthStats, error) {

	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	userCount, err := s.repomanager.Users(s.db).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	vaultCount, err := s.repomanager.Vaults(s.db).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting vaults: %w", err)
	}

	return &HealthStats{Users: userCount, Vaults: vaultCount}, nil
}

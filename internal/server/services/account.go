// Package services implements the use cases of the CipherSafe server on top
// of the repository layer. Services return sentinel errors from
// internal/common; the transport layer maps them to HTTP status codes.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/ciphersafe/internal/common"
	"github.com/dmitrijs2005/ciphersafe/internal/dbx"
	"github.com/dmitrijs2005/ciphersafe/internal/server/auth"
	"github.com/dmitrijs2005/ciphersafe/internal/server/config"
	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Same structural pattern the registration form enforces client-side.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AccountService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	bcryptCost            int
	minPasswordLength     int
	dummyHash             []byte
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) (*AccountService, error) {
	// Hashed once at startup; compared against on lookups for unknown
	// emails so both login failure paths cost one bcrypt comparison.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("ciphersafe-timing-pad"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("generating dummy hash: %w", err)
	}

	return &AccountService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		bcryptCost:            cfg.BcryptCost,
		minPasswordLength:     cfg.MinPasswordLength,
		dummyHash:             dummyHash,
	}, nil
}

func (s *AccountService) validateCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	if len(password) < s.minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, s.minPasswordLength)
	}
	return nil
}

// Register creates the user and their default settings row in one
// transaction, so a settings failure never leaves an orphaned account, then
// mints a session token. A duplicate email surfaces as
// common.ErrorAlreadyExists via the unique index, never via check-then-insert.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.User, string, error) {

	if err := s.validateCredentials(email, password); err != nil {
		return nil, "", err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}

		defaults := &models.Settings{
			ID:       uuid.NewString(),
			UserID:   user.ID,
			Theme:    models.DefaultTheme,
			AutoLock: models.DefaultAutoLock,
		}
		_, err := s.repomanager.Settings(tx).Create(ctx, defaults)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", common.ErrorAlreadyExists
		}
		return nil, "", fmt.Errorf("creating account: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", fmt.Errorf("minting token: %w", err)
	}

	return user, token, nil
}

// Login verifies the credentials and mints a session token. An unknown email
// and a wrong password are indistinguishable to the caller: both return
// common.ErrorInvalidCredentials after exactly one bcrypt comparison.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {

	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, "", common.ErrorInvalidCredentials
		}
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", common.ErrorInvalidCredentials
	}

	if err := repo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("updating last login: %w", err)
	}
	now := time.Now().UTC()
	user.LastLogin = &now

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, "", fmt.Errorf("minting token: %w", err)
	}

	return user, token, nil
}

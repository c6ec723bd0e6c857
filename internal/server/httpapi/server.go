// Package httpapi exposes the CipherSafe use cases over HTTP/JSON. It is a
// thin layer: handlers decode requests, call a service and map sentinel
// errors to status codes; no business rules live here.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/ciphersafe/internal/logging"
	"github.com/dmitrijs2005/ciphersafe/internal/server/models"
	"github.com/dmitrijs2005/ciphersafe/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// AccountService is the register/login use-case surface the API needs.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// VaultService is the vault get/save use-case surface the API needs.
type VaultService interface {
	GetVault(ctx context.Context, userID string) (*string, int64, error)
	SaveVault(ctx context.Context, userID, encryptedData string, expectedVersion int64) (int64, error)
}

type SettingsService interface {
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)
}

type HealthService interface {
	Check(ctx context.Context) (*services.HealthStats, error)
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	accounts  AccountService
	vaults    VaultService
	settings  SettingsService
	health    HealthService
	jwtSecret []byte
	app       *fiber.App
}

func NewHTTPServer(address string, l logging.Logger, as AccountService, vs VaultService, ss SettingsService, hs HealthService, secretKey string) *HTTPServer {
	s := &HTTPServer{
		address:   address,
		logger:    l.With("module", "http_server"),
		accounts:  as,
		vaults:    vs,
		settings:  ss,
		health:    hs,
		jwtSecret: []byte(secretKey),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             10 * 1024 * 1024, // client-encrypted vaults can be large
	})

	api := app.Group("/api")
	api.Get("/health", s.healthCheck)
	api.Post("/register", s.register)
	api.Post("/login", s.login)
	api.Get("/vault", s.authRequired, s.getVault)
	api.Post("/vault", s.authRequired, s.saveVault)
	api.Get("/settings", s.authRequired, s.getSettings)

	s.app = app
	return s
}

func (s *HTTPServer) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = s.app.ShutdownWithTimeout(5 * time.Second)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

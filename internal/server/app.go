// Package server initializes and runs the CipherSafe application server.
// It selects and migrates the storage backend, wires services to the HTTP
// endpoint and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/ciphersafe/internal/logging"
	"github.com/dmitrijs2005/ciphersafe/internal/server/config"
	"github.com/dmitrijs2005/ciphersafe/internal/server/httpapi"
	"github.com/dmitrijs2005/ciphersafe/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ciphersafe/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.HTTPServer
}

// openDB opens the configured backend. The driver names are registered by
// the repomanager package (pgx/stdlib and modernc sqlite).
func openDB(cfg *config.Config) (*sql.DB, error) {
	var driverName string
	switch cfg.DatabaseDriver {
	case repomanager.DriverPostgres:
		driverName = "pgx"
	case repomanager.DriverSQLite:
		driverName = "sqlite"
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.DatabaseDriver)
	}

	db, err := sql.Open(driverName, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	m, err := repomanager.New(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	accountService, err := services.NewAccountService(db, m, cfg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	vaultService := services.NewVaultService(db, m, cfg)
	settingsService := services.NewSettingsService(db, m)
	healthService := services.NewHealthService(db, m)

	httpServer := httpapi.NewHTTPServer(cfg.EndpointAddr, logger,
		accountService, vaultService, settingsService, healthService, cfg.SecretKey)

	return &App{config: cfg, logger: logger, db: db, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err.Error())
	}
}

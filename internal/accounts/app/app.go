package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/accounts/http"
	"github.com/aussiebroadwan/accounts/internal/accounts/metrics"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/mongo"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via -ldflags.
	BuildVersion = "v1.0.0"

	startupTimeout = 30 * time.Second
)

// Application wires the accounts service together.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// db is the raw driver; store wraps it with per-call timeouts.
	db    store.Store
	store store.Store

	tokens *jwtx.HS256Codec
	hasher *cryptox.Hasher

	authService      *service.AuthService
	accountService   *service.AccountService
	bootstrapService *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New builds an Application, opening and migrating the store and ensuring
// the configured admin account exists.
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "accounts",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := app.initCrypto(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.ensureAdmin(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()
	return app, nil
}

// Handler returns the service's root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("accounts service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, then closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initCrypto loads the pepper and builds the token codec. In dev a missing
// JWT secret is replaced by a random one; tokens then die with the process.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	secret := app.cfg.JWTSecret
	if secret == "" {
		secret, err = cryptox.GenerateSecret(cryptox.SecretSize256)
		if err != nil {
			return fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		app.logger.Warn("ACCOUNTS_JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}

	app.tokens, err = jwtx.NewHS256Codec(secret, jwtx.HS256Options{
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.JWTExpire,
	})
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := openStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.db = db
	app.store = store.Bounded(db, app.cfg.StoreTimeout, app.metrics)

	app.logger.Info("database migrations applied successfully", "store", app.cfg.StoreDriver)
	return nil
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		return mongo.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		dsn := cfg.DatabaseFile
		if dsn != ":memory:" {
			dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
		}
		return sqlite.NewStore(dsn)
	}
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:  app.store,
		Hasher: app.hasher,
		Tokens: app.tokens,
		Events: app.metrics,
	}
	app.accountService = &service.AccountService{
		Store:  app.store,
		Hasher: app.hasher,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.store,
		Hasher: app.hasher,
	}
}

// ensureAdmin seeds or reactivates the configured admin. A generated
// password is logged exactly once, on the start that created the account.
func (app *Application) ensureAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" {
		return nil
	}

	res, err := app.bootstrapService.EnsureAdmin(ctx, service.AdminSeed{
		Email:    app.cfg.AdminEmail,
		Password: app.cfg.AdminPassword,
		FullName: app.cfg.AdminName,
	})
	if errors.Is(err, service.ErrBootstrapNotAdmin) {
		app.logger.Warn("configured admin email belongs to a non-admin account, skipping", "email", app.cfg.AdminEmail)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}

	switch {
	case res.Created && res.GeneratedPassword != "":
		app.logger.Warn("admin account created with a generated password; change it after first login",
			"email", res.User.Email,
			"generated_password", res.GeneratedPassword,
		)
	case res.Created:
		app.logger.Info("admin account created", "email", res.User.Email)
	case res.Reactivated:
		app.logger.Warn("admin account was inactive and has been reactivated", "email", res.User.Email)
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.store, app.logger)
	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.Metrics = app.metrics
	router.CORS = httpx.CORSConfig{
		AllowedOrigins: app.cfg.CORSOrigins,
		MaxAge:         600,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

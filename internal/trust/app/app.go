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

	"github.com/ratewatch/ratewatch/internal/rates"
	httpapi "github.com/ratewatch/ratewatch/internal/trust/http"
	"github.com/ratewatch/ratewatch/internal/trust/notify"
	"github.com/ratewatch/ratewatch/internal/trust/service"
	"github.com/ratewatch/ratewatch/internal/trust/store"
	"github.com/ratewatch/ratewatch/internal/trust/store/drivers/sqlite"
	"github.com/ratewatch/ratewatch/pkg/cryptox"
	"github.com/ratewatch/ratewatch/pkg/jwtx"
	"github.com/ratewatch/ratewatch/pkg/slogx"
	"github.com/ratewatch/ratewatch/pkg/ttlcache"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem.
	BuildVersion = "v0.1.0"

	defaultAdminPassword = "changeme"
)

// Application encapsulates the trust service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.HS256

	credentialService   *service.CredentialService
	sessionService      *service.SessionService
	verificationService *service.VerificationService
	dispatcher          *notify.Dispatcher
	ratesProvider       rates.Provider

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ratewatch",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.SigningSecret == "" {
		return nil, errors.New("RATEWATCH_SIGNING_SECRET is required")
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	tokens, err := jwtx.NewHS256([]byte(cfg.SigningSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.tokens = tokens

	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.db = db
	return nil
}

func (app *Application) initServices() error {
	loc, err := time.LoadLocation(app.cfg.TimezoneName)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", app.cfg.TimezoneName, err)
	}

	app.credentialService = &service.CredentialService{
		Store:  app.db,
		Logger: app.logger,
	}

	seed := app.cfg.AdminPasswordSeed
	if seed == "" {
		// Deployment gap, not a design gap: a seed must come from config.
		seed = defaultAdminPassword
		app.logger.Warn("RATEWATCH_ADMIN_PASSWORD not set, using built-in default seed")
	}
	if err := app.credentialService.EnsureSeeded(context.Background(), seed); err != nil {
		return err
	}

	app.sessionService = &service.SessionService{
		Signer:   app.tokens,
		Verifier: app.tokens,
		Issuer:   app.cfg.Issuer,
		TTL:      app.cfg.SessionTTL,
	}

	var mailer notify.Mailer
	if app.cfg.SMTPHost != "" && app.cfg.NotifyRecipient != "" {
		mailer = notify.NewSMTPMailer(
			app.cfg.SMTPHost,
			app.cfg.SMTPPort,
			app.cfg.SMTPUser,
			app.cfg.SMTPPassword,
			app.cfg.NotifyFrom,
			app.cfg.NotifyRecipient,
		)
	} else {
		app.logger.Warn("SMTP not configured, notifications go to the log")
		mailer = &notify.LogMailer{Logger: app.logger}
	}
	app.dispatcher = &notify.Dispatcher{Mailer: mailer, Logger: app.logger}

	app.verificationService = &service.VerificationService{
		Store:       app.db,
		Dispatcher:  app.dispatcher,
		Logger:      app.logger,
		CodeDigits:  app.cfg.CodeDigits,
		CodeTTL:     app.cfg.CodeTTL,
		MaxAttempts: app.cfg.MaxAttempts,
		Location:    loc,
	}

	cache := ttlcache.New[rates.Quote](app.cfg.CacheFile, app.cfg.CacheTTL, app.logger)
	var upstream rates.Provider
	if app.cfg.RatesURL != "" {
		upstream = rates.NewHTTPProvider(app.cfg.RatesURL, 10*time.Second)
	} else {
		app.logger.Warn("RATEWATCH_RATES_URL not set, rates lookups will fail")
		upstream = unavailableProvider{}
	}
	app.ratesProvider = &rates.CachedProvider{Upstream: upstream, Cache: cache}

	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.tokens, BuildVersion, app.db, app.logger)
	router.CredentialService = app.credentialService
	router.SessionService = app.sessionService
	router.VerificationService = app.verificationService
	router.RatesProvider = app.ratesProvider
	router.AdminConfig = httpapi.ConfigResponse{
		MaxAttempts:      app.cfg.MaxAttempts,
		CodeTTLSeconds:   int64(app.cfg.CodeTTL.Seconds()),
		SessionTTLSecs:   int64(app.cfg.SessionTTL.Seconds()),
		NotifyConfigured: app.cfg.SMTPHost != "" && app.cfg.NotifyRecipient != "",
		Env:              app.cfg.Env,
	}
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("trust service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down trust service...")

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
	}

	app.logger.Info("trust service stopped")
	return nil
}

// unavailableProvider stands in when no upstream is configured.
type unavailableProvider struct{}

func (unavailableProvider) Latest(ctx context.Context, base string) (rates.Quote, error) {
	return rates.Quote{}, rates.ErrUnavailable
}

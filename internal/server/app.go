// Package server wires configuration, storage, services and the HTTP API
// into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/dmitrijs2005/storefront/internal/server/cache"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/dmitrijs2005/storefront/internal/server/httpapi"
	"github.com/dmitrijs2005/storefront/internal/server/mail"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storefront/internal/server/services"
	"github.com/dmitrijs2005/storefront/internal/server/storage"
	"github.com/dmitrijs2005/storefront/internal/server/tracing"
)

// Seams for tests.
var (
	openDB          = repomanager.OpenDB
	newRepoManager  = repomanager.NewPostgresRepositoryManager
	newImageStore   = func(ctx context.Context, c *config.Config) (storage.ImageStore, error) { return storage.NewS3ImageStore(ctx, c) }
	newCatalogCache = openCatalogCache
	setupTracing    = tracing.Setup
	notifySignals   = signal.Notify
	shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
)

// openCatalogCache returns nil when no Redis URL is configured.
func openCatalogCache(ctx context.Context, c *config.Config) (cache.Store, error) {
	if c.RedisURL == "" {
		return nil, nil
	}
	s, err := cache.NewRedisStore(ctx, c.RedisURL, "storefront:")
	if err != nil {
		return nil, err
	}
	return s, nil
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	cache       cache.Store
	flushSpans  tracing.ShutdownFunc
	userService *services.UserService
	services    httpapi.Services
}

// NewApp connects to the database, applies migrations and builds the
// services. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogMode, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	app.flushSpans, err = setupTracing(ctx, c.TracingExporter, c.OTLPEndpoint, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	app.db, err = openDB(ctx, c.DatabaseDSN)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	policy, err := services.NewStatusPolicyFromConfig(c)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	images, err := newImageStore(ctx, c)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	app.cache, err = newCatalogCache(ctx, c)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("cache init error: %w", err)
	}

	runner := dbx.NewSQLRunner(app.db, nil)
	mailer := mail.New(c.PostmarkToken, c.EmailSender, logger.With("module", "mail"))

	app.userService = services.NewUserService(runner, rm, mailer, c)
	app.services = httpapi.Services{
		Users: app.userService,
		Catalog: services.NewCatalogService(runner, rm, images).
			WithCache(app.cache, c.CatalogCacheTTL, logger.With("module", "catalog_cache")),
		Carts:     services.NewCartService(runner, rm),
		Addresses: services.NewAddressService(runner, rm),
		Orders:    services.NewOrderService(runner, rm, policy),
	}
	return app, nil
}

// Users exposes the account service for operator tooling.
func (app *App) Users() *services.UserService {
	return app.userService
}

// Close flushes spans and releases the cache and database connections.
func (app *App) Close() error {
	var errs []error
	if app.flushSpans != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, app.flushSpans(ctx))
		cancel()
	}
	if app.cache != nil {
		errs = append(errs, app.cache.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	notifySignals(sigs, shutdownSignals...)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.logger, app.services, app.config.CORSOrigins)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP until ctx is cancelled or a shutdown signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}

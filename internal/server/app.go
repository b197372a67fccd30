// Package server wires one aureum service: it opens the database and blob
// storage, applies migrations, builds the HTTP routes and runs them until a
// termination signal arrives.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jaftdelgado/aureum-services/internal/logging"
	"github.com/jaftdelgado/aureum-services/internal/server/blobstore"
	"github.com/jaftdelgado/aureum-services/internal/server/config"
	"github.com/jaftdelgado/aureum-services/internal/server/httpapi"
	"github.com/jaftdelgado/aureum-services/internal/server/profileclient"
	"github.com/jaftdelgado/aureum-services/internal/server/repositories/repomanager"
	"github.com/jaftdelgado/aureum-services/internal/server/services"
)

// startupTimeout bounds the database dial and migrations.
const startupTimeout = 30 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	handler http.Handler
	closers []func(context.Context) error
}

var openDB = repomanager.Open

// NewApp validates c and connects the storage of c.Service.
func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	zl, err := logging.NewProductionZap(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl).With("service", c.Service)

	app := &App{config: c, logger: logger}
	app.closers = append(app.closers, func(context.Context) error { return zl.Sync() })

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := app.init(ctx); err != nil {
		app.close(context.Background())
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	rm, err := repomanager.NewPostgresRepositoryManager(c.Service)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}

	db, err := openDB(ctx, c.DSN())
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			return err
		}
		app.logger.Info(ctx, "migrations applied")
	}

	checks := []httpapi.Check{{Name: "postgres", Ping: db.PingContext}}

	switch c.Service {
	case config.ServiceAuth:
		profiles := profileclient.New(c.ProfileServiceURL, c.ProfileServiceTimeout)
		accounts := services.NewAccountService(db, rm, profiles, app.logger, c)
		app.handler = httpapi.NewAuthRouter(app.logger, accounts, checks...)

	case config.ServiceProfiles:
		blobs, err := app.blobStore(ctx)
		if err != nil {
			return err
		}
		checks = append(checks, blobCheck(blobs)...)
		profiles := services.NewProfileService(db, rm, blobs, app.logger)
		app.handler = httpapi.NewProfilesRouter(app.logger, profiles, checks...)

	case config.ServiceTeams:
		blobs, err := app.blobStore(ctx)
		if err != nil {
			return err
		}
		checks = append(checks, blobCheck(blobs)...)
		app.handler = httpapi.NewTeamsRouter(app.logger,
			services.NewTeamService(db, rm, blobs, app.logger),
			services.NewMembershipService(db, rm),
			services.NewMarketConfigService(db, rm),
			checks...)

	default:
		return fmt.Errorf("unknown service %q", c.Service)
	}
	return nil
}

// blobStore builds the configured backend. Neither backend dials here.
func (app *App) blobStore(ctx context.Context) (blobstore.Store, error) {
	c := app.config
	switch c.BlobBackend {
	case config.BlobBackendS3:
		s, err := blobstore.NewS3Store(ctx, blobstore.S3Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Prefix:       c.Service,
		})
		if err != nil {
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
		return s, nil
	default:
		client := blobstore.NewMongoClient(c.MongoURI, c.MongoDatabase, c.MongoTLSInsecure)
		app.closers = append(app.closers, client.Disconnect)
		return blobstore.NewMongoStore(client, c.MongoCollection), nil
	}
}

func blobCheck(s blobstore.Store) []httpapi.Check {
	if p, ok := s.(blobstore.Pinger); ok {
		return []httpapi.Check{{Name: "blobs", Ping: p.Ping}}
	}
	return nil
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
	s := httpapi.NewServer(app.config.HTTPAddr, app.handler, app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// close releases resources in reverse order of acquisition.
func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.logger.Warn(ctx, "close failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	app.close(shutdownCtx)
}

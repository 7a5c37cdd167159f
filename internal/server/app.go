// Package server assembles the Signify server: it opens the databases,
// wires repositories and services, runs migrations, starts the background
// jobs and serves the HTTP API until shutdown.
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

	"github.com/dmitrijs2005/signify/internal/logging"
	"github.com/dmitrijs2005/signify/internal/server/config"
	"github.com/dmitrijs2005/signify/internal/server/httpapi"
	"github.com/dmitrijs2005/signify/internal/server/jobs"
	"github.com/dmitrijs2005/signify/internal/server/media"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/signify/internal/server/services"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	serviceDB *sql.DB
	repos     repomanager.RepositoryManager
	sessions  *services.SessionService
	auth      *services.AuthService
	lessons   *services.LessonService
	reclaimer *services.Reclaimer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	db, err := sqlOpen(repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var serviceDB *sql.DB
	if c.ServiceDatabaseDSN != "" {
		serviceDB, err = sqlOpen(repomanager.DriverName, c.ServiceDatabaseDSN)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("service db init error: %w", err)
		}
	}

	app := &App{
		config:    c,
		logger:    logger,
		db:        db,
		serviceDB: serviceDB,
		repos:     repomanager.NewPostgresRepositoryManager(),
	}

	app.sessions = services.NewSessionService(db, app.repos, logger)
	app.auth = services.NewAuthService(app.ownerDB(), app.repos, app.sessions, c, logger)
	app.lessons = services.NewLessonService(db, app.repos, app.presigner(ctx), logger)
	app.reclaimer = services.NewReclaimer(serviceDB, app.repos, logger)

	return app, nil
}

// ownerDB is the connection not restricted by row-level security, used for
// account lookups and migrations.
func (app *App) ownerDB() *sql.DB {
	if app.serviceDB != nil {
		return app.serviceDB
	}
	return app.db
}

func (app *App) presigner(ctx context.Context) media.Presigner {
	p, err := media.NewS3Presigner(ctx, app.config)
	if err != nil {
		if errors.Is(err, media.ErrStorageDisabled) {
			app.logger.Info(ctx, "object storage not configured, lesson covers disabled")
		} else {
			app.logger.Warn(ctx, "object storage init failed, lesson covers disabled", "error", err)
		}
		return nil
	}
	return p
}

func (app *App) Logger() logging.Logger { return app.logger }

// Migrate applies the embedded schema migrations.
func (app *App) Migrate(ctx context.Context) error {
	return app.repos.RunMigrations(ctx, app.ownerDB())
}

// Reclaim runs the streak reclaimer once.
func (app *App) Reclaim(ctx context.Context) (*services.ReclaimResult, error) {
	return app.reclaimer.Run(ctx)
}

// AddUser registers a user without going through the API.
func (app *App) AddUser(ctx context.Context, in services.RegisterInput) (*models.UserProfile, error) {
	return app.auth.Register(ctx, in)
}

func (app *App) Close() error {
	var errs []error
	if app.serviceDB != nil {
		errs = append(errs, app.serviceDB.Close())
	}
	errs = append(errs, app.db.Close())
	return errors.Join(errs...)
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

func (app *App) startScheduler(ctx context.Context) (*jobs.Scheduler, error) {
	reclaim := app.config.ReclaimEnabled
	if reclaim && app.serviceDB == nil {
		app.logger.Warn(ctx, "scheduled reclaimer disabled: no service database configured")
		reclaim = false
	}

	sched := jobs.New(app.reclaimer, app.auth, app.sessions, jobs.Options{
		ReclaimEnabled:  reclaim,
		ReclaimInterval: app.config.ReclaimInterval,
		SessionMaxIdle:  app.config.RefreshTokenValidityDuration,
	}, app.logger)

	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	return sched, nil
}

func (app *App) newHTTPServer() *httpapi.Server {
	return httpapi.NewServer(app.config.HTTPAddr, app.config.CORSAllowedOrigins, app.logger, httpapi.Deps{
		Accounts:  app.auth,
		Sessions:  httpapi.SessionsFrom(app.auth),
		Lessons:   app.lessons,
		Reclaimer: app.reclaimer,
		Scorer:    services.MockScorer{},
	})
}

// Run migrates the schema, starts the background jobs and serves HTTP
// until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	sched, err := app.startScheduler(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	defer sched.Stop()

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.newHTTPServer().Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()

	return runErr
}

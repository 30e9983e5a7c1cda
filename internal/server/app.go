// Package server wires the keygate server together: configuration, the
// credential store, services and the HTTP API, plus graceful shutdown on
// SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/keygate/internal/dbx"
	"github.com/dmitrijs2005/keygate/internal/logging"
	"github.com/dmitrijs2005/keygate/internal/server/config"
	"github.com/dmitrijs2005/keygate/internal/server/httpapi"
	"github.com/dmitrijs2005/keygate/internal/server/metrics"
	"github.com/dmitrijs2005/keygate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/keygate/internal/server/services"
)

// memoryDSN selects the in-memory credential store. Data is lost on exit.
const memoryDSN = "memory://"

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(logOut, c.LogLevel)

	if c.UsesDefaultSecrets() {
		logger.Warn(ctx, "default secrets in use; set SECRET_KEY and ADMIN_SECRET for production",
			"secret_key", logging.Secret(c.SecretKey),
			"admin_secret", logging.Secret(c.AdminSecret))
	}

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
		tx dbx.Transactor
		q  dbx.DBTX
	)

	if strings.HasPrefix(c.DatabaseDSN, memoryDSN) {
		logger.Warn(ctx, "using in-memory user store; users are lost on restart")
		rm = repomanager.NewInMemoryRepositoryManager()
		tx = &dbx.LockTransactor{}
	} else {
		var err error
		db, err = openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		tx = dbx.NewSQLTransactor(db)
		q = db
	}

	deps := httpapi.Deps{
		Auth:        services.NewAuthService(q, rm, c, logger),
		Users:       services.NewUserService(q, tx, rm, c, logger),
		Array:       services.NewArrayService(services.DefaultArray()),
		Metrics:     metrics.New(),
		Logger:      logger,
		CORSOrigins: c.CORSOrigins,
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c.EndpointAddrHTTP, c.ShutdownTimeout, deps),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then closes the
// database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}

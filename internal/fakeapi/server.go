// Package fakeapi implements the store backend's REST API for development.
// Data lives in memory by default or in Postgres when a DSN is configured.
// It backs the end-to-end tests and can be run locally with cmd/fakeapi.
package fakeapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/dmitrijs2005/storeadmin/internal/shared"
)

type App struct {
	config  *Config
	logger  logging.Logger
	handler http.Handler
	db      *sql.DB
}

// NewApp builds the backend. An empty secret is replaced by a random one.
// With c.DatabaseDSN set the Postgres schema is migrated before serving.
func NewApp(c *Config, logger logging.Logger) (*App, error) {
	if c.SecretKey == "" {
		secret, err := shared.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		c.SecretKey = secret
	}

	app := &App{config: c, logger: logger}

	var repo Repository = NewStore(c.BcryptCost)
	if c.DatabaseDSN != "" {
		pg, db, err := OpenPostgres(context.Background(), c.DatabaseDSN, c.BcryptCost)
		if err != nil {
			return nil, err
		}
		repo, app.db = pg, db
		logger.Info(context.Background(), "using postgres storage")
	}

	app.handler = NewRouter(NewHandler(repo, c, logger))
	return app, nil
}

// Close releases the database connection, if any.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}

// Handler exposes the router, e.g. for httptest.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	defer app.Close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "fake backend listening", "addr", app.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.logger.Info(ctx, "shutting down")
	return srv.Shutdown(shutdownCtx)
}

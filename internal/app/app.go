package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/sainath9392/tinylink/internal/config"
	"github.com/sainath9392/tinylink/internal/database/postgres"
	"github.com/sainath9392/tinylink/internal/service"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/sainath9392/tinylink/internal/api/http"
)

const serviceName = "tinylink"

// NewLogger returns the request logger for the environment: concise text in
// dev, JSON everywhere else.
func NewLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel: slog.LevelInfo,
		JSON:     true,
	}

	if env == config.EnvDev {
		opts.LogLevel = slog.LevelDebug
		opts.JSON = false
		opts.Concise = true
	}

	return httplog.NewLogger(serviceName, opts)
}

// Run serves the application until ctx is done, then shuts the server down
// and drains pending clicks.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	linkRepo := postgres.NewLinkRepository(db)

	clicks := service.NewClickRecorder(
		linkRepo,
		logger.Logger,
		service.WithClickWorkers(cfg.Clicks.Workers),
		service.WithClickBufferSize(cfg.Clicks.BufferSize),
		service.WithClickTimeout(cfg.Clicks.Timeout),
	)
	clicks.Start()

	linkSvc := service.NewLinkService(linkRepo, clicks)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        myhttp.NewRouter(logger, linkSvc, db),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error
		if cfg.HTTPServer.TLS() {
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down http server")

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		// Redirects still in flight have been answered; flush their clicks
		// before the database handle is closed.
		if err := clicks.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to stop click recorder: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

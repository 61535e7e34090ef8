// Package server initializes and runs the account server. It wires the
// repositories, the account service, and the HTTP endpoint, runs schema
// migrations at startup, and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"siams/internal/logging"
	"siams/internal/server/config"
	"siams/internal/server/mailer"
	"siams/internal/server/metrics"
	"siams/internal/server/passwords"
	"siams/internal/server/repositories/repomanager"
	"siams/internal/server/services"
	"siams/internal/server/transport/httpapi"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    *repomanager.PostgresRepositoryManager
	accounts *services.AccountService
	handler  http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if cfg.Pepper == "" {
		return nil, errors.New("pepper is not configured")
	}

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.NewCollector(registry)

	hasher := passwords.NewHasher(cfg.Pepper, cfg.HashParams)
	notifier := mailer.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	accounts := services.NewAccountService(rm.Conn(), rm, hasher, notifier, logger, m, cfg)

	handler := httpapi.NewRouter(&httpapi.RouterDeps{
		Handler:       httpapi.NewHandler(accounts, logger),
		SessionSecret: []byte(cfg.SessionSecret),
		LoginLimiter:  httpapi.NewLoginLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst),
		Metrics:       registry,
	})

	return &App{
		config:   cfg,
		logger:   logger,
		repos:    rm,
		accounts: accounts,
		handler:  handler,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	if err := app.repos.RunMigrations(ctx); err != nil {
		app.logger.Error(ctx, "migration error", "error", err.Error())
		return
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Conn().Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}

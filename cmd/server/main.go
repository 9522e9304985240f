// Command server runs the SSO cookie helper: the login endpoint that mints
// signed auth tickets and the /auth verifier the fronting web servers call.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stellwand/sso-cookie-helper/internal/config"
	httpx "github.com/stellwand/sso-cookie-helper/internal/http"
	"github.com/stellwand/sso-cookie-helper/internal/observability"
	"github.com/stellwand/sso-cookie-helper/internal/userstore"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		// No logger yet; this is the one place stderr is used directly.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	logger.Info("configuration loaded", zap.Any("config", cfg.Redacted()))

	users, err := userstore.Open(cfg.UsersFile)
	if err != nil {
		logger.Error("loading users file", zap.Error(err))
		return err
	}
	logger.Info("users file loaded", zap.String("file", cfg.UsersFile), zap.Int("users", users.Len()))

	watcher := userstore.NewWatcher(users, userstore.WithLogger(logger))
	if err := watcher.Start(); err != nil {
		logger.Error("starting users file watcher", zap.Error(err))
		return err
	}
	defer watcher.Stop()

	metrics := observability.NewMetrics()
	metrics.UsersLoaded.Set(float64(users.Len()))

	router, err := httpx.NewRouter(cfg, users, logger, metrics)
	if err != nil {
		logger.Error("building router", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

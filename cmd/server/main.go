package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/diewo77/techfix-admin/internal/cart"
	"github.com/diewo77/techfix-admin/internal/config"
	"github.com/diewo77/techfix-admin/internal/server"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	carts, err := cart.Open(cfg.LocalStorePath)
	if err != nil {
		logger.Fatal("open local store", zap.Error(err))
	}

	client := techfix.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	sessions := session.NewProvider(client, cfg.SessionSecret, 5*time.Minute)

	handler := server.New(server.Deps{
		Client:   client,
		Sessions: sessions,
		Carts:    carts,
		Log:      logger,
	})
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: handler}

	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

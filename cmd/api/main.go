// Package main is the entry point for the auth service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/codeplatform/auth-service/docs"
	"github.com/codeplatform/auth-service/internal/api"
	"github.com/codeplatform/auth-service/internal/core/service"
	"github.com/codeplatform/auth-service/internal/infrastructure/config"
	mongodb "github.com/codeplatform/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/codeplatform/auth-service/internal/infrastructure/db/redis"
	"github.com/codeplatform/auth-service/internal/infrastructure/queue"
	"github.com/codeplatform/auth-service/pkg/logger"
)

// @title CodePlatform Auth API
// @version 1.0
// @description Authentication backend for the CodePlatform learning platform.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(logger.Options{Level: "info"})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration load failed")
	}
	log = logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// Audit pipeline: events flow handler → dispatcher → audit service → mongo.
	auditRepo := mongodb.NewAuditRepository(db)
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(0, auditService, log)
	dispatcher.Start(ctx)

	e, identityRepo := api.NewRouter(db, rdb, cfg, log, dispatcher)

	// The (email, role) unique index is the uniqueness authority for signups;
	// refuse to serve without it.
	if err := identityRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("identity index bootstrap failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting auth service")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("auth service stopped")
}

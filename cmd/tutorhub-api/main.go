package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutorhub-api/api/swagger"
	"github.com/noah-isme/tutorhub-api/internal/handler"
	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	"github.com/noah-isme/tutorhub-api/internal/router"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/cache"
	"github.com/noah-isme/tutorhub-api/pkg/config"
	"github.com/noah-isme/tutorhub-api/pkg/idgen"
	"github.com/noah-isme/tutorhub-api/pkg/logger"
)

// @title TutorHub API
// @version 1.0.0
// @description Teacher/student directory and session calendar for the tutoring front end
// @BasePath /api/v1
// @schemes http

// createdStudentSeq starts above the seed so generated ids read like the demo data.
const createdStudentSeq = 1013

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	validate := validator.New()
	metrics := service.NewMetricsService()

	var seed []models.User
	if cfg.Directory.SeedEnabled {
		seed = repository.SeedUsers()
	}
	users := repository.NewUserRepository(seed)
	events := repository.NewCalendarRepository(idgen.New("event", 0, nil).Next)

	checks := map[string]handler.ReadinessCheck{}
	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, directory cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(client, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
			checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, client) }
		}
	}

	directory, err := service.NewDirectoryService(ctx, users, validate, logr, service.DirectoryOptions{
		CurrentUserID: cfg.Directory.CurrentUserID,
		Latency:       cfg.MockLatency,
		NewStudentID:  idgen.New("user-s", createdStudentSeq, nil).Next,
		Cache:         cacheSvc,
		Metrics:       metrics,
	})
	if err != nil {
		logr.Fatal("failed to init directory", zap.Error(err))
	}
	calendar := service.NewCalendarService(events, validate, logr, metrics, cfg.MockLatency)
	exports := service.NewExportService(directory, calendar, logr)

	r := router.New(router.Deps{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Docs.Enabled,
		Logger:         logr,
		Metrics:        metrics,
		Users:          handler.NewUserHandler(directory),
		Teachers:       handler.NewTeacherHandler(directory, exports),
		Calendar:       handler.NewCalendarHandler(calendar, directory, exports),
		Observability:  handler.NewMetricsHandler(metrics, checks),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env,
		"seeded_users", len(seed), "cache", cacheSvc.Enabled(), "mock_latency", cfg.MockLatency.String())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func pingRedis(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

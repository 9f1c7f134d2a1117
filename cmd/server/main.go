package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/linkboard/config"
	"github.com/d60-Lab/linkboard/internal/api"
	"github.com/d60-Lab/linkboard/internal/api/handler"
	"github.com/d60-Lab/linkboard/internal/api/middleware"
	"github.com/d60-Lab/linkboard/internal/auth"
	"github.com/d60-Lab/linkboard/internal/cache"
	"github.com/d60-Lab/linkboard/internal/repository"
	"github.com/d60-Lab/linkboard/internal/service"
	"github.com/d60-Lab/linkboard/pkg/database"
	"github.com/d60-Lab/linkboard/pkg/logger"
	"github.com/d60-Lab/linkboard/pkg/monitor"
	"github.com/d60-Lab/linkboard/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	sentryOn, err := monitor.InitSentry(cfg.Sentry)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer monitor.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn("tracing init failed", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		os.Exit(1)
	}

	// redis 不可用时降级为直接查库
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, post cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// repositories & services
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	blockRepo := repository.NewBlockRepository(db)

	tokens := auth.NewRememberTokens(cfg.Server.SessionSecret, time.Duration(cfg.Server.RememberDays)*24*time.Hour)
	userSvc := service.NewUserService(userRepo, auth.NewPasswordService())
	listCache := cache.NewPostListCache(redisClient, cfg.Redis.PostCacheTTL)
	postSvc := service.NewPostService(postRepo, listCache)
	commentSvc := service.NewCommentService(commentRepo, postRepo, listCache)
	relSvc := service.NewRelationshipService(blockRepo)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := limiter.Cleanup(10 * time.Minute); n > 0 {
					logger.Debug("rate limiter cleanup", zap.Int("removed", n))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	r, err := api.SetupRouter(api.Deps{
		Config:        cfg,
		Handler:       handler.NewHandler(userSvc, postSvc, commentSvc, relSvc, tokens),
		Users:         userSvc,
		Tokens:        tokens,
		RateLimiter:   limiter,
		Registry:      registry,
		SentryEnabled: sentryOn,
	})
	if err != nil {
		logger.Error("router setup failed", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", zap.Error(err))
	}
}

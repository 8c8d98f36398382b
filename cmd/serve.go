package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"client-tasks.com/client-tasks/internal/cache"
	config "client-tasks.com/client-tasks/internal/configs"
	httpapi "client-tasks.com/client-tasks/internal/http"
	middleware "client-tasks.com/client-tasks/internal/http/middlewares"
	repository "client-tasks.com/client-tasks/internal/repositories"
	"client-tasks.com/client-tasks/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Migrates the schema, then serves the tasks API until SIGINT or SIGTERM",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if err := config.Migrate(db); err != nil {
			return err
		}

		taskRepo := repository.NewTaskRepository(db)
		clientRepo := repository.NewClientRepository(db)

		var (
			opts    []services.Option
			limiter middleware.Limiter = middleware.NewMemoryLimiter(cfg.RateLimit, time.Minute)
		)

		if cfg.CacheEnabled {
			redisClient, err := config.NewRedisClient(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			ttl := time.Duration(cfg.OverdueCacheTTLSeconds) * time.Second
			opts = append(opts, services.WithOverdueCache(cache.NewRedisOverdueCache(redisClient, cfg.OverdueCacheKey, ttl)))
			limiter = middleware.NewRedisLimiter(redisClient, "tasks:ratelimit", cfg.RateLimit, time.Minute)
		}

		taskService := services.NewTaskService(taskRepo, clientRepo, log, opts...)

		var warmer *services.OverdueWarmer
		if cfg.CacheEnabled {
			warmer = services.NewOverdueWarmer(taskService, time.Duration(cfg.OverdueWarmIntervalSeconds)*time.Second, log)
			warmer.Start()
		}

		e := echo.New()
		e.HideBanner = true
		e.Use(echomw.Recover())
		e.Use(echomw.RequestID())
		e.Use(middleware.RequestLogger(log))
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowCredentials: true,
		}))

		httpapi.Register(e, httpapi.NewHandler(taskService), limiter, log)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			log.Info("HTTP server listening", zap.String("addr", cfg.AppURL))
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server stopped", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)

		if warmer != nil {
			warmer.Shutdown(shutdownCtx)
		}

		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}

		log.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

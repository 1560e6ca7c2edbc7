package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invensight/invensight/internal/api"
	"github.com/invensight/invensight/internal/cache"
	"github.com/invensight/invensight/internal/config"
	"github.com/invensight/invensight/internal/repository/postgres"
	"github.com/invensight/invensight/internal/scheduler"
	"github.com/invensight/invensight/internal/service"
	"github.com/invensight/invensight/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	overviewCache, err := cache.NewOverviewCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		overviewCache = cache.NewNoopOverviewCache()
	}

	snapshots := postgres.NewSnapshotRepository(db.DB)
	health := postgres.NewHealthRepository(db.DB)
	alerts := postgres.NewAlertRepository(db.DB)
	forecasts := postgres.NewForecastRepository(db)
	reorders := postgres.NewReorderRepository(db.DB)
	anomalies := postgres.NewAnomalyRepository(db.DB)

	refreshService := service.NewRefreshService(
		snapshots, health, alerts, forecasts, reorders, anomalies,
		overviewCache, cfg.Pipeline,
	)
	inventoryService := service.NewInventoryService(
		snapshots, health, alerts, forecasts, reorders, anomalies,
		overviewCache,
	)

	sched := scheduler.New(refreshService, cfg.Pipeline)
	inventoryService.OnChange(sched.NotifyChange)

	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	go func() {
		if err := sched.Run(schedCtx); err != nil && err != context.Canceled {
			logger.Log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	router := api.NewRouter(&api.Services{
		Inventory: inventoryService,
		Refresh:   refreshService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server...")

	stopSched()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}

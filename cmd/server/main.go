package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coterran/internal/config"
	cronrunner "coterran/internal/cron"
	"coterran/internal/db"
	"coterran/internal/handler"
	"coterran/internal/logger"
	gormrepository "coterran/internal/repository/gorm"
	"coterran/internal/service"
)

//go:generate swag init -g main.go -d ./,../../internal/handler -o ../../docs

func main() {
	cfgPath := os.Getenv("CT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	consensusSvc := &service.ConsensusService{Repo: store}
	predictionSvc := &service.PredictionService{Repo: store, Logger: logger}
	resolutionSvc := &service.ResolutionService{Repo: store, Logger: logger}
	leaderboardSvc := &service.LeaderboardService{Repo: store, DefaultLimit: cfg.Leaderboard.DefaultLimit}
	snapshotSvc := &service.SnapshotService{
		Repo:   store,
		Logger: logger,
		Retention: service.RetentionConfig{
			DailyDays:   cfg.Snapshots.RetentionDailyDays,
			WeeklyWeeks: cfg.Snapshots.RetentionWeeklyWeeks,
		},
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Snapshots: snapshotSvc}
	healthHandler.Register(engine)
	marketHandler := &handler.MarketHandler{Repo: store, Consensus: consensusSvc, Resolution: resolutionSvc}
	marketHandler.Register(engine)
	predictionHandler := &handler.PredictionHandler{Repo: store, Svc: predictionSvc}
	predictionHandler.Register(engine)
	leaderboardHandler := &handler.LeaderboardHandler{Svc: leaderboardSvc}
	leaderboardHandler.Register(engine)
	oddsHandler := &handler.OddsHistoryHandler{Repo: store}
	oddsHandler.Register(engine)
	snapshotHandler := &handler.SnapshotHandler{Repo: store, Svc: snapshotSvc}
	snapshotHandler.Register(engine)
	adminHandler := &handler.AdminHandler{Repo: store}
	adminHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		jobs := []struct {
			name string
			spec string
			run  func(context.Context) error
		}{
			{"daily_snapshot", cfg.Cron.DailySnapshot, func(ctx context.Context) error {
				_, err := snapshotSvc.RunDaily(ctx)
				return err
			}},
			{"weekly_snapshot", cfg.Cron.WeeklySnapshot, func(ctx context.Context) error {
				_, err := snapshotSvc.RunWeekly(ctx)
				return err
			}},
			{"monthly_snapshot", cfg.Cron.MonthlySnapshot, func(ctx context.Context) error {
				_, err := snapshotSvc.RunMonthly(ctx)
				return err
			}},
			{"snapshot_cleanup", cfg.Cron.Cleanup, func(ctx context.Context) error {
				_, err := snapshotSvc.Cleanup(ctx)
				return err
			}},
			{"health_probe", cfg.Cron.Health, func(ctx context.Context) error {
				_, err := snapshotSvc.Health(ctx)
				return err
			}},
		}
		for _, job := range jobs {
			if _, err := cronRunner.Add(job.name, job.spec, job.run); err != nil {
				logger.Warn("cron register failed",
					zap.String("job", job.name),
					zap.Error(err),
				)
			}
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

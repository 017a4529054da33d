package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/geepos/geepos/internal/app"
	"github.com/geepos/geepos/internal/dashboard"
	"github.com/geepos/geepos/internal/exports"
	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/masterdata/zones"
	"github.com/geepos/geepos/internal/platform/cache"
	"github.com/geepos/geepos/internal/platform/db"
	"github.com/geepos/geepos/internal/shared"
	"github.com/geepos/geepos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	productsRepo := products.NewRepository(pool)
	zonesRepo := zones.NewRepository(pool)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)

	exportsRepo := exports.NewRepository(pool)
	exportsJournal := exports.NewJournal(redisClient, cfg.ExportJournalKey)
	exportsService := exports.NewService(exportsRepo, productsRepo, productsRepo, zonesRepo, exportsJournal, auditLogger, dashboardCache, logger)

	reconcileTask, err := jobs.NewExportReconcileTask(time.Now().UTC())
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}
	lowStockTask, err := jobs.NewLowStockScanTask(time.Now().UTC())
	if err != nil {
		logger.Error("build low stock task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExportReconcile, Handler: jobs.NewExportReconcileHandler(exportsService, logger)},
			{Type: jobs.TaskLowStockScan, Handler: jobs.NewLowStockScanHandler(productsRepo, dashboardCache, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: reconcileTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: lowStockTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

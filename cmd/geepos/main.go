package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/geepos/geepos/internal/app"
	"github.com/geepos/geepos/internal/auth"
	"github.com/geepos/geepos/internal/dashboard"
	"github.com/geepos/geepos/internal/exports"
	"github.com/geepos/geepos/internal/imports"
	"github.com/geepos/geepos/internal/masterdata/products"
	"github.com/geepos/geepos/internal/masterdata/suppliers"
	"github.com/geepos/geepos/internal/masterdata/zones"
	"github.com/geepos/geepos/internal/observability"
	"github.com/geepos/geepos/internal/orders"
	"github.com/geepos/geepos/internal/platform/cache"
	"github.com/geepos/geepos/internal/platform/db"
	"github.com/geepos/geepos/internal/rbac"
	"github.com/geepos/geepos/internal/sales"
	"github.com/geepos/geepos/internal/shared"
	"github.com/geepos/geepos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "geepos_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rbacService := rbac.NewService()
	guard := rbac.Guard{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo)
	productsHandler := products.NewHandler(logger, productsService)

	suppliersRepo := suppliers.NewRepository(dbpool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	zonesRepo := zones.NewRepository(dbpool)
	zonesService := zones.NewService(zonesRepo)
	zonesHandler := zones.NewHandler(logger, zonesService)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	if err := dashboardCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("dashboard cache subscribe", slog.Any("error", err))
	}

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, auditLogger, dashboardCache)
	ordersHandler := orders.NewHandler(logger, ordersService)

	importsRepo := imports.NewRepository(dbpool)
	importsService := imports.NewService(importsRepo, ordersRepo, productsRepo, auditLogger, dashboardCache, logger)
	importsHandler := imports.NewHandler(logger, importsService)

	exportsRepo := exports.NewRepository(dbpool)
	exportsJournal := exports.NewJournal(redisClient, cfg.ExportJournalKey)
	exportsService := exports.NewService(exportsRepo, productsRepo, productsRepo, zonesRepo, exportsJournal, auditLogger, dashboardCache, logger)
	exportsHandler := exports.NewHandler(logger, exportsService)

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(salesRepo, productsRepo, auditLogger, dashboardCache)
	salesHandler := sales.NewHandler(logger, salesService)
	dashboardService := dashboard.NewService(productsRepo, salesService, ordersRepo, exportsService, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Guard:              guard,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		DashboardHandler:   dashboardHandler,
		ProductsHandler:    productsHandler,
		SuppliersHandler:   suppliersHandler,
		ZonesHandler:       zonesHandler,
		OrdersHandler:      ordersHandler,
		ImportsHandler:     importsHandler,
		ExportsHandler:     exportsHandler,
		SalesHandler:       salesHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

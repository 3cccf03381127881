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

	"github.com/meridian-agro/meridian/internal/app"
	"github.com/meridian-agro/meridian/internal/catalog"
	"github.com/meridian-agro/meridian/internal/dashboard"
	"github.com/meridian-agro/meridian/internal/directory"
	"github.com/meridian-agro/meridian/internal/inventory"
	"github.com/meridian-agro/meridian/internal/notify"
	"github.com/meridian-agro/meridian/internal/orders"
	"github.com/meridian-agro/meridian/internal/platform/cache"
	"github.com/meridian-agro/meridian/internal/platform/db"
	"github.com/meridian-agro/meridian/internal/rfq"
	"github.com/meridian-agro/meridian/internal/shared"
	"github.com/meridian-agro/meridian/internal/shipments"
	"github.com/meridian-agro/meridian/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	queueClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	notifier := notify.NewQueue(queueClient, logger)

	auditLogger := shared.NewAuditLogger(pool)
	invalidator := shared.NewInvalidator(redisClient, logger)

	catalogService := catalog.NewService(catalog.NewRepository(pool), invalidator)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, invalidator)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	rfqService := rfq.NewService(rfq.NewRepository(pool), notifier, invalidator)
	rfqHandler := rfq.NewHandler(logger, rfqService)

	directoryService := directory.NewService(
		directory.NewLeadRepository(pool),
		directory.NewCustomerRepository(pool),
		invalidator,
	)
	directoryHandler := directory.NewHandler(logger, directoryService)

	ordersService := orders.NewService(orders.ServiceConfig{
		Repo:        orders.NewRepository(pool),
		Inventory:   inventoryService,
		Products:    orders.CatalogGate{Catalog: catalogService},
		RFQs:        orders.RFQLink{RFQs: rfqService},
		Customers:   orders.DirectoryLookup{Directory: directoryService},
		Notifier:    notifier,
		Audit:       auditLogger,
		Invalidator: invalidator,
		Logger:      logger,
	})
	ordersHandler := orders.NewHandler(logger, ordersService)

	shipmentsService := shipments.NewService(
		shipments.NewRepository(pool),
		shipments.FulfillmentGate{Orders: ordersService},
		auditLogger,
		invalidator,
		logger,
	)
	shipmentsHandler := shipments.NewHandler(logger, shipmentsService)

	dashboardService := dashboard.NewService(dashboard.NewRepository(pool), inventoryService, redisClient, invalidator, logger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		StaffChecker:     app.StaticStaffChecker(cfg.StaffTokens),
		CatalogHandler:   catalogHandler,
		InventoryHandler: inventoryHandler,
		RFQHandler:       rfqHandler,
		DirectoryHandler: directoryHandler,
		OrdersHandler:    ordersHandler,
		ShipmentsHandler: shipmentsHandler,
		DashboardHandler: dashboardHandler,
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

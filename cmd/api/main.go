package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/application/service"
	"github.com/sangkips/pscafe-console/internal/config"
	"github.com/sangkips/pscafe-console/internal/domain/entity"
	domainRepo "github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/internal/infrastructure/backend"
	"github.com/sangkips/pscafe-console/internal/infrastructure/cache"
	"github.com/sangkips/pscafe-console/internal/infrastructure/database"
	"github.com/sangkips/pscafe-console/internal/infrastructure/queue"
	"github.com/sangkips/pscafe-console/internal/infrastructure/repository"
	"github.com/sangkips/pscafe-console/internal/presentation/http/handler"
	"github.com/sangkips/pscafe-console/internal/presentation/http/routes"
	"github.com/sangkips/pscafe-console/pkg/logger"
	"github.com/sangkips/pscafe-console/pkg/printer"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(cfg.App.Env, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var closers []func() error

	// Local storage for drafts and idempotency keys
	var (
		draftRepo       domainRepo.DraftRepository
		idempotencyRepo domainRepo.IdempotencyRepository
	)
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, appLogger)
		if err != nil {
			appLogger.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := database.AutoMigrate(db, appLogger); err != nil {
			appLogger.Fatal("failed to run migrations", zap.Error(err))
		}
		draftRepo = repository.NewDraftRepository(db)
		idempotencyRepo = repository.NewIdempotencyRepository(db)
	} else {
		appLogger.Info("database disabled, keeping drafts and idempotency keys in memory")
		draftRepo = repository.NewMemoryDraftRepository()
		idempotencyRepo = repository.NewMemoryIdempotencyRepository()
	}
	if !cfg.Checkout.DraftsEnabled {
		draftRepo = nil
	}

	// Catalog cache
	var catalogCache domainRepo.CatalogCache = cache.NoopCatalogCache{}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCatalogCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			appLogger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			_ = redisCache.Close()
		} else {
			catalogCache = redisCache
			closers = append(closers, redisCache.Close)
		}
		cancel()
	}

	// Sale events
	var events domainRepo.SaleEventPublisher = queue.NoopPublisher{}
	if cfg.Queue.URL != "" {
		events = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.SaleEventQueue, appLogger)
	}

	// Backend client
	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("invalid backend configuration", zap.Error(err))
	}

	// Printer
	frame, err := printer.NewFrameFromConfig(printer.FrameConfig{
		Type:     cfg.Printer.Type,
		SpoolDir: cfg.Printer.SpoolDir,
		USBPath:  cfg.Printer.USBPath,
		Address:  cfg.Printer.Address,
	})
	if err != nil {
		appLogger.Warn("failed to initialize printer, printing disabled", zap.Error(err))
		frame = nil
	}
	spooler := printer.NewSpooler(frame, printer.SpoolerOptions{
		SettleDelay:  cfg.Printer.SettleDelay,
		AfterPrint:   cfg.Printer.AfterPrint,
		OnTransition: service.LogTransition(appLogger.Named("spooler")),
	})
	header := entity.ReceiptHeader{
		StoreName: cfg.Business.StoreName,
		Address:   cfg.Business.Address,
		Phone:     cfg.Business.Phone,
	}
	printerService := service.NewPrinterService(spooler, service.PrinterOptions{
		Type:     cfg.Printer.Type,
		Header:   header,
		Currency: cfg.Business.Currency,
		Layout: printer.Layout{
			Dir:       cfg.Printer.Direction,
			Lang:      cfg.Printer.Lang,
			CharWidth: cfg.Printer.CharWidth,
		},
		Logger: appLogger,
	})
	closers = append(closers, printerService.Close)

	// Initialize services
	checkoutService := service.NewCheckoutService(client, printerService, service.CheckoutOptions{
		Cache:      catalogCache,
		CacheTTL:   cfg.Redis.CatalogTTL,
		Drafts:     draftRepo,
		Events:     events,
		Header:     header,
		TimeLayout: cfg.Checkout.ReceiptTimeLayout,
		Logger:     appLogger,
	}, service.DrinksCheckout(client), service.SessionCheckout(client))
	reportService := service.NewReportService(client, client, client, client, printerService, service.ReportOptions{
		TimeLayout: cfg.Checkout.ReceiptTimeLayout,
		Currency:   cfg.Business.Currency,
		Logger:     appLogger,
	})

	// Initialize handlers
	handlers := &routes.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Report:   handler.NewReportHandler(reportService),
		Printer:  handler.NewPrinterHandler(printerService),
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Logger:          appLogger,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		appLogger.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("printer", cfg.Printer.Type),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("server error", zap.Error(err))
		}
	}()

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	go purgeIdempotencyKeys(cleanupCtx, idempotencyRepo, appLogger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	stopCleanup()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("shutdown error", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			appLogger.Warn("close error", zap.Error(err))
		}
	}

	appLogger.Info("server stopped")
}

// purgeIdempotencyKeys removes expired idempotency keys every hour.
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, appLogger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				appLogger.Warn("expired idempotency keys not purged", zap.Error(err))
			}
		}
	}
}

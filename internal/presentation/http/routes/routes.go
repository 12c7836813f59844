package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/config"
	domainRepo "github.com/sangkips/pscafe-console/internal/domain/repository"
	"github.com/sangkips/pscafe-console/internal/presentation/http/handler"
	"github.com/sangkips/pscafe-console/internal/presentation/http/middleware"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Checkout *handler.CheckoutHandler
	Report   *handler.ReportHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.RateLimiter
	Logger          *zap.Logger
}

// NewRateLimiter builds the per-operator limiter from the configured budget
// of RATE_LIMIT_REQUESTS per RATE_LIMIT_DURATION seconds.
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.RateLimiter {
	perSecond := 0.0
	if cfg.Duration > 0 {
		perSecond = float64(cfg.Requests) / float64(cfg.Duration)
	}
	return middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: perSecond,
		BurstSize:         cfg.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rateLimiter := deps.RateLimiter
	if rateLimiter == nil {
		rateLimiter = NewRateLimiter(deps.Cfg.RateLimit)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.TerminalMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"printer": h.Printer.Status(),
			"limiter": rateLimiter.Stats(),
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(middleware.AuthConfig{Required: deps.Cfg.Auth.RequireOperator}))
	v1.Use(rateLimiter.Middleware())
	{
		registerCheckoutRoutes(v1, h, deps, logger)
		registerReportRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerCheckoutRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps, logger *zap.Logger) {
	checkout := v1.Group("/checkout/:variant")
	{
		checkout.GET("", h.Checkout.GetState)
		checkout.POST("/catalog/reload", h.Checkout.ReloadCatalog)
		checkout.POST("/catalog/select", h.Checkout.SelectCategory)
		checkout.POST("/cart/items", h.Checkout.AddItem)
		checkout.PUT("/cart/items/:item_id", h.Checkout.UpdateItem)
		checkout.DELETE("/cart/items/:item_id", h.Checkout.RemoveItem)
		checkout.DELETE("/cart", h.Checkout.ClearCart)
		checkout.GET("/receipt", h.Checkout.GetReceipt)
		checkout.POST("/receipt/print", h.Checkout.PrintReceipt)

		// Order submission honours Idempotency-Key
		checkout.POST("/submit", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: logger,
		}), h.Checkout.Submit)
	}
}

func registerReportRoutes(v1 *gin.RouterGroup, h *Handlers) {
	reports := v1.Group("/reports")
	{
		reports.GET("/sales", h.Report.Sales)
		reports.GET("/sessions", h.Report.Sessions)
		reports.GET("/:kind/print", h.Report.Render)
		reports.POST("/:kind/print", h.Report.Print)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printer := v1.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
	}
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salesbook-api/internal/config"
	domainRepo "github.com/sangkips/salesbook-api/internal/domain/repository"
	"github.com/sangkips/salesbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/salesbook-api/internal/presentation/http/handler"
	"github.com/sangkips/salesbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/salesbook-api/pkg/metrics"
	"github.com/sangkips/salesbook-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Sale    *handler.SaleHandler
	Printer *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.ClientRateLimiter
	IdempotencyRepo domainRepo.IdempotencyRepository
	// Verifier is nil when bearer tokens are not checked
	Verifier *utils.TokenVerifier
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		deps.Logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		response.ErrorWithCode(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	}))
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Served at the root and under /api, the paths the web client uses
	registerSalesRoutes(router.Group(""), h, deps)
	registerSalesRoutes(router.Group("/api"), h, deps)

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	return router
}

func registerSalesRoutes(group *gin.RouterGroup, h *Handlers, deps *Deps) {
	if deps.RateLimiter != nil {
		group.Use(deps.RateLimiter.Middleware())
	}
	if deps.Verifier != nil {
		group.Use(middleware.AuthMiddleware(deps.Verifier))
	}

	create := []gin.HandlerFunc{h.Sale.Create}
	if deps.IdempotencyRepo != nil {
		create = append([]gin.HandlerFunc{middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		})}, create...)
	}

	transactions := group.Group("/sale-transactions")
	{
		transactions.POST("", create...)
		transactions.GET("", h.Sale.List)
		transactions.POST("/quote", h.Sale.Quote)
	}

	sales := group.Group("/sales")
	{
		sales.GET("/:id", h.Sale.Get)
		sales.DELETE("/:id", h.Sale.Delete)
		sales.POST("/:id/print", h.Printer.PrintSale)
	}

	group.GET("/printer/status", h.Printer.GetStatus)
}

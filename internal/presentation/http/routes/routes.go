package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lanchonete/pos-api/internal/config"
	domainRepo "github.com/lanchonete/pos-api/internal/domain/repository"
	"github.com/lanchonete/pos-api/internal/presentation/http/handler"
	"github.com/lanchonete/pos-api/internal/presentation/http/middleware"
	"github.com/lanchonete/pos-api/pkg/utils"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	Auth    *handler.AuthHandler
	Cashier *handler.CashierHandler
	Order   *handler.OrderHandler
	Product *handler.ProductHandler
	Report  *handler.ReportHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	JWTManager      *utils.JWTManager
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup configures all application routes
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	if !deps.Cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": deps.Cfg.App.Name})
	})

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
		BurstSize:         deps.Cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          15 * time.Minute,
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTManager))
	protected.Use(rateLimiter.Middleware())
	{
		protected.GET("/auth/profile", h.Auth.GetProfile)

		cashier := protected.Group("/cashier")
		cashier.Use(middleware.Idempotency(deps.IdempotencyRepo))
		{
			cashier.POST("/open", h.Cashier.Open)
			cashier.POST("/close", h.Cashier.Close)
			cashier.POST("/inflow", h.Cashier.RegisterInflow)
			cashier.POST("/outflow", h.Cashier.RegisterOutflow)
			cashier.GET("/status", h.Cashier.GetStatus)
			cashier.GET("/balance", h.Cashier.GetBalance)
			cashier.GET("/movements", h.Cashier.ListMovements)
		}

		orders := protected.Group("/orders")
		{
			orders.POST("", h.Order.Create)
			orders.GET("", h.Order.List)
			orders.GET("/:id", h.Order.Get)
			orders.PATCH("/:id/status", h.Order.UpdateStatus)
			// A double-submitted completion would charge the drawer twice.
			orders.POST("/:id/complete", middleware.IdempotencyRequired(deps.IdempotencyRepo), h.Order.Complete)
		}

		products := protected.Group("/products")
		{
			products.GET("", h.Product.List)
			products.GET("/:id", h.Product.Get)
		}

		categories := protected.Group("/categories")
		{
			categories.GET("", h.Product.ListCategories)
		}

		admin := protected.Group("")
		admin.Use(middleware.RequireAdministrator())
		{
			admin.POST("/auth/users", h.Auth.CreateUser)

			admin.POST("/products", h.Product.Create)
			admin.PUT("/products/:id", h.Product.Update)
			admin.DELETE("/products/:id", h.Product.Delete)

			admin.POST("/categories", h.Product.CreateCategory)
			admin.DELETE("/categories/:id", h.Product.DeleteCategory)

			reports := admin.Group("/reports")
			{
				reports.GET("/daily", h.Report.DailySummary)
				reports.GET("/shortages", h.Report.Shortages)
				reports.GET("/till", h.Report.TillStatus)
			}
		}
	}

	return router
}

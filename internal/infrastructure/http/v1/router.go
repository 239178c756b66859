// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	appctx "posrail/internal/core/context"
	"posrail/internal/domain/alerts"
	"posrail/internal/domain/auth"
	"posrail/internal/domain/catalog/category"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/domain/expense"
	"posrail/internal/domain/pos"
	"posrail/internal/domain/reports"
	"posrail/internal/domain/stock"
	"posrail/internal/infrastructure/http/v1/handlers"
	"posrail/internal/infrastructure/http/v1/middleware"
	"posrail/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Pool   *pgxpool.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	CategoryService *category.Service
	ProductService  *product.Service
	StockService    *stock.Service
	AlertEngine     *alerts.Engine
	Coordinator     *pos.Coordinator
	ExpenseService  *expense.Service
	ReportsService  *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	categoryHandler := handlers.NewCategoryHandler(base, cfg.CategoryService)
	productHandler := handlers.NewProductHandler(base, cfg.ProductService)
	stockHandler := handlers.NewStockHandler(base, cfg.StockService, cfg.AlertEngine)
	saleHandler := handlers.NewSaleHandler(base, cfg.Coordinator)
	expenseHandler := handlers.NewExpenseHandler(base, cfg.ExpenseService)
	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)

	api := router.Group("/api/v1")
	{
		// Public auth endpoint
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		{
			protected.GET("/auth/me", authHandler.Me)

			// Catalog reads are open to both roles; writes are admin-only.
			protected.GET("/categories", categoryHandler.List)
			protected.GET("/products", productHandler.List)
			protected.GET("/products/:id", productHandler.Get)
			protected.GET("/products/barcode/:barcode", productHandler.GetByBarcode)

			// Register operations: any authenticated user.
			protected.POST("/sales", saleHandler.Checkout)
			protected.GET("/sales", saleHandler.List)
			protected.GET("/sales/:id", saleHandler.Get)

			protected.GET("/stock/movements", stockHandler.Movements)
			protected.GET("/stock/alerts", stockHandler.Alerts)
			protected.GET("/stock/reconcile/:id", stockHandler.Reconcile)
		}

		admin := api.Group("")
		admin.Use(middleware.Auth(cfg.JWTValidator))
		admin.Use(middleware.RequireRole(appctx.RoleAdmin))
		{
			admin.POST("/users", authHandler.CreateUser)
			admin.GET("/users", authHandler.ListUsers)
			admin.PUT("/users/:id/password", authHandler.ChangePassword)
			admin.DELETE("/users/:id", authHandler.DeactivateUser)

			admin.POST("/categories", categoryHandler.Create)
			admin.PUT("/categories/:id", categoryHandler.Update)
			admin.DELETE("/categories/:id", categoryHandler.Delete)

			admin.POST("/products", productHandler.Create)
			admin.PUT("/products/:id", productHandler.Update)
			admin.DELETE("/products/:id", productHandler.Delete)

			// Sale reversal restores stock; restricted to admins.
			admin.DELETE("/sales/:id", saleHandler.Reverse)

			admin.POST("/stock/movements", stockHandler.Move)

			admin.POST("/expenses", expenseHandler.Create)
			admin.GET("/expenses", expenseHandler.List)
			admin.DELETE("/expenses/:id", expenseHandler.Delete)

			admin.GET("/reports/financial", reportsHandler.Financial)
			admin.GET("/reports/product-sales", reportsHandler.ProductSales)
			admin.GET("/reports/capital", reportsHandler.Capital)
			admin.GET("/reports/daily", reportsHandler.DailySummary)
		}
	}

	return router
}

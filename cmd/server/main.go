// Package main is the entry point for the posrail API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"posrail/internal/domain/alerts"
	"posrail/internal/domain/auth"
	"posrail/internal/domain/catalog/category"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/domain/expense"
	"posrail/internal/domain/pos"
	"posrail/internal/domain/reports"
	"posrail/internal/domain/stock"
	v1 "posrail/internal/infrastructure/http/v1"
	"posrail/internal/infrastructure/storage/postgres"
	"posrail/internal/infrastructure/storage/postgres/auth_repo"
	"posrail/internal/infrastructure/storage/postgres/catalog_repo"
	"posrail/internal/infrastructure/storage/postgres/expense_repo"
	"posrail/internal/infrastructure/storage/postgres/ledger_repo"
	"posrail/internal/infrastructure/storage/postgres/report_repo"
	"posrail/internal/infrastructure/storage/postgres/sale_repo"
	"posrail/pkg/logger"
	"posrail/pkg/validator"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting posrail server")

	if err := validator.Register(); err != nil {
		log.Fatalw("failed to register validators", "error", err)
	}

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)
	saleRepo := sale_repo.NewSaleRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	expenseRepo := expense_repo.NewExpenseRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	stockService := stock.NewService(movementRepo, productRepo, txManager, auditService)
	productService := product.NewService(productRepo, stockService, txManager)
	categoryService := category.NewService(categoryRepo, productRepo)
	coordinator := pos.NewCoordinator(saleRepo, productRepo, movementRepo, txManager, auditService)
	expenseService := expense.NewService(expenseRepo)
	reportsService := reports.NewService(reportRepo)

	alertEngine, err := alerts.NewEngine(productRepo)
	if err != nil {
		log.Fatalw("failed to create alert engine", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool.Pool,
		Logger:          log,
		JWTValidator:    jwtService,
		AuthService:     authService,
		CategoryService: categoryService,
		ProductService:  productService,
		StockService:    stockService,
		AlertEngine:     alertEngine,
		Coordinator:     coordinator,
		ExpenseService:  expenseService,
		ReportsService:  reportsService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

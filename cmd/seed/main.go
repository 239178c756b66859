// Package main seeds a fresh posrail database with an admin user and a
// small demo catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	appctx "posrail/internal/core/context"
	"posrail/internal/core/types"
	"posrail/internal/domain/audit"
	"posrail/internal/domain/auth"
	"posrail/internal/domain/catalog/category"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/domain/stock"
	"posrail/internal/infrastructure/storage/postgres"
	"posrail/internal/infrastructure/storage/postgres/auth_repo"
	"posrail/internal/infrastructure/storage/postgres/catalog_repo"
	"posrail/internal/infrastructure/storage/postgres/ledger_repo"
	"posrail/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	userRepo := auth_repo.NewUserRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	categoryRepo := catalog_repo.NewCategoryRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)

	authService := auth.NewService(userRepo, auth.NewJWTService(auth.DefaultJWTConfig("seed")), auth.DefaultServiceConfig())
	stockService := stock.NewService(movementRepo, productRepo, txManager, audit.Nop{})
	productService := product.NewService(productRepo, stockService, txManager)
	categoryService := category.NewService(categoryRepo, productRepo)

	// Admin account
	adminEmail := getEnv("SEED_ADMIN_EMAIL", "admin@posrail.local")
	adminPassword := getEnv("SEED_ADMIN_PASSWORD", "changeme123")
	admin, err := authService.CreateUser(ctx, adminEmail, "Administrator", adminPassword, appctx.RoleAdmin)
	if err != nil {
		log.Fatalw("failed to create admin user", "error", err)
	}
	log.Infow("admin user created", "email", adminEmail)

	// Demo catalog
	grains := category.New("Grains")
	if err := categoryService.Create(ctx, grains); err != nil {
		log.Fatalw("failed to create category", "error", err)
	}
	drinks := category.New("Drinks")
	if err := categoryService.Create(ctx, drinks); err != nil {
		log.Fatalw("failed to create category", "error", err)
	}

	rice := product.New("Rice", grains.ID, types.UnitGrams,
		[]types.SaleMode{types.SaleModeWeight, types.SaleModeCup},
		types.MustMoney("2.50"))
	rice.PricePerKg = types.MustMoney("4.00")
	rice.PricePerCup = types.MustMoney("7.00")
	rice.StockBaseUnit = 50_000 // 50 kg
	rice.RecalculateStockValue()
	if err := productService.Create(ctx, rice, admin.ID); err != nil {
		log.Fatalw("failed to create product", "error", err)
	}

	soda := product.New("Soda Can", drinks.ID, types.UnitPieces,
		[]types.SaleMode{types.SaleModeUnit},
		types.MustMoney("0.60"))
	soda.PricePerUnit = types.MustMoney("1.20")
	soda.StockBaseUnit = 120
	soda.RecalculateStockValue()
	if err := productService.Create(ctx, soda, admin.ID); err != nil {
		log.Fatalw("failed to create product", "error", err)
	}

	log.Info("seed complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

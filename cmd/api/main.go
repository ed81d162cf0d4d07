package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lanchonete/pos-api/internal/application/service"
	"github.com/lanchonete/pos-api/internal/config"
	"github.com/lanchonete/pos-api/internal/infrastructure/database"
	"github.com/lanchonete/pos-api/internal/infrastructure/outbox"
	"github.com/lanchonete/pos-api/internal/infrastructure/repository"
	"github.com/lanchonete/pos-api/internal/presentation/http/handler"
	"github.com/lanchonete/pos-api/internal/presentation/http/routes"
	"github.com/lanchonete/pos-api/pkg/oauth"
	"github.com/lanchonete/pos-api/pkg/utils"
)

func main() {
	cfg := config.Load()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := database.SeedDefaultAdmin(db); err != nil {
		log.Fatalf("Failed to seed default admin: %v", err)
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours, cfg.JWT.RefreshExpiryHours)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	cashierRepo := repository.NewCashierRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	googleOAuth := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	box := outbox.New(cfg.Cashier.SyncRetries, cfg.Cashier.SyncInterval)

	cashierService := service.NewCashierService(cashierRepo, box, cfg.Cashier.ClosePassword)
	if err := cashierService.Restore(context.Background()); err != nil {
		log.Printf("Warning: could not restore open cashier session: %v", err)
	}

	settlementService := service.NewSettlementService(cashierService)
	authService := service.NewAuthService(userRepo, jwtManager, googleOAuth)
	productService := service.NewProductService(productRepo, categoryRepo)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, productRepo, settlementService)
	reportService := service.NewReportService(cashierRepo, cashierService)

	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService, googleOAuth),
		Cashier: handler.NewCashierHandler(cashierService),
		Order:   handler.NewOrderHandler(orderService),
		Product: handler.NewProductHandler(productService),
		Report:  handler.NewReportHandler(reportService),
	}

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		JWTManager:      jwtManager,
		IdempotencyRepo: idempotencyRepo,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("%s listening on port %s", cfg.App.Name, cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}

	// Drain pending ledger writes before exiting.
	box.Close()

	log.Println("Server stopped")
}

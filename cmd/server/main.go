package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayops-backend/internal/auth"
	"stayops-backend/internal/backup"
	"stayops-backend/internal/cache"
	"stayops-backend/internal/config"
	"stayops-backend/internal/database"
	"stayops-backend/internal/db"
	"stayops-backend/internal/handlers"
	"stayops-backend/internal/health"
	httpapi "stayops-backend/internal/http"
	"stayops-backend/internal/monitoring"
	"stayops-backend/internal/repositories"
	"stayops-backend/internal/services"
	"stayops-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Main] database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("[Main] migrations: %v", err)
	}

	store := repositories.NewStore(pool)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	var balanceCache services.BalanceCache
	if c := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); c != nil {
		balanceCache = c
		defer c.Close()
	}

	var uploader services.SnapshotUploader
	if r2, err := backup.NewR2Client(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2Bucket); err != nil {
		log.Fatalf("[Main] R2: %v", err)
	} else if r2 != nil {
		uploader = r2
	}

	hub := ws.NewHub(cfg.CORSOrigins)
	notifier := services.NewNotificationService(hub)

	assignmentService := services.NewAssignmentService(store)
	taskService := services.NewTaskService(store, assignmentService, notifier)
	reviewService := services.NewReviewService(store, assignmentService, notifier, balanceCache)
	inventoryService := services.NewInventoryService(store, balanceCache, uploader)
	leadService := services.NewLeadService(store, assignmentService, notifier)
	authService := services.NewAuthService(store, tokens)
	userService := services.NewUserService(store)
	propertyService := services.NewPropertyService(store)
	supplyItemService := services.NewSupplyItemService(store, balanceCache)
	reportService := services.NewMaintenanceReportService(store)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Tokens:      tokens,
		Hub:         hub,
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUserHandler(userService),
		Properties:  handlers.NewPropertyHandler(propertyService),
		Supplies:    handlers.NewSupplyItemHandler(supplyItemService),
		Tasks:       handlers.NewTaskHandler(taskService, reviewService),
		Inventory:   handlers.NewInventoryHandler(inventoryService),
		Leads:       handlers.NewLeadHandler(leadService),
		Reports:     handlers.NewMaintenanceReportHandler(reportService),
		Health:      health.NewHandler(pool),
		CORSOrigins: cfg.CORSOrigins,
	})

	go monitoring.Serve(ctx, cfg.MonitoringPort)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Main] API listening on :%d (%s)", cfg.Port, cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[Main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
}

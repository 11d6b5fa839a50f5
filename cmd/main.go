package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftlink/craftlink-backend/internal/adapters/paygate"
	"github.com/craftlink/craftlink-backend/internal/api/routes"
	"github.com/craftlink/craftlink-backend/internal/domain/services/cashout"
	"github.com/craftlink/craftlink-backend/internal/domain/services/notification"
	"github.com/craftlink/craftlink-backend/internal/domain/services/settlement"
	"github.com/craftlink/craftlink-backend/internal/domain/services/wallet"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/cache"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/config"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/database"
	"github.com/craftlink/craftlink-backend/internal/infrastructure/repositories"
	"github.com/craftlink/craftlink-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	log.Info("Starting craftlink settlement backend",
		"environment", cfg.Environment,
		"port", cfg.Server.Port)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	log.Info("Database migrations applied")

	redisClient, err := cache.NewRedisClient(&cfg.Redis, log.Zap())
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	gateway := paygate.NewClient(paygate.Config{
		BaseURL:       cfg.Gateway.BaseURL,
		APIKey:        cfg.Gateway.APIKey,
		SpaceID:       cfg.Gateway.SpaceID,
		WebhookSecret: cfg.Gateway.WebhookSecret,
		Timeout:       time.Duration(cfg.Gateway.Timeout) * time.Second,
		MaxRetries:    cfg.Gateway.MaxRetries,
	}, log)

	walletRepo := repositories.NewWalletRepository(db, log.Zap())
	intentRepo := repositories.NewIntentRepository(db, log.Zap())
	cashoutRepo := repositories.NewCashoutRepository(db, log.Zap())
	transactionRepo := repositories.NewTransactionRepository(db, log.Zap())
	destinationRepo := repositories.NewDestinationRepository(db, log.Zap())
	submissionRepo := repositories.NewSubmissionRepository(db, log.Zap())
	pitchRepo := repositories.NewPitchRepository(db, log.Zap())
	notificationRepo := repositories.NewNotificationRepository(db, log.Zap())

	notificationService := notification.NewService(notificationRepo, cfg.Notification, log)
	walletService := wallet.NewService(walletRepo, log)
	settlementService := settlement.NewService(
		intentRepo,
		submissionRepo,
		pitchRepo,
		transactionRepo,
		destinationRepo,
		walletService,
		gateway,
		notificationService,
		cfg.Settlement,
		log,
	)
	cashoutService := cashout.NewService(
		cashoutRepo,
		walletService,
		destinationRepo,
		gateway,
		notificationService,
		cfg.Cashout,
		log,
	)

	sweeper := settlement.NewSweeper(settlementService, cfg.Settlement, log)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start settlement sweeper", "error", err)
	}

	router := routes.SetupRoutes(&routes.Dependencies{
		Config:          cfg,
		Logger:          log,
		DB:              db,
		Redis:           redisClient,
		Gateway:         gateway,
		Settlement:      settlementService,
		Wallet:          walletService,
		Cashout:         cashoutService,
		Notifications:   notificationService,
		DestinationRepo: destinationRepo,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", "error", err)
	}

	log.Info("Server stopped")
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"bulk-payment-backend/internal/config"
	"bulk-payment-backend/internal/logger"
	"bulk-payment-backend/internal/models"
	"bulk-payment-backend/internal/progress"
	"bulk-payment-backend/internal/repository"
	"bulk-payment-backend/internal/routes"
	"bulk-payment-backend/internal/services/batch"
	"bulk-payment-backend/internal/services/delivery"
	"bulk-payment-backend/internal/services/reconciler"
	"bulk-payment-backend/internal/services/transfer"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg := config.Load()
	slog := logger.New(cfg.LogLevel, cfg.LogFile)

	for _, dir := range []string{cfg.ReportsDir, cfg.UploadsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("could not create data dir", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	var db *gorm.DB
	var store reconciler.Store = reconciler.NewMemoryStore()
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = config.InitDB(cfg.DatabaseDSN)
		if err != nil {
			slog.Error("could not connect to database", "error", err)
			os.Exit(1)
		}
		db.AutoMigrate(
			&models.UploadRecord{},
			&models.JobCache{},
			&models.User{},
			&models.Exemple{},
		)
		store = repository.NewReconcilerStore(db)
	} else {
		slog.Warn("DATABASE_DSN not set, reconciler state will not survive restarts")
	}

	events := progress.NewChannel()
	transfers := transfer.NewClient(cfg.TransferServiceURL)
	executor := batch.NewExecutor(cfg.ReportsDir, cfg.BatchSize, transfers, events, slog)
	sink := delivery.NewWebhook(cfg.WebhookURL, cfg.ReportsDir, slog)

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		ReportsDir: cfg.ReportsDir,
		UploadsDir: cfg.UploadsDir,
		PageSize:   cfg.PageSize,
		Executor:   executor,
		Events:     events,
		Store:      store,
		Sink:       sink,
		DB:         db,
		Log:        slog,
	})

	// The reconciler polls this server's own endpoints, like any external
	// observer would.
	rec := reconciler.New(store, reconciler.NewClient(cfg.SelfURL), sink, cfg.PollInterval, cfg.PageSize, slog)
	rec.Start(context.Background())

	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

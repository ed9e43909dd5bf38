package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "bulk-payment-backend/internal/handlers"
	"bulk-payment-backend/internal/progress"
	"bulk-payment-backend/internal/repository"
	"bulk-payment-backend/internal/services/batch"
	"bulk-payment-backend/internal/services/reconciler"
)

// Deps carries everything the handlers need; built once in main.
type Deps struct {
	ReportsDir string
	UploadsDir string
	PageSize   int
	Executor   *batch.Executor
	Events     *progress.Channel
	Store      reconciler.Store
	Sink       reconciler.ReportSink
	DB         *gorm.DB // nil when no database is configured
	Log        *slog.Logger
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	paymentHandler := handler.NewPaymentHandler(
		deps.ReportsDir,
		deps.UploadsDir,
		deps.PageSize,
		deps.Executor,
		deps.Events,
		deps.Store,
		deps.Sink,
		deps.Log,
	)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	payments := api.Group("/payments")
	payments.POST("/initiate", paymentHandler.Initiate)
	payments.GET("/status/:jobId", paymentHandler.Status)
	payments.GET("/result/:jobId", paymentHandler.Result)
	payments.GET("/stream/:jobId", paymentHandler.Stream)
	payments.POST("/send-file", paymentHandler.SendFile)
	payments.POST("/delete/:jobId", paymentHandler.Delete)

	api.GET("/uploads", paymentHandler.Uploads)

	if deps.DB != nil {
		userHandler := handler.NewUserHandler(repository.NewUserRepository(deps.DB))
		api.GET("/users", userHandler.List)
	}
}

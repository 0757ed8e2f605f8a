package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/mailscope/internal/handlers"
	"github.com/alimgiray/mailscope/internal/middleware"
	"github.com/alimgiray/mailscope/internal/repositories"
	"github.com/alimgiray/mailscope/internal/services"
	"github.com/alimgiray/mailscope/internal/workers"
	"github.com/alimgiray/mailscope/pkg/config"
	"github.com/alimgiray/mailscope/pkg/database"
	"github.com/alimgiray/mailscope/pkg/logger"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	logger.Init()

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	batchRepo := repositories.NewBatchRepository(database.DB)
	emailRepo := repositories.NewEmailRepository(database.DB)
	settingsRepo := repositories.NewSettingsRepository(database.DB)

	sanitizerService := services.NewSanitizerService()
	extractionService := services.NewExtractionService(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.TimeoutSeconds)
	processorService := services.NewEmailProcessorService(sanitizerService, extractionService, cfg.Processing.Concurrency)
	dedupService := services.NewDedupService()
	analyticsService := services.NewAnalyticsService(dedupService)
	settingsService := services.NewSettingsService(settingsRepo, cfg.Output.Directory)
	batchService := services.NewBatchService(batchRepo, emailRepo, processorService, analyticsService, settingsService)
	exportService := services.NewExportService()

	// Initialize worker manager for async batches
	workerManager := workers.NewWorkerManager(batchRepo, emailRepo, batchService, cfg.Processing.Workers)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// Setup routes
	setupRoutes(router, batchService, analyticsService, exportService, settingsService)

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Infof("server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("shutting down server")
}

func setupRoutes(
	router *gin.Engine,
	batchService *services.BatchService,
	analyticsService *services.AnalyticsService,
	exportService *services.ExportService,
	settingsService *services.SettingsService,
) {
	// Initialize handlers
	emailHandler := handlers.NewEmailHandler(batchService)
	analyticsHandler := handlers.NewAnalyticsHandler(batchService, analyticsService, exportService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	healthHandler := handlers.NewHealthHandler()

	// Processing routes
	router.POST("/process-emails", emailHandler.ProcessEmails)
	router.POST("/process-emails/async", emailHandler.ProcessEmailsAsync)
	router.GET("/batches/:id", emailHandler.GetBatch)

	// Analytics routes
	router.GET("/analytics", analyticsHandler.GetAnalytics)
	router.GET("/analytics/export", analyticsHandler.ExportAnalytics)

	// Settings routes
	router.GET("/settings/output-directory", settingsHandler.GetOutputDirectory)
	router.POST("/settings/output-directory", settingsHandler.SetOutputDirectory)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)
}

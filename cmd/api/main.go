package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leetcurve/backend/internal/app"
	"github.com/leetcurve/backend/internal/handler"
	"github.com/leetcurve/backend/internal/infrastructure"
	"github.com/leetcurve/backend/internal/middleware"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting LeetCurve API",
		zap.String("environment", config.Server.Environment),
		zap.String("driver", config.Database.Driver),
		zap.Int("port", config.Server.Port),
	)

	// Initialize context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Error("Failed to initialize application", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		application.Close(closeCtx)
	}()

	if !application.Tokens.Enabled() {
		logger.Warn("AUTH_SECRET is not set, the API accepts unauthenticated requests")
	}

	// Keep priorities and the badge count fresh
	go application.Refresher.Run(ctx)

	// Initialize handlers
	reviewHandler := handler.NewReviewHandler(application.Reviews, application.Refresher)
	messageHandler := handler.NewMessageHandler(application.Reviews)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add global middleware
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.TracingMiddleware(application.Telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(application.Metrics, "/health", config.Telemetry.MetricsEndpoint))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := application.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
			"driver":  config.Database.Driver,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET(config.Telemetry.MetricsEndpoint, gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(application.Tokens))
	{
		reviewHandler.RegisterRoutes(api)
		api.POST("/messages", messageHandler.Handle)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      middleware.NewCORS(&config.CORS).Handler(router),
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

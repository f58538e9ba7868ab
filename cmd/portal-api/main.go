package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	v1 "socialpulse/report-portal-backend/api/v1"
	"socialpulse/report-portal-backend/internal/config"
	"socialpulse/report-portal-backend/internal/logging"
)

type launchConfig struct {
	ConfigPath string `env:"CONFIG_PATH" envDefault:"config.json"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`
}

func main() {
	var launch launchConfig
	if err := env.Parse(&launch); err != nil {
		panic(err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(launch.ConfigPath)
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger := logging.MustNew(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Reporting Module
	reportsAPI, err := v1.SetupReportsAPI(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to set up reports API", zap.Error(err))
	}
	defer reportsAPI.Close()

	// Setup Router
	gin.SetMode(launch.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Register Routes
	api := router.Group("/api/v1")
	v1.RegisterReportsRoutes(api, reportsAPI, logger)

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"reports":   reportsAPI.Health(),
		})
	})

	// CORS wraps the whole router so preflight requests never reach gin
	handler := cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Server.AllowedOrigin, ","),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archived-At"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.String("gateway", cfg.Gateway.BaseURL),
		zap.Bool("database", cfg.Database.Enabled()))

	// Graceful Shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/verdanthq/verdant/internal/auth"
	"github.com/verdanthq/verdant/internal/cache"
	"github.com/verdanthq/verdant/internal/config"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/handlers"
	"github.com/verdanthq/verdant/internal/logger"
	"github.com/verdanthq/verdant/internal/metrics"
	"github.com/verdanthq/verdant/internal/middleware"
	"github.com/verdanthq/verdant/internal/moderation"
	"github.com/verdanthq/verdant/internal/search"
	"github.com/verdanthq/verdant/internal/telemetry"
	"github.com/verdanthq/verdant/internal/trending"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const serviceName = "verdant-backend"

// Run boots the API server and blocks until it is signalled to stop
func Run() error {
	if err := logger.Initialize(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FILE", "")); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Close()

	logger.Log.Info("verdant server starting")

	metrics.Initialize()

	if err := database.Initialize(); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Redis is optional. Without it rate limiting is disabled and
	// trending falls back to the primary store.
	redisClient, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
	)
	if err != nil {
		logger.Log.Warn("redis unavailable, continuing without it", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  serviceName,
		Environment:  getEnv("ENVIRONMENT", "development"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		Enabled:      os.Getenv("OTEL_ENABLED") == "true",
		SamplingRate: getEnvFloat("OTEL_SAMPLING_RATE", 1.0),
	})
	if err != nil {
		logger.Log.Warn("tracing disabled", zap.Error(err))
	}
	if tp != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Log.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	// Elasticsearch is optional too. A nil client puts search in ILIKE
	// fallback mode.
	var searchClient *search.Client
	if os.Getenv("ELASTICSEARCH_URL") != "" {
		searchClient, err = search.NewClient()
		if err != nil {
			logger.Log.Warn("elasticsearch unavailable, search falls back to database matching", zap.Error(err))
			searchClient = nil
		} else if err := searchClient.InitializeIndices(context.Background()); err != nil {
			logger.Log.Warn("failed to initialize search indices", zap.Error(err))
		}
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	authService := auth.NewService(jwtSecret)
	moderationService := moderation.NewService(database.DB, config.AutoHideThreshold())
	searchService := search.NewService(database.DB, searchClient)
	trendingService := trending.NewService(database.DB)

	h := handlers.NewHandlers(authService, moderationService)
	h.SetSearchService(searchService)
	h.SetTrendingService(trendingService)

	if getEnv("ENVIRONMENT", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	registerRoutes(r, h, authService, redisClient != nil)

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Log.Info("server exited")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

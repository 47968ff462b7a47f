package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"analytics-service/internal/clients"
	"analytics-service/internal/config"
	"analytics-service/internal/events"
	"analytics-service/internal/handlers"
	"analytics-service/internal/middleware"
	"analytics-service/internal/repository"
	"analytics-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Recommendation & Behavioral Analytics API
// @version 1.0.0
// @description Storefront recommendation engine with behavioral analytics and reporting, multi-tenant aware
// @termsOfService http://swagger.io/terms/

// @contact.name Analytics API Support
// @contact.url http://www.example.com/support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db, redisClient)
	salesRepo := repository.NewSalesRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	// Initialize stock alert publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		var err error
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize the delegated ranking client when configured. Without it the
	// recommendation service scores heuristically.
	var ranker services.Ranker
	if cfg.RankingEnabled() {
		ranker = clients.NewRankingClient(cfg.RankingAPIURL, cfg.RankingAPIKey, cfg.RankingModel, cfg.RankingTimeout, logger)
		log.Println("✓ Delegated ranking client initialized")
	} else {
		log.Println("RANKING_API_URL not set, recommendations use heuristic scoring")
	}

	// Initialize services
	behaviorService := services.NewBehaviorService(catalogRepo, salesRepo, logger)
	recommendationService := services.NewRecommendationService(catalogRepo, salesRepo, behaviorService, ranker, logger)
	reportsService := services.NewReportsService(salesRepo, inventoryRepo, eventsPublisher, logger)

	// Initialize handlers
	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationService, behaviorService)
	reportsHandler := handlers.NewReportsHandler(reportsService)
	exportHandler := handlers.NewExportHandler(reportsService)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("analytics-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("analytics-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "analytics_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("analytics-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Initialize Istio auth middleware for Keycloak JWT validation
	// During migration, AllowLegacyHeaders enables fallback to X-* headers from auth-bff
	istioAuthLogger := logrus.NewEntry(logger).WithField("component", "istio_auth")
	istioAuth := gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        true,
		AllowLegacyHeaders: true, // Allow X-User-ID, X-Tenant-ID during migration
		Logger:             istioAuthLogger,
	})

	// Authentication middleware
	// In development: use DevelopmentAuthMiddleware for local testing
	// In production: use IstioAuth which reads x-jwt-claim-* headers from Istio
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
		api.Use(middleware.TenantMiddleware()) // Still needed in dev mode
	} else {
		api.Use(istioAuth)
		api.Use(middleware.TenantMiddleware())
	}

	// API routes
	v1 := api.Group("")
	{
		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("", recommendationsHandler.GetRecommendations)
			recommendations.GET("/behavior/:clientId", recommendationsHandler.GetClientBehavior)
			recommendations.POST("/behavior/bulk", recommendationsHandler.AnalyzeClients)
			recommendations.GET("/insights", recommendationsHandler.GetInsights)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/sales/summary", reportsHandler.GetSalesSummary)
			reports.GET("/sales/top-products", reportsHandler.GetTopProducts)
			reports.GET("/sales/trends", reportsHandler.GetSalesTrends)
			reports.GET("/sales/trends/advanced", reportsHandler.GetAdvancedTrends)
			reports.GET("/customers/performance", reportsHandler.GetCustomerPerformance)
			reports.GET("/customers/segmentation", reportsHandler.GetCustomerSegmentation)
			reports.GET("/inventory/low-stock", reportsHandler.GetLowStock)
			reports.GET("/inventory/movements", reportsHandler.GetInventoryMovements)
			reports.GET("/inventory/rotation", reportsHandler.GetInventoryRotation)
			reports.GET("/inventory/valuation", reportsHandler.GetInventoryValuation)
			reports.GET("/suppliers/performance", reportsHandler.GetSupplierPerformance)
			reports.GET("/suppliers/replenishment", reportsHandler.GetReplenishmentTimes)
			reports.GET("/dashboard", reportsHandler.GetExecutiveDashboard)
			reports.GET("/alerts", reportsHandler.GetAlerts)
			reports.GET("/export/sales", exportHandler.ExportSalesReport)
		}
	}

	// =============================================================================
	// PUBLIC STOREFRONT ENDPOINTS (no auth required, only tenant context)
	// These endpoints let public storefronts request recommendations
	// =============================================================================
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware()) // Require tenant context only
	{
		storefront.POST("/recommendations", recommendationsHandler.GetRecommendations)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := cfg.Port

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Analytics service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down analytics-service...")

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Analytics service stopped")
}

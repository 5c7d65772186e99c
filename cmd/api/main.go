package main

import (
	"context"
	"net/http"
	"os"

	"github.com/shopmetrics/ingest/internal/application"
	"github.com/shopmetrics/ingest/internal/infrastructure/cache"
	"github.com/shopmetrics/ingest/internal/infrastructure/metrics"
	"github.com/shopmetrics/ingest/internal/infrastructure/repository"
	shopifyinfra "github.com/shopmetrics/ingest/internal/infrastructure/shopify"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDatabase := os.Getenv("MONGODB_DATABASE")
	if mongoDatabase == "" {
		mongoDatabase = "shopmetrics"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(mongoDatabase)
	if err := repository.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MongoDB indexes")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer redisClient.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	meters := metrics.New(registry)

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewEventRepository(db)

	dashboardCache := cache.NewRedisCache(redisClient)

	// Shopify client with rate limiting
	shopifyCfg := shopifyinfra.ConfigFromEnv()
	rateLimiter := shopifyinfra.NewRateLimiter(shopifyCfg.RequestsPerSecond, shopifyCfg.Burst, logger)
	storeClient := shopifyinfra.NewClient(shopifyCfg, rateLimiter, meters, logger)
	verifier := shopifyinfra.NewWebhookVerifier(shopifyCfg.WebhookSecret)

	// Application services
	syncService := application.NewSyncService(
		storeClient,
		tenantRepo,
		customerRepo,
		productRepo,
		orderRepo,
		dashboardCache,
		meters,
		logger,
	)
	webhookService := application.NewWebhookService(
		verifier,
		customerRepo,
		productRepo,
		orderRepo,
		eventRepo,
		dashboardCache,
		meters,
		logger,
	)
	analyticsService := application.NewAnalyticsService(
		customerRepo,
		productRepo,
		orderRepo,
		eventRepo,
		dashboardCache,
		meters,
		logger,
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler(client, redisClient))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/webhooks/shopify/{tenantID}", webhookHandler(webhookService, tenantRepo, logger))

		api.Group(func(g chi.Router) {
			g.Use(tenantContext(tenantRepo, logger))

			g.Post("/sync/full", fullSyncHandler(syncService, logger))
			g.Post("/sync/customers", entitySyncHandler(syncService.SyncCustomers, logger))
			g.Post("/sync/products", entitySyncHandler(syncService.SyncProducts, logger))
			g.Post("/sync/orders", entitySyncHandler(syncService.SyncOrders, logger))
			g.Get("/sync/status", syncStatusHandler(syncService, logger))

			g.Get("/dashboard", dashboardHandler(analyticsService, logger))
			g.Get("/dashboard/overview", overviewHandler(analyticsService, logger))
			g.Get("/dashboard/orders-by-date", ordersByDateHandler(analyticsService, logger))
			g.Get("/dashboard/forecast", forecastHandler(analyticsService, logger))
			g.Get("/dashboard/products", productPerformanceHandler(analyticsService, logger))
			g.Get("/dashboard/customers", customerInsightsHandler(analyticsService, logger))
			g.Get("/dashboard/funnel", funnelHandler(analyticsService, logger))
			g.Get("/dashboard/profitability", profitabilityHandler(analyticsService, logger))
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

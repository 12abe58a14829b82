package main

import (
	"log"
	"strconv"
	"time"

	"location-service/internal/config"
	"location-service/internal/handlers"
	"location-service/internal/metrics"
	"location-service/internal/repository"
	"location-service/internal/services"
	"location-service/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := InitConfig()
	store := InitDocumentStore(cfg)
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	cache := InitCache(cfg, m)

	locationRepo := repository.NewLocationRepository(store)
	sensorRepo := repository.NewSensorRepository(store)
	simulator := services.NewSimulationService(cfg.SimulatorBaseURL, m)
	traffic := services.NewTrafficService(cfg.DataStoreBaseURL, m)
	locationService := services.NewLocationService(locationRepo, sensorRepo, cache, simulator)
	sensorService := services.NewSensorService(sensorRepo, locationRepo, cache, simulator)

	app := fiber.New()

	// Request latency goes to Prometheus per route and status.
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		m.RecordRequest(
			c.Method(),
			c.Route().Path,
			strconv.Itoa(c.Response().StatusCode()),
			time.Since(start),
		)
		return err
	})

	// Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	lh := handlers.NewLocationHandler(locationService)
	sh := handlers.NewSensorHandler(sensorService)
	th := handlers.NewTrafficHandler(traffic, cache)

	api := app.Group("/api")
	api.Get("/locations", lh.ListLocations)
	api.Post("/locations", lh.CreateLocation)
	api.Get("/locations/:locationId", lh.GetLocation)
	api.Put("/locations/:locationId", lh.UpdateLocation)
	api.Delete("/locations/:locationId", lh.DeleteLocation)

	api.Get("/locations/:locationId/sensors", sh.ListSensors)
	api.Post("/locations/:locationId/sensors", sh.CreateSensor)
	api.Get("/locations/:locationId/sensors/:sensorId", sh.GetSensor)
	api.Put("/locations/:locationId/sensors/:sensorId", sh.UpdateSensor)
	api.Delete("/locations/:locationId/sensors/:sensorId", sh.DeleteSensor)

	api.Get("/locations/:locationId/traffic_count", th.GetTrafficCount)
	api.Get("/locations/:locationId/peak_traffic", th.GetPeakTraffic)
	api.Get("/locations/:locationId/traffic_history", th.GetTrafficHistory)

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Add Health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	routes := app.GetRoutes()
	log.Println("Registered routes:")
	for _, r := range routes {
		log.Printf("  %s %s\n", r.Method, r.Path)
	}

	// Start the Fiber server
	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	log.Printf("Server listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func InitDocumentStore(cfg *config.Config) storage.DocumentStore {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	store := storage.NewGormDocumentStore(db)
	if err := store.Migrate(storage.ContainerLocations, storage.ContainerSensors); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	return store
}

func InitCache(cfg *config.Config, m *metrics.Metrics) *services.CacheService {
	if cfg.RedisHost == "" {
		log.Printf("REDIS_HOST not set, using in-process cache")
		return services.NewCacheService(services.NewMemoryCacheBackend(), cfg.CacheTTL, m)
	}
	client, err := storage.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Redis client initialization failed: %v", err)
	}
	return services.NewCacheService(client, cfg.CacheTTL, m)
}

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"ecomind/tracker-service/internal/handler"
	"ecomind/tracker-service/internal/recommend"
	"ecomind/tracker-service/internal/repository"
	"ecomind/tracker-service/internal/service"
	"ecomind/tracker-service/pkg/db"
	"ecomind/tracker-service/pkg/logger"
	"ecomind/tracker-service/pkg/metrics"
	"ecomind/tracker-service/pkg/validation"
)

func main() {
	// Initialize logger
	log := logger.NewLogger("tracker-service")
	log.Info("Starting EcoMind Tracker Service...")

	// Load .env when present; real environments set variables directly
	_ = godotenv.Load()

	port := getEnv("HTTP_PORT", "8080")

	// Initialize database connection
	conn, err := db.NewConnection(db.Config{
		Host:     getEnv("DB_HOST", "mysql"),
		Port:     getEnvInt("DB_PORT", 3306),
		User:     getEnv("DB_USER", "ecomind_user"),
		Password: getEnv("DB_PASSWORD", "ecomind_password"),
		Database: getEnv("DB_DATABASE", "ecomind_db"),
	})
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer conn.Close()

	if err := db.EnsureSchema(conn.DB); err != nil {
		log.Fatal("Failed to ensure schema", "error", err)
	}

	// Validate schema
	schemaGuard := db.NewSchemaGuard(conn.DB)
	if err := schemaGuard.ValidateTables([]db.TableSchema{
		{
			Name: "users",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "username", DataType: "varchar"},
				{Name: "current_level", DataType: "varchar"},
				{Name: "total_score", DataType: "int"},
			},
		},
		{
			Name: "activity_logs",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "user_id", DataType: "bigint"},
				{Name: "log_date", DataType: "date"},
				{Name: "co2_grams", DataType: "decimal"},
			},
		},
		{
			Name: "user_badges",
			Columns: []db.ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "user_id", DataType: "bigint"},
				{Name: "badge", DataType: "varchar"},
			},
		},
	}); err != nil {
		log.Warn("Schema validation warning", "error", err)
	}

	log.Info("Database connected and schema validated")

	// Redis is optional: the leaderboard cache degrades to MySQL-only
	var rdb *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unavailable, leaderboard cache disabled", "error", err)
			rdb = nil
		}
		cancel()
	}

	recommender, err := recommend.NewRecommender(rand.NewSource(time.Now().UnixNano()))
	if err != nil {
		log.Fatal("Failed to load recommendation catalog", "error", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(conn.DB)
	activityRepo := repository.NewActivityRepository(conn.DB)
	badgeRepo := repository.NewBadgeRepository(conn.DB)
	cache := repository.NewLeaderboardCache(rdb, time.Minute)

	// Initialize service and handlers
	serviceMetrics := metrics.NewMetrics("tracker")
	tracker := service.NewTrackerService(
		userRepo,
		activityRepo,
		badgeRepo,
		cache,
		validation.NewActivityValidator(),
		recommender,
		log,
		serviceMetrics,
	)
	apiHandler := handler.NewHandler(tracker)

	// Build router with logging and metrics middleware
	if getEnv("GIN_MODE", "") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware(serviceMetrics))

	router.GET("/health", func(c *gin.Context) {
		if err := conn.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiHandler.Register(router.Group("/api/v1"))

	// Report DB pool stats alongside request metrics
	go func() {
		for range time.Tick(15 * time.Second) {
			stats := conn.DB.Stats()
			serviceMetrics.RecordDBPoolStats(stats.OpenConnections, stats.InUse, stats.Idle, stats.WaitCount, stats.WaitDuration)
		}
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Shutdown error", "error", err)
		}
	}()

	log.Info("Tracker Service started", "port", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to serve", "error", err)
	}
	log.Info("Shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

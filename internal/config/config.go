package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"analytics-service/internal/models"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// Server
	Port        string
	Environment string

	// Delegated ranking endpoint (OpenAI-compatible). Ranking falls back to
	// heuristic scoring when unset.
	RankingAPIURL  string
	RankingAPIKey  string
	RankingModel   string
	RankingTimeout time.Duration

	// Behavior analysis defaults
	BehaviorWindowDays int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	rankingTimeout, _ := strconv.Atoi(getEnv("RANKING_TIMEOUT_SECONDS", "25"))
	behaviorWindow, _ := strconv.Atoi(getEnv("BEHAVIOR_WINDOW_DAYS", "90"))

	return &Config{
		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "analytics_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://redis.redis-marketplace.svc.cluster.local:6379/0"),

		// Server
		Port:        getEnv("PORT", "8093"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Delegated ranking
		RankingAPIURL:  getEnv("RANKING_API_URL", ""),
		RankingAPIKey:  getEnv("RANKING_API_KEY", ""),
		RankingModel:   getEnv("RANKING_MODEL", "gpt-4o-mini"),
		RankingTimeout: time.Duration(rankingTimeout) * time.Second,

		// Behavior analysis
		BehaviorWindowDays: behaviorWindow,
	}
}

// RankingEnabled reports whether the delegated ranking endpoint is configured
func (c *Config) RankingEnabled() bool {
	return c.RankingAPIURL != "" && c.RankingAPIKey != ""
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate models to keep schema up to date
	// This will add missing columns but won't delete existing columns
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Client{},
		&models.Supplier{},
		&models.Sale{},
		&models.SaleLine{},
		&models.InventoryReceipt{},
		&models.ReceiptLine{},
	); err != nil {
		// Ignore errors about dropping non-existent constraints
		// This can happen when schema was created without old constraints
		// or when constraint naming conventions changed
		errStr := err.Error()
		if strings.Contains(errStr, "does not exist") && strings.Contains(errStr, "constraint") {
			log.Printf("Note: Migration constraint warning (safe to ignore): %v", err)
		} else {
			return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

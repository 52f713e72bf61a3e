package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Redis configuration (current snapshot + pruned history per target)
	RedisAddr        string
	RedisDB          int
	RedisKeyPrefix   string
	HistoryMaxLength int

	// Memcache configuration (fetch rate limiting)
	MemcacheAddr string

	// Slack configuration
	SlackWebhookURL string

	// Admin API configuration
	AdminAddr  string
	AdminToken string

	// Monitor configuration
	CheckInterval time.Duration

	// Similarity tolerances for the materiality filter
	TextSimilarityRatio float64
	PriceTolerance      float64
	DateToleranceDays   int

	// URLs for the monitored promotion pages
	BankPerksURL   string
	StayRewardsURL string
	SkyDealsURL    string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	historyMax, _ := strconv.Atoi(getEnv("HISTORY_MAX_LENGTH", "50"))
	checkInterval, _ := strconv.Atoi(getEnv("CHECK_INTERVAL_SECONDS", "900"))
	textRatio, _ := strconv.ParseFloat(getEnv("TEXT_SIMILARITY_RATIO", "0.85"), 64)
	priceTolerance, _ := strconv.ParseFloat(getEnv("PRICE_TOLERANCE", "0.01"), 64)
	dateTolerance, _ := strconv.Atoi(getEnv("DATE_TOLERANCE_DAYS", "7"))

	return &Config{
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             redisDB,
		RedisKeyPrefix:      getEnv("REDIS_KEY_PREFIX", "promowatch"),
		HistoryMaxLength:    historyMax,
		MemcacheAddr:        getEnv("MEMCACHE_ADDR", "localhost:11211"),
		SlackWebhookURL:     getEnv("SLACK_WEBHOOK_URL", ""),
		AdminAddr:           getEnv("ADMIN_ADDR", ":8080"),
		AdminToken:          getEnv("ADMIN_TOKEN", ""),
		CheckInterval:       time.Duration(checkInterval) * time.Second,
		TextSimilarityRatio: textRatio,
		PriceTolerance:      priceTolerance,
		DateToleranceDays:   dateTolerance,
		BankPerksURL:        getEnv("BANKPERKS_URL", "https://www.bankperks.example.com/promotions"),
		StayRewardsURL:      getEnv("STAYREWARDS_URL", "https://www.stayrewards.example.com/offers"),
		SkyDealsURL:         getEnv("SKYDEALS_URL", "https://www.skydeals.example.com/deals"),
		Environment:         getEnv("PROMOWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values that would break at runtime
func (c *Config) Validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("redis address must not be empty")
	}
	if c.MemcacheAddr == "" {
		return fmt.Errorf("memcache address must not be empty")
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", c.CheckInterval)
	}
	if c.HistoryMaxLength <= 0 {
		return fmt.Errorf("history max length must be positive, got %d", c.HistoryMaxLength)
	}
	if c.TextSimilarityRatio <= 0 || c.TextSimilarityRatio > 1 {
		return fmt.Errorf("text similarity ratio must be in (0, 1], got %v", c.TextSimilarityRatio)
	}
	if c.PriceTolerance < 0 || c.PriceTolerance >= 1 {
		return fmt.Errorf("price tolerance must be in [0, 1), got %v", c.PriceTolerance)
	}
	if c.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance days must not be negative, got %d", c.DateToleranceDays)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

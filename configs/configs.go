// Package configs provides application configuration loaded from environment variables.
// All configuration is externalized via environment variables for 12-factor app compliance.
package configs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
// Load it once at startup using AppLoad().
type AppConfig struct {
	// DBDSN is the ClickHouse connection string.
	DBDSN string

	// KafkaRaw contains Kafka connection settings for raw product data.
	KafkaRaw KafkaConfig

	// Ingester contains settings for the Kafka-to-ClickHouse ingester.
	Ingester IngesterConfig

	// Scraper contains settings for the catalog scraper.
	Scraper ScraperConfig

	// Monitor contains data quality monitoring settings.
	Monitor MonitorConfig

	// Alert contains alert delivery settings.
	Alert AlertConfig
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	// Broker is the Kafka broker address (e.g., "localhost:9092").
	Broker string

	// Topic is the Kafka topic for raw product records.
	Topic string

	// GroupID is the consumer group ID for the ingester.
	GroupID string
}

// IngesterConfig holds settings for batch processing.
type IngesterConfig struct {
	// BatchSize is the maximum number of records to accumulate before flushing.
	BatchSize int

	// BatchTimeoutSeconds is the maximum seconds to wait before flushing.
	BatchTimeoutSeconds int
}

// ScraperConfig holds catalog scraper settings.
type ScraperConfig struct {
	// BaseURL is the product listing page of the target site.
	BaseURL string

	// RequestsPerSecond caps the scrape rate against the target site.
	RequestsPerSecond float64

	// RequestTimeoutSeconds is the per-request timeout.
	RequestTimeoutSeconds int
}

// MonitorConfig holds data quality monitoring settings.
type MonitorConfig struct {
	// MetricsDir is where metric snapshots are written.
	MetricsDir string

	// AnomalyThreshold is the fractional record count drop that raises an
	// alert (0.5 means half the trailing average).
	AnomalyThreshold float64

	// MaxArrivalDelayHours is how stale the newest raw data may be before
	// the arrival check reports a delay.
	MaxArrivalDelayHours int
}

// AlertConfig holds alert delivery settings. Empty values disable the
// corresponding channel.
type AlertConfig struct {
	SlackWebhookURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	Recipient    string
}

// getDatabaseDSN constructs the ClickHouse DSN from environment variables.
func getDatabaseDSN() string {
	dbUser := getEnv("CLICKHOUSE_USER", "user")
	dbPassword := getEnv("CLICKHOUSE_PASSWORD", "password")
	dbHost := getEnv("CLICKHOUSE_HOST", "localhost")
	dbPort := getEnv("CLICKHOUSE_TCP_PORT", "9000")
	dbName := getEnv("CLICKHOUSE_DB", "shelfwatch")

	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%s/%s?dial_timeout=10s&read_timeout=20s",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)
}

// getScraperConfig loads scraper settings from environment.
func getScraperConfig() ScraperConfig {
	rps := getEnvFloat("SCRAPER_REQUESTS_PER_SECOND", 1.0)
	if rps <= 0 {
		rps = 1.0
	}

	return ScraperConfig{
		BaseURL:               getEnv("SCRAPER_BASE_URL", "http://localhost:8080/products"),
		RequestsPerSecond:     rps,
		RequestTimeoutSeconds: getEnvInt("SCRAPER_REQUEST_TIMEOUT_SECONDS", 30),
	}
}

// AppLoad loads all application configuration from environment variables.
// It attempts to load a .env file first (for local development).
// Call this once at application startup.
func AppLoad() *AppConfig {
	_ = godotenv.Load() // Ignore error - .env is optional

	return &AppConfig{
		DBDSN: getDatabaseDSN(),
		KafkaRaw: KafkaConfig{
			Broker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			Topic:   getEnv("KAFKA_RAW_PRODUCT_TOPIC", "shelfwatch_raw_products"),
			GroupID: getEnv("KAFKA_RAW_PRODUCT_GROUP_ID", "shelfwatch-ingester"),
		},
		Ingester: IngesterConfig{
			BatchSize:           getEnvInt("BATCH_SIZE", 200),
			BatchTimeoutSeconds: getEnvInt("BATCH_TIMEOUT_SECONDS", 5),
		},
		Scraper: getScraperConfig(),
		Monitor: MonitorConfig{
			MetricsDir:           getEnv("METRICS_DIR", "metrics"),
			AnomalyThreshold:     getEnvFloat("RECORD_COUNT_ANOMALY_THRESHOLD", 0.5),
			MaxArrivalDelayHours: getEnvInt("MAX_ARRIVAL_DELAY_HOURS", 26),
		},
		Alert: AlertConfig{
			SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
			SMTPHost:        getEnv("SMTP_HOST", ""),
			SMTPPort:        getEnvInt("SMTP_PORT", 587),
			SMTPUser:        getEnv("SMTP_USER", ""),
			SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
			Recipient:       getEnv("ALERT_EMAIL_TO", ""),
		},
	}
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string
	JWTSecret  string
	ServerPort string

	LogFormat string
	LogLevel  string

	// EntranceModuleID is the module whose test holds the entrance question bank.
	EntranceModuleID  uint
	EntranceTestSize  int
	EntrancePerLevel  int
	PassThreshold     float64
	ReconcileInterval time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "learning_platform"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "data/lms.db"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
	}

	entranceID, err := getEnvInt("ENTRANCE_MODULE_ID", 1)
	if err != nil {
		return nil, err
	}
	if entranceID <= 0 {
		return nil, fmt.Errorf("config: ENTRANCE_MODULE_ID must be positive, got %d", entranceID)
	}
	cfg.EntranceModuleID = uint(entranceID)

	if cfg.EntranceTestSize, err = getEnvInt("ENTRANCE_TEST_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.EntrancePerLevel, err = getEnvInt("ENTRANCE_PER_LEVEL", 2); err != nil {
		return nil, err
	}
	if cfg.EntranceTestSize <= 0 || cfg.EntrancePerLevel <= 0 {
		return nil, fmt.Errorf("config: ENTRANCE_TEST_SIZE and ENTRANCE_PER_LEVEL must be positive")
	}

	threshold, err := strconv.ParseFloat(getEnv("PASS_THRESHOLD", "70"), 64)
	if err != nil || threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("config: PASS_THRESHOLD must be a number in [0, 100]")
	}
	cfg.PassThreshold = threshold

	interval, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("config: RECONCILE_INTERVAL: %w", err)
	}
	cfg.ReconcileInterval = interval

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// PostgresDSN builds the connection string for gorm's postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, value)
	}
	return n, nil
}

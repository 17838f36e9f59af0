package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is everything the service reads from the environment.
type Config struct {
	Port    string
	GinMode string

	LedgerBackend string // postgres | csv | memory
	CSVDir        string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string

	CostBasis    string // average | fifo
	PriceWorkers int
	PriceTimeout time.Duration

	LogLevel string
}

// Load reads the environment, honoring a .env file when present.
func Load(log *logrus.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", ""),
		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),
		CSVDir:        getEnv("CSV_DIR", "./data"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "tracker"),
		DBPassword:    getEnv("DB_PASSWORD", "tracker"),
		DBName:        getEnv("DB_NAME", "portfolio_db"),
		CostBasis:     getEnv("COST_BASIS", "average"),
		PriceWorkers:  getEnvInt("PRICE_WORKERS", 5),
		PriceTimeout:  time.Duration(getEnvInt("PRICE_TIMEOUT_MS", 5000)) * time.Millisecond,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

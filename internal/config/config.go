package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	FlyerDBDriver  string
	FlyerDBDSN     string
	RedisURL       string
	OpenAIKey      string
	OpenAIModel    string
	MetricsPort    string
	HTTPPort       string
	WorkerCount    int
	UploadDir      string
	LogLevel       string
	LogFile        string
	ExtractionRPS  float64
	SnapshotTTLSec int
	PurgeSchedule  string
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	return &Config{
		DatabaseURL:    databaseURL,
		FlyerDBDriver:  getEnv("FLYER_DB_DRIVER", "postgres"), // "postgres" ou "sqlite"
		FlyerDBDSN:     getEnv("FLYER_DB_DSN", databaseURL),
		RedisURL:       os.Getenv("REDIS_URL"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		WorkerCount:    getEnvInt("WORKER_COUNT", 4),
		UploadDir:      getEnv("UPLOAD_DIR", "./data"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		ExtractionRPS:  getEnvFloat("EXTRACTION_RPS", 1),
		SnapshotTTLSec: getEnvInt("SNAPSHOT_TTL_SEC", 300),
		PurgeSchedule:  getEnv("PURGE_SCHEDULE", "0 3 * * *"),
	}
}

// Require falha quando uma variável obrigatória está vazia.
func (c *Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("variável de ambiente obrigatória ausente: %s", name)
	}
	return nil
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	v, err := strconv.Atoi(getEnv(k, ""))
	if err != nil {
		return d
	}
	return v
}

func getEnvFloat(k string, d float64) float64 {
	v, err := strconv.ParseFloat(getEnv(k, ""), 64)
	if err != nil {
		return d
	}
	return v
}

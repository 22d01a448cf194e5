package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath   string
	LogLevel string
	LogFile  string
	SeedDemo bool
}

func Load() *Config {
	// A local .env overrides nothing already exported; missing file is fine.
	_ = godotenv.Load()

	return &Config{
		DBPath:   getEnv("DB_PATH", "voyago.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
		SeedDemo: os.Getenv("VOYAGO_NO_SEED") != "1",
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

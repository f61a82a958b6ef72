package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DataFile       string
	JWTKey         string
	LogFile        string
	AllowedOrigins []string
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development. JWT_KEY has no default; main refuses to
// start without it.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Port:           getEnv("PORT", "3001"),
		DataFile:       getEnv("DATA_FILE", "data.json"),
		JWTKey:         getEnv("JWT_KEY", ""),
		LogFile:        getEnv("LOG_FILE", "app.error_logger"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Package config reads process settings from the environment. A .env file is
// loaded by the binaries through godotenv/autoload before Load runs.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds everything the server and historian read at startup.
type Config struct {
	Env            string
	Port           string
	PublicURL      string
	AllowedOrigins []string
	LogLevel       string

	// StoreBackend is BackendMemory or BackendPostgres. The postgres backend
	// also needs Redis for snapshot fan-out.
	StoreBackend string
	WriteRetries int
	// RoomRules is a JSON object of rule overrides, e.g. {"winningScore": 21}.
	RoomRules string

	RedisAddr string
	RedisDB   int
	QueueName string

	BatchSize int
	FlushMs   int
}

// Load reads the configuration, falling back to development defaults.
func Load() Config {
	return Config{
		Env:            GetEnv("KINGCOURT_ENV", "development"),
		Port:           GetEnv("PORT", "8080"),
		PublicURL:      strings.TrimRight(GetEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		AllowedOrigins: splitList(GetEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		StoreBackend:   GetEnv("STORE_BACKEND", BackendMemory),
		WriteRetries:   GetEnvInt("ROOM_WRITE_RETRIES", 5),
		RoomRules:      GetEnv("ROOM_RULES", ""),
		RedisAddr:      GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        GetEnvInt("REDIS_DB", 0),
		QueueName:      GetEnv("HISTORIAN_QUEUE_NAME", "kingcourt_matches"),
		BatchSize:      GetEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushMs:        GetEnvInt("HISTORIAN_FLUSH_MS", 500),
	}
}

// Production reports whether the process runs with production settings.
func (c Config) Production() bool {
	return c.Env == "production"
}

// GetEnv reads an environment variable or returns def.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as an integer, else returns def.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

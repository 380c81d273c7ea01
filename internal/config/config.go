package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	APIURL         string
	ServerPort     string
	StorageDriver  string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	RedisAddr      string
	RedisDB        int
	LogLevel       string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	HTTPTimeout    time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		APIURL:         strings.TrimRight(getEnv("API_URL", "http://localhost:8000"), "/"),
		ServerPort:     getEnv("SERVER_PORT", "3000"),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "planner_user"),
		DBPassword:     getEnv("DB_PASSWORD", "planner_pass"),
		DBName:         getEnv("DB_NAME", "planner_client"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3001")),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 40),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
	}
}

// APIBase is the versioned root every gateway path is resolved against.
func (c *Config) APIBase() string {
	return c.APIURL + "/api/v1"
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger() *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithField("level", c.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

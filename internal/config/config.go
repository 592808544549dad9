package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret signs tokens when JWT_SECRET_KEY is unset. Only fit for
// local development.
const DefaultJWTSecret = "default-secret-key-change-me"

type Config struct {
	Port    string
	GinMode string

	LogLevel string

	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxRetries  int
	DBRetryDelay  time.Duration
	DBAutoMigrate bool

	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	CacheEnabled bool
	CacheTTL     time.Duration
	CachePrefix  string

	RabbitMQURL   string
	EventExchange string

	LoginRateLimit float64
	LoginRateBurst int

	CORSAllowOrigins []string
}

// Load builds the process configuration from the environment. A .env file in
// the working directory is read first when present; real environment
// variables always win over it.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "taskmanagement"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		DBMaxRetries:  getEnvInt("DB_MAX_RETRIES", 3),
		DBRetryDelay:  getEnvDuration("DB_RETRY_DELAY", 100*time.Millisecond),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),

		JWTSecret:      getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
		JWTIssuer:      getEnv("JWT_ISSUER", "team-task-api"),
		AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_EXPIRES", time.Hour),
		BcryptCost:     getEnvInt("BCRYPT_COST", 10),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CacheEnabled: getEnvBool("CACHE_ENABLED", false),
		CacheTTL:     getEnvDuration("CACHE_DEFAULT_TIMEOUT", 300*time.Second),
		CachePrefix:  getEnv("CACHE_PREFIX", "cache"),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		EventExchange: getEnv("EVENT_EXCHANGE", "team_task.events"),

		LoginRateLimit: getEnvFloat("LOGIN_RATE_LIMIT", 5),
		LoginRateBurst: getEnvInt("LOGIN_RATE_BURST", 10),

		CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
	}
}

// UsesDefaultJWTSecret reports whether tokens are signed with DefaultJWTSecret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// RedisAddr returns host:port of the cache server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration accepts Go duration strings ("30s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

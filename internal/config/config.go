package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Federated FederatedConfig
	AI        AIConfig
	CORS      CORSConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values for both transports.
type PostgresConfig struct {
	DSN            string
	HTTPEndpoint   string
	HTTPToken      string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	AcquireTimeout time.Duration
	QueryRetries   int
	QueryRetryWait time.Duration
	TxnRetries     int
	TxnRetryWait   time.Duration
}

// RedisConfig holds Redis connection values. Addr empty disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Pretty bool
}

// AuthConfig defines local session token parameters.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	BcryptCost      int
}

// FederatedConfig defines verification of externally issued tokens.
type FederatedConfig struct {
	JWKSURL      string
	Issuer       string
	Audience     string
	MarkerPrefix string
	KeyCacheTTL  time.Duration
}

// AIConfig configures the outbound chat-completion proxy.
type AIConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxTokens       int
	Temperature     float64
	RequestTimeout  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// CORSConfig controls per-request origin selection.
type CORSConfig struct {
	AllowedOrigins []string
	DefaultOrigin  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "focus-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            firstEnv("DATABASE_URL", "POSTGRES_DSN"),
			HTTPEndpoint:   os.Getenv("DATABASE_HTTP_ENDPOINT"),
			HTTPToken:      os.Getenv("DATABASE_HTTP_TOKEN"),
			MaxConns:       int32(getEnvAsInt("PGPOOL_MAX_SIZE", 3)),
			MinConns:       int32(getEnvAsInt("PGPOOL_MIN_SIZE", 0)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", false),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			AcquireTimeout: getEnvAsDuration("POSTGRES_ACQUIRE_TIMEOUT", 5*time.Second),
			QueryRetries:   getEnvAsInt("DB_QUERY_RETRIES", 2),
			QueryRetryWait: getEnvAsDuration("DB_QUERY_RETRY_WAIT", 200*time.Millisecond),
			TxnRetries:     getEnvAsInt("DB_TXN_RETRIES", 1),
			TxnRetryWait:   getEnvAsDuration("DB_TXN_RETRY_WAIT", 300*time.Millisecond),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			TokenTTLMinutes: getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 7*24*60),
			BcryptCost:      getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Federated: FederatedConfig{
			JWKSURL:      os.Getenv("FEDERATED_JWKS_URL"),
			Issuer:       getEnv("FEDERATED_ISSUER", "https://api.stack-auth.com"),
			Audience:     os.Getenv("FEDERATED_AUDIENCE"),
			MarkerPrefix: getEnv("FEDERATED_TOKEN_PREFIX", "st_"),
			KeyCacheTTL:  getEnvAsDuration("FEDERATED_KEY_CACHE_TTL", 10*time.Minute),
		},
		AI: AIConfig{
			APIKey:          os.Getenv("OPENAI_API_KEY"),
			BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:           getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			MaxTokens:       getEnvAsInt("OPENAI_MAX_TOKENS", 300),
			Temperature:     getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
			RequestTimeout:  getEnvAsDuration("OPENAI_REQUEST_TIMEOUT", 30*time.Second),
			RateLimitMax:    getEnvAsInt("AI_RATE_LIMIT_MAX", 100),
			RateLimitWindow: getEnvAsDuration("AI_RATE_LIMIT_WINDOW", time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS", []string{
				"https://focusmate-ai.netlify.app",
				"http://localhost:3000",
				"http://localhost:8888",
			}),
			DefaultOrigin: getEnv("CORS_DEFAULT_ORIGIN", "https://focusmate-ai.netlify.app"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the local session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLMinutes <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

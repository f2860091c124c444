package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration; RedisURL takes precedence over host/port.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	JWTSecret string

	LogLevel string

	// CORS origins allowed to call the API; empty means the local frontend.
	AllowedOrigins []string

	// Safety assessment tuning
	AssessmentCacheTTL    time.Duration
	AssessmentRateLimit   int
	AssessmentConcurrency int

	// Reference data import
	ReferenceBucket string
	AWSRegion       string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	src := source{env: env, secretsDir: secretsDir()}

	cfg := &Config{
		Environment:     env,
		ServerHost:      src.get("server_host", "0.0.0.0"),
		ServerPort:      src.get("server_port", "8080"),
		DBDriver:        strings.ToLower(src.get("db_driver", "postgres")),
		DBHost:          src.get("db_host", ""),
		DBPort:          src.get("db_port", "5432"),
		DBUser:          src.get("db_user", ""),
		DBPassword:      src.get("db_password", ""),
		DBName:          src.get("db_name", ""),
		DBSSLMode:       src.get("db_ssl_mode", "disable"),
		SQLitePath:      src.get("sqlite_path", ""),
		RedisHost:       src.get("redis_host", ""),
		RedisPort:       src.get("redis_port", "6379"),
		RedisPassword:   src.get("redis_password", ""),
		RedisURL:        src.get("redis_url", ""),
		JWTSecret:       src.get("jwt_secret", ""),
		LogLevel:        src.get("log_level", "info"),
		ReferenceBucket: src.get("reference_bucket", ""),
		AWSRegion:       src.get("aws_region", ""),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(src.get("redis_db", "0")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_DB: %w", err)
	}
	if cfg.AssessmentCacheTTL, err = time.ParseDuration(src.get("assessment_cache_ttl", "15m")); err != nil {
		return nil, fmt.Errorf("failed to parse ASSESSMENT_CACHE_TTL: %w", err)
	}
	if cfg.AssessmentRateLimit, err = strconv.Atoi(src.get("assessment_rate_limit", "120")); err != nil {
		return nil, fmt.Errorf("failed to parse ASSESSMENT_RATE_LIMIT: %w", err)
	}

	if cfg.AssessmentConcurrency, err = strconv.Atoi(src.get("assessment_concurrency", "4")); err != nil {
		return nil, fmt.Errorf("failed to parse ASSESSMENT_CONCURRENCY: %w", err)
	}
	for _, origin := range strings.Split(src.get("allowed_origins", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Address is the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds the keyword/value connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// IsProduction reports whether the loaded configuration is for production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// RedisEnabled reports whether enough is configured to reach redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// source resolves one setting. In development and production a Docker
// secret named after the key wins; otherwise, or when the secret is absent,
// the upper-cased environment variable is used.
type source struct {
	env        Environment
	secretsDir string
}

func (s source) get(key, fallback string) string {
	if s.env.UsesSecrets() {
		if v, ok := readSecret(s.secretsDir, key); ok {
			return v
		}
	}
	if v := strings.TrimSpace(os.Getenv(strings.ToUpper(key))); v != "" {
		return v
	}
	return fallback
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(dir, name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(data))
	return v, v != ""
}

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

const minProductionSecretLength = 32

// ValidateConfig checks the configuration for the environment it was loaded in.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		add("SERVER_PORT", "must be numeric, got %q", cfg.ServerPort)
	}

	switch cfg.DBDriver {
	case "postgres":
		for _, f := range []struct{ name, value string }{
			{"DB_HOST", cfg.DBHost},
			{"DB_USER", cfg.DBUser},
			{"DB_NAME", cfg.DBName},
		} {
			if f.value == "" {
				add(f.name, "is required for the postgres driver")
			}
		}
		if cfg.DBPassword == "" && cfg.Environment.UsesSecrets() {
			add("db_password", "secret is required")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("SQLITE_PATH", "is required for the sqlite driver")
		}
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
	default:
		add("DB_DRIVER", "must be postgres or sqlite, got %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if cfg.Environment == Production && len(cfg.JWTSecret) < minProductionSecretLength {
		add("JWT_SECRET", "must be at least %d characters in production", minProductionSecretLength)
	}

	if cfg.AssessmentCacheTTL < 0 {
		add("ASSESSMENT_CACHE_TTL", "must not be negative")
	}
	if cfg.AssessmentRateLimit < 0 {
		add("ASSESSMENT_RATE_LIMIT", "must not be negative")
	}
	if cfg.AssessmentConcurrency < 1 {
		add("ASSESSMENT_CONCURRENCY", "must be at least 1")
	}
	if cfg.RedisDB < 0 {
		add("REDIS_DB", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

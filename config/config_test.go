package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("DB_NAME", "restricted_diet")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
}

func TestLoadConfig(t *testing.T) {
	setTestEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "restricted_diet", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, 15*time.Minute, cfg.AssessmentCacheTTL)
	assert.Equal(t, 120, cfg.AssessmentRateLimit)
	assert.Equal(t, 4, cfg.AssessmentConcurrency)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.Contains(t, cfg.PostgresDSN(), "dbname=restricted_diet")
}

func TestLoadConfigPrefersSecretsInDevelopment(t *testing.T) {
	setTestEnv(t)
	t.Setenv("ENV", "development")
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("s3cret"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "from-secret", cfg.JWTSecret)
	assert.Equal(t, "s3cret", cfg.DBPassword)
	assert.Equal(t, "localhost", cfg.DBHost)
}

func TestLoadConfigCIWins(t *testing.T) {
	setTestEnv(t)
	t.Setenv("CI", "true")
	t.Setenv("ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, CI, cfg.Environment)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	setTestEnv(t)
	t.Setenv("ASSESSMENT_CACHE_TTL", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)

	setTestEnv(t)
	t.Setenv("ASSESSMENT_CACHE_TTL", "1m")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = LoadConfig()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "DB_DRIVER", verrs[0].Field)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment: Test,
			ServerPort:  "8080",
			DBDriver:    "sqlite",
			SQLitePath:  "/tmp/test.db",
			JWTSecret:   "secret",

			AssessmentConcurrency: 1,
		}
	}

	assert.NoError(t, ValidateConfig(valid()))

	cfg := valid()
	cfg.ServerPort = "http"
	cfg.JWTSecret = ""
	cfg.AssessmentRateLimit = -1
	err := ValidateConfig(cfg)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)

	cfg = valid()
	cfg.Environment = Production
	cfg.DBDriver = "postgres"
	cfg.DBHost, cfg.DBUser, cfg.DBName, cfg.DBPassword = "db", "app", "app", "pw"
	err = ValidateConfig(cfg)
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "JWT_SECRET", verrs[0].Field)
}

func TestParseS3URI(t *testing.T) {
	bucket, key, ok := ParseS3URI("s3://reference-data/ingredients/v3.yaml")
	assert.True(t, ok)
	assert.Equal(t, "reference-data", bucket)
	assert.Equal(t, "ingredients/v3.yaml", key)

	_, _, ok = ParseS3URI("./data/ingredients.yaml")
	assert.False(t, ok)
	_, _, ok = ParseS3URI("s3://bucket-only")
	assert.False(t, ok)
}

func TestLoadConfigAllowedOrigins(t *testing.T) {
	setTestEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, ,http://localhost:3000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
}

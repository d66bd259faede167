package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func setRequired(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "postgres://localhost/rental")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.JWTRefreshTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_MissingRequired(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROD_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "1h")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	assert.Equal(t, time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			AppEnv:             "dev",
			DBDSN:              "postgres://localhost/rental",
			JWTSecret:          "secret",
			DBMaxConns:         10,
			JWTAccessTokenTTL:  time.Minute,
			JWTRefreshTokenTTL: time.Hour,
			BcryptCost:         10,
			StorageDriver:      "local",
			StoragePath:        "./uploads",
			MaxUploadBytes:     1024,
			AuthRateLimitRPS:   1,
			AuthRateLimitBurst: 1,
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.JWTRefreshTokenTTL = time.Second
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.StorageDriver = "minio"
	assert.Error(t, cfg.Validate())
	cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey = "localhost:9000", "key", "secret"
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.StorageDriver = "s3"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.AppEnv = PROD_STRING
	assert.Error(t, cfg.Validate())
}

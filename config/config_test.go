package config_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geo-attendance/config"
)

const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "MONGOSTRING", "DB_NAME", "STORAGE_DRIVER", "PASETO_SECRET", "TIMEZONE",
		"ALLOWED_ORIGINS", "COOKIE_SECURE", "ADMIN_EMAIL", "ADMIN_PASSWORD", "REQUEST_TIMEOUT", "CONFIG_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("PORT", "8080")
	t.Setenv("MONGOSTRING", "mongodb://localhost:27017")
	t.Setenv("PASETO_SECRET", testSecret)
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ADMIN_EMAIL", " Admin@Example.com ")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	cfg, err := config.LoadConfig("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StorageMongo, cfg.StorageDriver)
	assert.Equal(t, "geo-attendance-db", cfg.DBName)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	clearEnv(t)
	dir := filet.TmpDir(t, "")
	defer filet.CleanUp(t)

	envFile := filepath.Join(dir, ".env")
	filet.File(t, envFile, "APP_ENV=local\nSTORAGE_DRIVER=memory\nTIMEZONE=UTC\n")

	// t.Setenv("", ...) leaves keys set to empty, which godotenv will not override.
	for _, key := range []string{"APP_ENV", "STORAGE_DRIVER", "TIMEZONE"} {
		unsetEnv(t, key)
	}

	cfg, err := config.LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, config.EnvLocal, cfg.Env)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.NotEmpty(t, cfg.PasetoSecret, "local env generates a secret")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{
			name: "mongo without uri",
			env:  map[string]string{"PASETO_SECRET": testSecret},
			msg:  "MONGOSTRING is required",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"STORAGE_DRIVER": "redis", "PASETO_SECRET": testSecret},
			msg:  "unknown STORAGE_DRIVER",
		},
		{
			name: "missing secret in production",
			env:  map[string]string{"STORAGE_DRIVER": "memory"},
			msg:  "PASETO_SECRET is required",
		},
		{
			name: "short secret",
			env:  map[string]string{"STORAGE_DRIVER": "memory", "PASETO_SECRET": "c2hvcnQ="},
			msg:  "exactly 32 bytes",
		},
		{
			name: "bad timezone",
			env:  map[string]string{"STORAGE_DRIVER": "memory", "PASETO_SECRET": testSecret, "TIMEZONE": "Mars/Olympus"},
			msg:  "invalid TIMEZONE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadConfig("does-not-exist.env")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	log := config.SetupLogger(config.EnvProd, &buf)
	log.Debug("hidden")
	log.Info("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"key":"value"`)
	assert.NotContains(t, out, `"time"`)

	buf.Reset()
	log = config.SetupLogger("bogus", &buf)
	assert.Contains(t, buf.String(), "available_envs")
	assert.False(t, log.Enabled(context.Background(), -4))
}

func TestIndexModels(t *testing.T) {
	idx := config.IndexModels()
	require.Contains(t, idx, config.AttendanceCollection)
	assert.NotNil(t, idx[config.AttendanceCollection][0].Options.Unique)
	assert.True(t, *idx[config.AttendanceCollection][0].Options.Unique)
	assert.Contains(t, idx, config.OfficeCollection)
}

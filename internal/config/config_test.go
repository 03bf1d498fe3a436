package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[server]
http_port = 9090
timezone = "Europe/Moscow"

[database]
host = "localhost"
dbname = "vet"
user = "vet"
password = "from-file"

[auth]
jwt_secret = "file-secret"

[cors]
allowed_origins = ["http://localhost:3000"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 15, cfg.Server.ReadTimeout)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, time.Minute, cfg.Reminders.Interval())
	assert.Equal(t, int64(10<<20), cfg.Documents.MaxSizeBytes())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Moscow", loc.String())
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DB_PASSWORD", "env-password")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "env-password", cfg.Database.Password)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Contains(t, cfg.Database.DSN(), "password=env-password")
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "vet"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	content := strings.Replace(sampleConfig, `timezone = "Europe/Moscow"`, `timezone = "Mars/Olympus"`, 1)

	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

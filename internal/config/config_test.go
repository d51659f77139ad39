package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, ":3000", cfg.Addr())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"PORT":                      "8080",
		"HOST":                      "127.0.0.1",
		"GOOGLE_DRIVE_ACCESS_TOKEN": "ya29.env",
		"CORS_ALLOWED_ORIGINS":      "https://a.example, https://b.example",
		"LOG_FORMAT":                "json",
		"METRICS_ENABLED":           "false",
		"GOOGLE_CLIENT_ID":          "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "ya29.env", cfg.Google.AccessToken)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Google.ClientID)
}

func TestApplyEnv_Invalid(t *testing.T) {
	assert.Error(t, Default().ApplyEnv(lookupFrom(map[string]string{"PORT": "http"})))
	assert.Error(t, Default().ApplyEnv(lookupFrom(map[string]string{"METRICS_ENABLED": "maybe"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"transport", func(c *Config) { c.Server.Transport = "grpc" }, "server.transport"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"metrics addr", func(c *Config) { c.Metrics.Addr = "" }, "metrics.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("TEST_GDRIVE_TOKEN", "ya29.file")
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4000
  transport: stdio
google:
  access_token: ${TEST_GDRIVE_TOKEN}
logging:
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, TransportStdio, cfg.Server.Transport)
	assert.Equal(t, "ya29.file", cfg.Google.AccessToken)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "5000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GDRIVE_TEST_FROM_DOTENV=loaded\nGDRIVE_TEST_PRESET=dotenv\n"), 0o600))

	t.Setenv("GDRIVE_TEST_PRESET", "process")
	t.Setenv("GDRIVE_TEST_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("GDRIVE_TEST_FROM_DOTENV"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("GDRIVE_TEST_FROM_DOTENV"))
	assert.Equal(t, "process", os.Getenv("GDRIVE_TEST_PRESET"), "existing variables are kept")
}

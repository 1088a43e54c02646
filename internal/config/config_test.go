package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("REQUIREMENTS_URL", "http://requirements.local/")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REQUIREMENTS_TOKEN", "req-secret")
	t.Setenv("NEGOTIATION_URL", "http://negotiations.local/")
	t.Setenv("NEGOTIATION_TOKEN", "neg-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://requirements.local", cfg.RequirementsURL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 5, cfg.FetchRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.PersistTimeout)
	assert.Equal(t, "req-secret", cfg.RequirementsToken)
	assert.Equal(t, "http://negotiations.local", cfg.NegotiationURL)
	assert.Equal(t, "neg-secret", cfg.NegotiationToken)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("REQUIREMENTS_SOURCE=mongo\nMONGO_URI=mongodb://localhost:27017\nPORT=9090\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("REQUIREMENTS_SOURCE")
		os.Unsetenv("MONGO_URI")
		os.Unsetenv("PORT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceMongo, cfg.RequirementsSource)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	t.Setenv("REQUIREMENTS_URL", "http://requirements.local")
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.RequirementsURL = "http://requirements.local"
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing requirements url", func(c *Config) { c.RequirementsURL = "" }},
		{"mongo source without uri", func(c *Config) { c.RequirementsSource = SourceMongo }},
		{"unknown source", func(c *Config) { c.RequirementsSource = "ftp" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
		{"zero retries", func(c *Config) { c.FetchRetries = 0 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

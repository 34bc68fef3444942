package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formstate/pkg/config"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(nil)
	require.NoError(t, err)

	assert.Equal(t, config.Config{
		Addr:            ":8080",
		BasePath:        "/api",
		SessionTTL:      30 * time.Minute,
		SessionCapacity: 1024,
		LogLevel:        "info",
		LogFormat:       "text",
		ShutdownTimeout: 10 * time.Second,
	}, cfg)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"FORMSTATE_ADDR":             "127.0.0.1:9000",
		"FORMSTATE_BASE_PATH":        "/forms",
		"FORMSTATE_SCHEMA_PATH":      "./forms.yaml",
		"FORMSTATE_SESSION_TTL":      "5m",
		"FORMSTATE_SESSION_CAPACITY": "10",
		"FORMSTATE_LOG_LEVEL":        "debug",
		"FORMSTATE_LOG_FORMAT":       "json",
		"FORMSTATE_SHUTDOWN_TIMEOUT": "2s",
		"SESSION_TTL":                "1s",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/forms", cfg.BasePath)
	assert.Equal(t, "./forms.yaml", cfg.SchemaPath)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL, "unprefixed variables are ignored")
	assert.Equal(t, 10, cfg.SessionCapacity)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFrom_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want error
	}{
		{name: "bad duration", env: map[string]string{"FORMSTATE_SESSION_TTL": "soon"}, want: config.ErrParsingConfig},
		{name: "bad capacity", env: map[string]string{"FORMSTATE_SESSION_CAPACITY": "many"}, want: config.ErrParsingConfig},
		{name: "zero capacity", env: map[string]string{"FORMSTATE_SESSION_CAPACITY": "0"}, want: config.ErrInvalidConfig},
		{name: "zero ttl", env: map[string]string{"FORMSTATE_SESSION_TTL": "0s"}, want: config.ErrInvalidConfig},
		{name: "unknown log format", env: map[string]string{"FORMSTATE_LOG_FORMAT": "xml"}, want: config.ErrInvalidConfig},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadFrom(tc.env)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("FORMSTATE_ADDR", ":7070")
	t.Setenv("FORMSTATE_LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
}

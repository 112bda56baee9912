package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "ML Backend", cfg.Service)
	assert.Equal(t, "Crop Price Prediction ML API", cfg.Title)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, 29*time.Second, cfg.Server.RequestTimeout)

	assert.Equal(t, []string{"*"}, cfg.Security.CorsAllowedOrigins)

	assert.False(t, cfg.Predictor.Enabled)
	assert.False(t, cfg.Predictor.APIKey.IsSet())
	assert.Equal(t, 30*time.Second, cfg.Predictor.AttemptTimeout)
	assert.NotEmpty(t, cfg.Predictor.SpaceURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("SERVICE_NAME", "pricing-svc")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("PREDICTOR_ENABLED", "true")
	t.Setenv("PREDICTOR_ATTEMPT_TIMEOUT", "2s")
	t.Setenv("HUGGINGFACE_API_KEY", "hf-test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "pricing-svc", cfg.Service)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.CorsAllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.Predictor.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Predictor.AttemptTimeout)
	assert.Equal(t, "hf-test-key", cfg.Predictor.APIKey.Unmask())
}

func TestLoadConfigRejectsUnknownEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "sandbox")

	_, err := LoadConfig()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, StageValidate, cfgErr.Stage)
}

func TestLoadConfigRejectsMalformedDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "twenty-nine")

	_, err := LoadConfig()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, StageEnv, cfgErr.Stage)
}

func TestLoadConfigRejectsInvalidSpaceURL(t *testing.T) {
	t.Setenv("PREDICTOR_SPACE_URL", "not a url")

	_, err := LoadConfig()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, StageValidate, cfgErr.Stage)
}

func TestAPIKeyNeverPrintsRawValue(t *testing.T) {
	t.Setenv("HUGGINGFACE_API_KEY", "hf-super-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	rendered := fmt.Sprintf("%v %s", cfg.Predictor.APIKey, cfg.Predictor.APIKey)
	assert.False(t, strings.Contains(rendered, "hf-super-secret"))
	assert.Equal(t, "hf-super-secret", cfg.Predictor.APIKey.Unmask())
}

func TestConfigErrorFormatting(t *testing.T) {
	wrapped := errors.New("boom")
	err := &ConfigError{Stage: StageEnv, Message: "failed", Err: wrapped}

	assert.Equal(t, "[env] failed: boom", err.Error())
	assert.True(t, errors.Is(err, wrapped))

	bare := &ConfigError{Stage: StageValidate, Message: "failed"}
	assert.Equal(t, "[validate] failed", bare.Error())
}

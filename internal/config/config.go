// Package config defines the global configuration structure for the crop-price
// prediction service. Configuration is loaded once at process initialization
// and is immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any invalid value causes startup to fail immediately (fail fast).
package config

import (
	"time"

	"agripredict/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used in configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"ML Backend"`
	Title       string `envconfig:"SERVICE_TITLE" default:"Crop Price Prediction ML API"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server    ServerConfig
	Security  SecurityConfig
	Predictor PredictorConfig
}

// ServerConfig holds HTTP server tuning parameters.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8001"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
}

// SecurityConfig holds the CORS policy.
//
// The default is wide open, matching the reference deployment where the API is
// called directly from arbitrary browser origins. Production deployments
// should scope this down via CORS_ALLOWED_ORIGINS.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// PredictorConfig holds remote model predictor settings.
//
// The remote predictor is an optional upstream source; the deterministic
// engine never depends on it. APIKey may be empty, in which case remote
// attempts simply omit the Authorization header.
type PredictorConfig struct {
	Enabled        bool          `envconfig:"PREDICTOR_ENABLED" default:"false"`
	APIKey         SecretString  `envconfig:"HUGGINGFACE_API_KEY"`
	SpaceURL       string        `envconfig:"PREDICTOR_SPACE_URL" default:"https://rajkhanke007-crop-price-prediction.hf.space" validate:"required,url"`
	AttemptTimeout time.Duration `envconfig:"PREDICTOR_ATTEMPT_TIMEOUT" default:"30s"`
}

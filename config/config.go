// Package config builds the process configuration once at startup. Handlers
// receive the resulting struct by reference; nothing deeper in the call
// graph reads the environment directly.
package config

import (
	"os"
	"strconv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort       = 8080
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image-preview"
	DefaultEmailFrom  = "Dealsense <notifications@dealsense.dev>"
)

// Config is the full process configuration.
//
// GeminiAPIKey and ResendAPIKey are allowed to be empty here: a missing
// Gemini key surfaces as a configuration error on the first generation
// request, and a missing Resend key silently selects the mock delivery
// path. Validate therefore does not require either.
type Config struct {
	// Port the HTTP server listens on.
	Port int

	// GeminiAPIKey authenticates against the Gemini API.
	GeminiAPIKey string

	// TextModel handles every prompt-to-structured-output capability.
	TextModel string

	// ImageModel handles image generation and editing.
	ImageModel string

	// ResendAPIKey authenticates against the email provider. Empty
	// activates the deterministic mock delivery path.
	ResendAPIKey string

	// EmailFrom is the sender identity for outbound email.
	EmailFrom string

	// Environment tags telemetry ("development", "production", ...).
	Environment string
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         envInt("PORT", DefaultPort),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		TextModel:    envString("GEMINI_MODEL", DefaultTextModel),
		ImageModel:   envString("GEMINI_IMAGE_MODEL", DefaultImageModel),
		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    envString("EMAIL_FROM", DefaultEmailFrom),
		Environment:  envString("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that must always be well-formed.
func (c *Config) Validate() error {
	v := NewValidator()
	v.ValidatePort("port", c.Port)
	v.RequireNonEmpty("textModel", c.TextModel)
	v.RequireNonEmpty("imageModel", c.ImageModel)
	v.RequireNonEmpty("emailFrom", c.EmailFrom)
	return v.Error()
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

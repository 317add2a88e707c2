// Package config defines the application configuration and its resolution
// chain.
//
// Resolution chain (highest priority first):
//  1. CLI flags (--base-url, --timeout, ...)
//  2. Environment variables (RAGCMP_BASE_URL, RAGCMP_TIMEOUT, ...)
//  3. YAML configuration file (--config)
//  4. Static defaults (Default)
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/ragcompare/internal/errors"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "RAGCMP_"

// Default values.
const (
	DefaultBaseURL        = "http://localhost:8080/api"
	DefaultTimeout        = 30 * time.Second
	DefaultRevealInterval = 50 * time.Millisecond
	DefaultSettleDelay    = 500 * time.Millisecond
	DefaultNoticeDuration = 5 * time.Second
	DefaultDocumentID     = "uploaded_doc"
	DefaultServeAddr      = ":8080"
)

// AppConfig aggregates all user-tunable settings.
type AppConfig struct {
	// BaseURL is the root of the backend API; endpoint paths are appended verbatim.
	BaseURL string `yaml:"base_url"`
	// Timeout bounds every network call.
	Timeout time.Duration `yaml:"timeout"`
	// RevealInterval is the pause between two revealed words.
	RevealInterval time.Duration `yaml:"reveal_interval"`
	// SettleDelay is the pause before a fallback answer starts revealing.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// Simulate enables word-by-word reveal of non-streamed answers.
	Simulate bool `yaml:"simulate"`
	// DocumentID is sent with every query until an upload returns another one.
	DocumentID string `yaml:"document_id"`
	// NoticeDuration is how long a transient notice stays visible.
	NoticeDuration time.Duration `yaml:"notice_duration"`
	NoColor        bool          `yaml:"no_color"`
	LogLevel       string        `yaml:"log_level"`
	// LogFile receives logs in TUI mode. Empty discards them.
	LogFile string `yaml:"log_file"`
	// ServeAddr is the listen address of the demo backend.
	ServeAddr string `yaml:"serve_addr"`
	// ServeStream makes the demo backend answer with chunked text streams.
	ServeStream bool `yaml:"serve_stream"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		RevealInterval: DefaultRevealInterval,
		SettleDelay:    DefaultSettleDelay,
		Simulate:       true,
		DocumentID:     DefaultDocumentID,
		NoticeDuration: DefaultNoticeDuration,
		LogLevel:       "info",
		ServeAddr:      DefaultServeAddr,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current value.
func LoadFile(cfg AppConfig, path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, apperrors.NewConfigError("reading config file %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, apperrors.NewConfigError("parsing config file %s: %v", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot use.
func (c AppConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.ValidationError{Field: "base-url", Message: fmt.Sprintf("%q is not an absolute URL", c.BaseURL)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperrors.ValidationError{Field: "base-url", Message: "scheme must be http or https"}
	}
	if c.Timeout <= 0 {
		return apperrors.ValidationError{Field: "timeout", Message: "must be positive"}
	}
	if c.RevealInterval <= 0 {
		return apperrors.ValidationError{Field: "reveal-interval", Message: "must be positive"}
	}
	if c.SettleDelay < 0 {
		return apperrors.ValidationError{Field: "settle-delay", Message: "must not be negative"}
	}
	if strings.TrimSpace(c.DocumentID) == "" {
		return apperrors.ValidationError{Field: "document-id", Message: "must not be empty"}
	}
	return nil
}

// Endpoint joins the base URL and an endpoint path.
func (c AppConfig) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

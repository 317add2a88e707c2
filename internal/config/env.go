// This file contains environment variable utilities for configuration override.

package config

import (
	"os"
	"strings"
	"time"
)

// FlagChecker reports whether a CLI flag was explicitly set. Environment
// overrides are skipped for flags the user passed on the command line.
type FlagChecker func(name string) bool

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the RAGCMP_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// String overrides
	{"BASE_URL", []string{"base-url"}, func(c *AppConfig, v string) {
		c.BaseURL = v
	}},
	{"DOCUMENT_ID", []string{"document-id"}, func(c *AppConfig, v string) {
		c.DocumentID = v
	}},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) {
		c.LogLevel = v
	}},
	{"LOG_FILE", []string{"log-file"}, func(c *AppConfig, v string) {
		c.LogFile = v
	}},
	{"SERVE_ADDR", []string{"addr"}, func(c *AppConfig, v string) {
		c.ServeAddr = v
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		c.Timeout = parseDurationEnv(v, c.Timeout)
	}},
	{"REVEAL_INTERVAL", []string{"reveal-interval"}, func(c *AppConfig, v string) {
		c.RevealInterval = parseDurationEnv(v, c.RevealInterval)
	}},
	{"SETTLE_DELAY", []string{"settle-delay"}, func(c *AppConfig, v string) {
		c.SettleDelay = parseDurationEnv(v, c.SettleDelay)
	}},
	{"NOTICE_DURATION", []string{"notice-duration"}, func(c *AppConfig, v string) {
		c.NoticeDuration = parseDurationEnv(v, c.NoticeDuration)
	}},

	// Boolean overrides
	{"SIMULATE", []string{"simulate"}, func(c *AppConfig, v string) {
		c.Simulate = parseBoolEnv(v, c.Simulate)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
	{"SERVE_STREAM", []string{"stream"}, func(c *AppConfig, v string) {
		c.ServeStream = parseBoolEnv(v, c.ServeStream)
	}},
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// parseDurationEnv parses values like "500ms" or "30s". Bare integers are
// read as milliseconds, matching how the timeout is usually written
// for the web front-end (30000).
func parseDurationEnv(val string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	var ms int64
	for _, r := range val {
		if r < '0' || r > '9' {
			return defaultVal
		}
		ms = ms*10 + int64(r-'0')
	}
	if val == "" {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

// ApplyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > File > Defaults.
//
// Supported environment variables (all prefixed with RAGCMP_):
//   - BASE_URL, DOCUMENT_ID, LOG_LEVEL, LOG_FILE, SERVE_ADDR, TIMEOUT,
//     REVEAL_INTERVAL, SETTLE_DELAY, NOTICE_DURATION, SIMULATE, NO_COLOR,
//     SERVE_STREAM
func ApplyEnvOverrides(cfg *AppConfig, isSet FlagChecker) {
	for _, o := range envOverrides {
		if isSet != nil && isFlagSetAny(isSet, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(cfg, val)
		}
	}
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
func isFlagSetAny(isSet FlagChecker, names ...string) bool {
	for _, name := range names {
		if isSet(name) {
			return true
		}
	}
	return false
}

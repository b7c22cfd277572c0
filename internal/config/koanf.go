// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/tomtom215/assesslink/internal/zpay"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/assesslink/config.yaml",
	"/etc/assesslink/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultGatewayURL is the zpay checkout endpoint.
const DefaultGatewayURL = zpay.DefaultGatewayURL

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          3000,
			Host:          "0.0.0.0",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  30 * time.Second,
			PublicBaseURL: "http://localhost:3000",
			Environment:   "development",
		},
		Storage: StorageConfig{
			Backend:              "badger",
			Path:                 "/data/assesslink",
			SyncWrites:           true,
			InMemory:             false,
			MaxRetries:           8,
			RetryInitialInterval: 5 * time.Millisecond,
			RetryMaxInterval:     250 * time.Millisecond,
			BreakerFailures:      5,
			BreakerTimeout:       30 * time.Second,
			GCInterval:           10 * time.Minute,
			GCRatio:              0.5,
		},
		Payment: PaymentConfig{
			Enabled:    false,
			GatewayURL: DefaultGatewayURL,
			OrderTTL:   2 * time.Hour,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTTL:          24 * time.Hour,
			BcryptCost:        10,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			LoginMaxAttempts:  5,
			LoginLockout:      15 * time.Minute,
		},
		Links: LinksConfig{
			MaxBatch:      100,
			SweepInterval: time.Minute,
			SweepRate:     200,
		},
		Quota: QuotaConfig{
			WarningThreshold: 5,
		},
		Events: EventsConfig{
			Buffer:          256,
			Retries:         3,
			RetryInterval:   100 * time.Millisecond,
			RouterCloseWait: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile is LoadWithKoanf with an explicit config file path (the --config flag).
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return LoadWithKoanf()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so unrelated environment does not leak into config.
var envMappings = map[string]string{
	// Server
	"http_port":          "server.port",
	"http_host":          "server.host",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"public_base_url":    "server.public_base_url",
	"environment":        "server.environment",

	// Storage
	"storage_backend":                "storage.backend",
	"storage_path":                   "storage.path",
	"storage_sync_writes":            "storage.sync_writes",
	"storage_in_memory":              "storage.in_memory",
	"storage_max_retries":            "storage.max_retries",
	"storage_retry_initial_interval": "storage.retry_initial_interval",
	"storage_retry_max_interval":     "storage.retry_max_interval",
	"storage_breaker_failures":       "storage.breaker_failures",
	"storage_breaker_timeout":        "storage.breaker_timeout",
	"storage_gc_interval":            "storage.gc_interval",
	"storage_gc_ratio":               "storage.gc_ratio",

	// Payment
	"payment_enabled":   "payment.enabled",
	"zpay_gateway_url":  "payment.gateway_url",
	"zpay_pid":          "payment.pid",
	"zpay_key":          "payment.key",
	"zpay_notify_url":   "payment.notify_url",
	"zpay_return_url":   "payment.return_url",
	"payment_order_ttl": "payment.order_ttl",

	// Security
	"jwt_secret":          "security.jwt_secret",
	"token_ttl":           "security.token_ttl",
	"bcrypt_cost":         "security.bcrypt_cost",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"login_max_attempts":  "security.login_max_attempts",
	"login_lockout":       "security.login_lockout",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"admin_email":         "security.admin_email",

	// Links
	"links_max_batch":      "links.max_batch",
	"links_sweep_interval": "links.sweep_interval",
	"links_sweep_rate":     "links.sweep_rate",

	// Quota
	"quota_warning_threshold": "quota.warning_threshold",

	// Events
	"events_buffer":               "events.buffer",
	"events_retries":              "events.retries",
	"events_retry_interval":       "events.retry_interval",
	"events_router_close_timeout": "events.router_close_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - ZPAY_KEY -> payment.key
//   - STORAGE_BACKEND -> storage.backend
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	backend, err := kv.Open(&cfg.Storage)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Payment  PaymentConfig  `koanf:"payment"`
	Security SecurityConfig `koanf:"security"`
	Links    LinksConfig    `koanf:"links"`
	Quota    QuotaConfig    `koanf:"quota"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	// PublicBaseURL prefixes generated link URLs: <PublicBaseURL>/test/<linkId>.
	PublicBaseURL string `koanf:"public_base_url"`
	Environment   string `koanf:"environment"` // development, staging, production
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects and tunes the key/value backend.
//
// Environment Variables:
//   - STORAGE_BACKEND: badger or memory (default: badger)
//   - STORAGE_PATH: Badger data directory (default: /data/assesslink)
//   - STORAGE_SYNC_WRITES: fsync every commit (default: true)
//   - STORAGE_MAX_RETRIES: conflict retries per transaction (default: 8)
//   - STORAGE_BREAKER_FAILURES: consecutive backend failures before failing fast (default: 5)
type StorageConfig struct {
	Backend    string `koanf:"backend"`
	Path       string `koanf:"path"`
	SyncWrites bool   `koanf:"sync_writes"`
	// InMemory runs Badger without touching disk.
	InMemory bool `koanf:"in_memory"`

	MaxRetries           int           `koanf:"max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`

	// BreakerFailures of 0 disables the circuit breaker.
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`

	GCInterval time.Duration `koanf:"gc_interval"`
	GCRatio    float64       `koanf:"gc_ratio"`
}

// PaymentConfig holds the zpay merchant settings.
//
// Environment Variables:
//   - PAYMENT_ENABLED: enable checkout and the notify endpoint (default: false)
//   - ZPAY_PID: merchant id
//   - ZPAY_KEY: merchant secret used for MD5 signing
//   - ZPAY_NOTIFY_URL / ZPAY_RETURN_URL: callback URLs sent to the gateway
type PaymentConfig struct {
	Enabled    bool   `koanf:"enabled"`
	GatewayURL string `koanf:"gateway_url"`
	PID        string `koanf:"pid"`
	Key        string `koanf:"key"`
	NotifyURL  string `koanf:"notify_url"`
	ReturnURL  string `koanf:"return_url"`
	// OrderTTL is how long an order may stay pending before the sweeper fails it.
	OrderTTL time.Duration `koanf:"order_ttl"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// LoginMaxAttempts failed logins lock a username for LoginLockout,
	// doubling on each repeat lockout. 0 disables lockout.
	LoginMaxAttempts int           `koanf:"login_max_attempts"`
	LoginLockout     time.Duration `koanf:"login_lockout"`

	// Bootstrap admin, created active on startup when set and absent.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
	AdminEmail    string `koanf:"admin_email"`
}

// LinksConfig holds link issuance and expiry sweeper settings
type LinksConfig struct {
	MaxBatch      int           `koanf:"max_batch"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	// SweepRate caps sweeper writes per second.
	SweepRate float64 `koanf:"sweep_rate"`
}

// QuotaConfig holds ledger settings
type QuotaConfig struct {
	// WarningThreshold: a charge leaving remaining quota at or below this emits quota.low.
	WarningThreshold int `koanf:"warning_threshold"`
}

// EventsConfig holds in-process event bus settings
type EventsConfig struct {
	Buffer          int           `koanf:"buffer"`
	Retries         int           `koanf:"retries"`
	RetryInterval   time.Duration `koanf:"retry_interval"`
	RouterCloseWait time.Duration `koanf:"router_close_timeout"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources with the following precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

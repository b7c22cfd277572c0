// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package kv

import (
	"fmt"

	"github.com/tomtom215/assesslink/internal/config"
)

// Open builds the backend named by cfg.Backend and wraps it with the circuit
// breaker when cfg.BreakerFailures > 0.
func Open(cfg *config.StorageConfig) (Backend, error) {
	var backend Backend
	switch cfg.Backend {
	case "badger":
		b, err := OpenBadger(BadgerOptions{
			Path:       cfg.Path,
			InMemory:   cfg.InMemory,
			SyncWrites: cfg.SyncWrites,
		})
		if err != nil {
			return nil, err
		}
		backend = b
	case "memory":
		backend = NewMemory()
	default:
		return nil, fmt.Errorf("kv: unknown backend %q", cfg.Backend)
	}

	if cfg.BreakerFailures > 0 {
		backend = NewGuarded(backend, BreakerSettings{
			ConsecutiveFailures: uint32(cfg.BreakerFailures),
			Timeout:             cfg.BreakerTimeout,
		})
	}
	return backend, nil
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package config loads application configuration with Koanf v2.

Sources are layered in order of increasing priority: struct defaults, an
optional YAML file (CONFIG_PATH, ./config.yaml, /etc/assesslink/config.yaml),
then environment variables mapped explicitly by envTransformFunc.

Example config.yaml:

	server:
	  port: 3000
	  public_base_url: https://assess.example.org
	storage:
	  backend: badger
	  path: /data/assesslink
	payment:
	  enabled: true
	  pid: "1001"
	  notify_url: https://assess.example.org/api/payment/notify
	security:
	  cors_origins: [https://assess.example.org]

Validation errors are *ConfigurationError values and match
models.ErrConfiguration with errors.Is.

The package also carries the password policy applied to the bootstrap admin
and to self-service registration.
*/
package config

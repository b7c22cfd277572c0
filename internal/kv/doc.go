// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package kv is the ordered key/value layer under the record store.

Two implementations satisfy Backend:

  - BadgerBackend: durable BadgerDB storage with serializable snapshot isolation
  - MemoryBackend: snapshot reads with optimistic read-set validation, for tests and development

Both report a lost optimistic race as ErrConflict so callers can re-run the
transaction. Storage failures are *BackendError values that match
ErrUnavailable; Guarded counts only those toward its circuit breaker.

Open selects the implementation from config.StorageConfig.Backend.
*/
package kv

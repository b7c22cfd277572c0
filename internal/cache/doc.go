// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package cache provides a bounded, TTL-expiring LRU cache.
//
// The payment reconciler uses it to answer replayed gateway notifications
// for orders it has already settled without opening a store transaction.
//
//	seen := cache.NewLRU[string](4096, 10*time.Minute)
//	seen.Add(outTradeNo, tradeNo)
//	if tradeNo, ok := seen.Get(outTradeNo); ok {
//	    // already settled
//	}
package cache

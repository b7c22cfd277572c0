// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import "sort"

// sortNewestFirst orders by the given timestamp descending, then by id order
// as stored for equal timestamps.
func sortNewestFirst[T any](list []*T, ts func(*T) int64) {
	sort.SliceStable(list, func(i, j int) bool {
		return ts(list[i]) > ts(list[j])
	})
}

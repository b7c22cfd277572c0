// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/store"
)

type indexed interface {
	Namespace() string
	Verify(tx *store.Tx) (store.IndexReport, error)
	Repair(tx *store.Tx) (store.IndexReport, error)
}

func (db *DB) collections() []indexed {
	return []indexed{
		db.Accounts.coll,
		db.Links.coll,
		db.Questionnaires.coll,
		db.Notifications.coll,
		db.Orders.coll,
	}
}

// VerifyIndexes reports index drift for every collection, keyed by namespace.
func (db *DB) VerifyIndexes(ctx context.Context) (map[string]store.IndexReport, error) {
	reports := make(map[string]store.IndexReport)
	err := db.View(ctx, func(tx *store.Tx) error {
		for _, c := range db.collections() {
			r, err := c.Verify(tx)
			if err != nil {
				return err
			}
			reports[c.Namespace()] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for ns, r := range reports {
		if !r.Clean() {
			logging.Warn().
				Str("namespace", ns).
				Int("drift", r.Drift()).
				Int("undecodable", len(r.Undecodable)).
				Int("collisions", len(r.Collisions)).
				Msg("Index drift detected")
		}
	}
	return reports, nil
}

// RepairIndexes repairs every collection, each in its own transaction.
func (db *DB) RepairIndexes(ctx context.Context) (map[string]store.IndexReport, error) {
	reports := make(map[string]store.IndexReport)
	for _, c := range db.collections() {
		var r store.IndexReport
		err := db.Update(ctx, func(tx *store.Tx) error {
			var err error
			r, err = c.Repair(tx)
			return err
		})
		if err != nil {
			return reports, err
		}
		reports[c.Namespace()] = r
	}
	return reports, nil
}

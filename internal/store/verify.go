// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package store

import (
	"errors"

	"github.com/tomtom215/assesslink/internal/kv"
)

// IndexReport describes drift between a collection's records and its index
// entries. Keys are reported in their raw form.
type IndexReport struct {
	Namespace      string   `json:"namespace"`
	Records        int      `json:"records"`
	Undecodable    []string `json:"undecodable,omitempty"`
	DanglingOwner  []string `json:"danglingOwner,omitempty"`
	DanglingUnique []string `json:"danglingUnique,omitempty"`
	MissingOwner   []string `json:"missingOwner,omitempty"`
	MissingUnique  []string `json:"missingUnique,omitempty"`
	// Collisions are unique values claimed by more than one record; Repair
	// leaves them to an operator.
	Collisions []string `json:"collisions,omitempty"`
	Repaired   int      `json:"repaired,omitempty"`
}

// Drift returns the number of repairable problems found.
func (r IndexReport) Drift() int {
	return len(r.DanglingOwner) + len(r.DanglingUnique) + len(r.MissingOwner) + len(r.MissingUnique)
}

// Clean reports whether nothing at all is wrong.
func (r IndexReport) Clean() bool {
	return r.Drift() == 0 && len(r.Undecodable) == 0 && len(r.Collisions) == 0
}

type indexPlan struct {
	report    IndexReport
	deletions [][]byte
	additions []kvWrite
}

type kvWrite struct {
	key   []byte
	value []byte
}

// Verify reports index drift without changing anything.
func (c *Collection[T]) Verify(tx *Tx) (IndexReport, error) {
	plan, err := c.plan(tx)
	if err != nil {
		return IndexReport{}, err
	}
	return plan.report, nil
}

// Repair deletes dangling index entries and writes missing ones.
func (c *Collection[T]) Repair(tx *Tx) (IndexReport, error) {
	plan, err := c.plan(tx)
	if err != nil {
		return IndexReport{}, err
	}
	if len(plan.deletions) > 0 || len(plan.additions) > 0 {
		tx.touch(c.schema.Namespace)
	}
	for _, k := range plan.deletions {
		if err := tx.txn.Delete(k); err != nil {
			return plan.report, err
		}
		plan.report.Repaired++
	}
	for _, w := range plan.additions {
		if err := tx.txn.Set(w.key, w.value); err != nil {
			return plan.report, err
		}
		plan.report.Repaired++
	}
	if plan.report.Repaired > 0 {
		c.log.Info().Int("repaired", plan.report.Repaired).Msg("Repaired index entries")
	}
	return plan.report, nil
}

func (c *Collection[T]) plan(tx *Tx) (*indexPlan, error) {
	ns := c.schema.Namespace
	p := &indexPlan{report: IndexReport{Namespace: ns}}

	records := make(map[string]*T)
	prefix := recordPrefix(ns)
	if err := tx.txn.Scan(prefix, func(key, value []byte) error {
		id := string(key[len(prefix):])
		rec, err := c.decode(id, value)
		if err != nil {
			p.report.Undecodable = append(p.report.Undecodable, id)
			return nil
		}
		records[id] = rec
		return nil
	}); err != nil {
		return nil, err
	}
	p.report.Records = len(records) + len(p.report.Undecodable)

	for _, ix := range c.schema.Owners {
		ixPrefix := ownerIndexPrefix(ns, ix.Name)
		if err := tx.txn.Scan(ixPrefix, func(key, _ []byte) error {
			owner, id, ok := splitOwnerSuffix(string(key[len(ixPrefix):]))
			if ok {
				if rec, found := records[id]; found && ix.value(rec) == owner {
					return nil
				}
			}
			p.report.DanglingOwner = append(p.report.DanglingOwner, string(key))
			p.deletions = append(p.deletions, append([]byte(nil), key...))
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// claims maps each expected unique key to the ids that want it.
	claims := make(map[string][]string)
	for _, ix := range c.schema.Uniques {
		ixPrefix := uniqueIndexPrefix(ns, ix.Name)
		if err := tx.txn.Scan(ixPrefix, func(key, value []byte) error {
			val := string(key[len(ixPrefix):])
			if rec, found := records[string(value)]; found && ix.value(rec) == val {
				return nil
			}
			p.report.DanglingUnique = append(p.report.DanglingUnique, string(key))
			p.deletions = append(p.deletions, append([]byte(nil), key...))
			return nil
		}); err != nil {
			return nil, err
		}
	}

	dangling := make(map[string]bool, len(p.deletions))
	for _, k := range p.deletions {
		dangling[string(k)] = true
	}

	for _, id := range sortedKeys(records) {
		rec := records[id]
		for _, ix := range c.schema.Owners {
			owner := ix.value(rec)
			if owner == "" {
				continue
			}
			key := ownerKey(ns, ix.Name, owner, id)
			present, err := keyPresent(tx, key)
			if err != nil {
				return nil, err
			}
			if !present {
				p.report.MissingOwner = append(p.report.MissingOwner, string(key))
				p.additions = append(p.additions, kvWrite{key: key})
			}
		}
		for _, ix := range c.schema.Uniques {
			v := ix.value(rec)
			if v == "" {
				continue
			}
			key := uniqueKey(ns, ix.Name, v)
			claims[string(key)] = append(claims[string(key)], id)
		}
	}

	for _, key := range sortedKeys(claims) {
		ids := claims[key]
		_, err := tx.txn.Get([]byte(key))
		switch {
		case errors.Is(err, kv.ErrKeyNotFound):
			if len(ids) > 1 {
				p.report.Collisions = append(p.report.Collisions, key)
				continue
			}
			p.report.MissingUnique = append(p.report.MissingUnique, key)
			p.additions = append(p.additions, kvWrite{key: []byte(key), value: []byte(ids[0])})
		case err != nil:
			return nil, err
		default:
			if len(ids) > 1 {
				p.report.Collisions = append(p.report.Collisions, key)
				continue
			}
			if dangling[key] {
				// Points at the wrong record; the deletion above clears it
				// and this rewrites it for the rightful holder.
				p.report.MissingUnique = append(p.report.MissingUnique, key)
				p.additions = append(p.additions, kvWrite{key: []byte(key), value: []byte(ids[0])})
			}
		}
	}
	return p, nil
}

func keyPresent(tx *Tx, key []byte) (bool, error) {
	_, err := tx.txn.Get(key)
	if errors.Is(err, kv.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

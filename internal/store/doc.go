// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

/*
Package store implements typed record collections with secondary indexes on
top of a kv.Backend.

# Key Layout

Every collection owns three keyspaces:

	rec:<ns>:<id>                     JSON-encoded record
	own:<ns>:<index>:<owner>:<id>     owner index entry (empty value)
	uniq:<ns>:<index>:<value>         unique index entry (value is the id)

Listing a collection is a prefix scan over rec:<ns>:, so there is no separate
id list to keep in step with the records. Owner and unique entries are written
in the same transaction as the record they describe.

# Transactions

All collection operations take a *Tx. Update runs a closure in a read-write
backend transaction and re-runs it from scratch with exponential backoff when
the commit loses to a concurrent writer:

	err := store.Update(ctx, backend, policy, func(tx *store.Tx) error {
	    acct, err := accounts.Get(tx, id)
	    if err != nil {
	        return err
	    }
	    ...
	})

Closures must therefore be free of side effects other than writes through tx.
Work that should only happen once the data is durable goes in tx.OnCommit.

# Drift

Verify compares records with their index entries and reports entries that
point at missing or changed records as well as records lacking entries.
Repair rewrites the index keyspaces to match the records.
*/
package store

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package store

import "strings"

const (
	recordSpace = "rec"
	ownerSpace  = "own"
	uniqueSpace = "uniq"
	guardSpace  = "grd"
	sep         = ":"
)

func recordPrefix(ns string) []byte {
	return []byte(recordSpace + sep + ns + sep)
}

func recordKey(ns, id string) []byte {
	return []byte(recordSpace + sep + ns + sep + id)
}

func ownerIndexPrefix(ns, index string) []byte {
	return []byte(ownerSpace + sep + ns + sep + index + sep)
}

func ownerPrefix(ns, index, owner string) []byte {
	return []byte(ownerSpace + sep + ns + sep + index + sep + owner + sep)
}

func ownerKey(ns, index, owner, id string) []byte {
	return []byte(ownerSpace + sep + ns + sep + index + sep + owner + sep + id)
}

// ownerGuardKey is bumped whenever an entry is added under ownerPrefix and
// point-read by ListBy. Badger only conflict-checks keys an iterator
// returned, so without it a concurrent insert into a bucket that scanned
// empty would go unnoticed.
func ownerGuardKey(ns, index, owner string) []byte {
	return []byte(guardSpace + sep + ns + sep + index + sep + owner)
}

func uniqueIndexPrefix(ns, index string) []byte {
	return []byte(uniqueSpace + sep + ns + sep + index + sep)
}

func uniqueKey(ns, index, value string) []byte {
	return []byte(uniqueSpace + sep + ns + sep + index + sep + value)
}

// splitOwnerSuffix splits "<owner>:<id>". Ids never contain the separator,
// owners may.
func splitOwnerSuffix(rest string) (owner, id string, ok bool) {
	i := strings.LastIndex(rest, sep)
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Id prefixes per entity.
const (
	PrefixAccount      = "user"
	PrefixLink         = "link"
	PrefixNotification = "notification"
	PrefixOrder        = "order"
)

// NewID returns "<prefix>-<unix millis>-<8 hex>". Ids sort roughly by
// creation time and never contain the store key separator.
func NewID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), shortRandom())
}

// NewOutTradeNo returns a merchant order reference: "AL", a UTC timestamp to
// the second, and 8 random hex digits.
func NewOutTradeNo() string {
	return "AL" + time.Now().UTC().Format("20060102150405") + strings.ToUpper(shortRandom())
}

func shortRandom() string {
	u := uuid.New()
	return strings.ReplaceAll(u.String(), "-", "")[:8]
}

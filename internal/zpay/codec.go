// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package zpay

import (
	"crypto/md5" //nolint:gosec // MD5 is mandated by the gateway signing protocol
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Parameter names with protocol meaning.
const (
	FieldSign        = "sign"
	FieldSignType    = "sign_type"
	FieldTradeStatus = "trade_status"
	FieldOutTradeNo  = "out_trade_no"
	FieldTradeNo     = "trade_no"

	SignTypeMD5  = "MD5"
	TradeSuccess = "TRADE_SUCCESS"
)

// Params is a flat string map of gateway parameters.
type Params map[string]string

// ParamsFromValues takes the first value of each key.
func ParamsFromValues(v url.Values) Params {
	p := make(Params, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			p[k] = vals[0]
		}
	}
	return p
}

// Get returns the value for key or "".
func (p Params) Get(key string) string {
	return p[key]
}

// CanonicalPayload drops sign, sign_type and empty values, sorts the remaining
// keys in byte order, and joins them as k=v pairs with '&'. Values are not
// URL-encoded. Both signing and verification go through this function.
func CanonicalPayload(p Params) string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if v == "" || k == FieldSign || k == FieldSignType {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p[k])
	}
	return b.String()
}

// Sign returns lowercase hex md5(CanonicalPayload(p) + secret).
// It does not check the secret; callers holding a merchant key go through Merchant.
func Sign(p Params, secret string) string {
	sum := md5.Sum([]byte(CanonicalPayload(p) + secret)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Verify reports whether p carries a sign matching Sign(p, secret),
// compared case-insensitively. A missing sign never verifies.
func Verify(p Params, secret string) bool {
	received := strings.ToLower(strings.TrimSpace(p[FieldSign]))
	if received == "" {
		return false
	}
	expected := Sign(p, secret)
	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package zpay

import (
	"fmt"
	"strings"

	"github.com/tomtom215/assesslink/internal/models"
)

// MinSecretLength is the shortest merchant key accepted.
const MinSecretLength = 16

// placeholderSecrets are compared after lowercasing and trimming.
var placeholderSecrets = map[string]bool{
	"your-key":          true,
	"your_key":          true,
	"yourkey":           true,
	"your-merchant-key": true,
	"merchant_key":      true,
	"changeme":          true,
	"change-me":         true,
	"example":           true,
	"test":              true,
	"placeholder":       true,
	"replace-me":        true,
	"replace_me":        true,
	"secret":            true,
}

// CheckSecret rejects an empty, short, or placeholder merchant key with models.ErrConfiguration.
func CheckSecret(secret string) error {
	s := strings.TrimSpace(secret)
	switch {
	case s == "":
		return fmt.Errorf("%w: merchant key is not set", models.ErrConfiguration)
	case isPlaceholder(s):
		return fmt.Errorf("%w: merchant key is a placeholder", models.ErrConfiguration)
	case len(s) < MinSecretLength:
		return fmt.Errorf("%w: merchant key shorter than %d characters", models.ErrConfiguration, MinSecretLength)
	}
	return nil
}

func isPlaceholder(s string) bool {
	lower := strings.ToLower(s)
	if placeholderSecrets[lower] {
		return true
	}
	if strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">") {
		return true
	}
	if strings.HasPrefix(lower, "xxx") && strings.Trim(lower, "x") == "" {
		return true
	}
	return false
}

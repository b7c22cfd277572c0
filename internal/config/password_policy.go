// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy defines requirements for password strength.
type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RequireSpecial   bool

	// MaxConsecutiveRepeats is the maximum allowed run of one character (0 = disabled)
	MaxConsecutiveRepeats int

	ForbidCommonPasswords    bool
	ForbidUsernameSimilarity bool
}

// DefaultPasswordPolicy is applied to the bootstrap admin password.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                12,
		MaxLength:                72, // bcrypt input limit
		RequireUppercase:         true,
		RequireLowercase:         true,
		RequireDigit:             true,
		RequireSpecial:           true,
		MaxConsecutiveRepeats:    3,
		ForbidCommonPasswords:    true,
		ForbidUsernameSimilarity: true,
	}
}

// RegistrationPasswordPolicy is applied to self-service registration and password changes.
func RegistrationPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		MaxLength:             72,
		RequireLowercase:      false,
		RequireDigit:          true,
		MaxConsecutiveRepeats: 4,
		ForbidCommonPasswords: true,
	}
}

// charClasses holds the results of character class analysis.
type charClasses struct {
	hasUpper   bool
	hasLower   bool
	hasDigit   bool
	hasSpecial bool
}

func analyzeCharClasses(password string) charClasses {
	var cc charClasses
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			cc.hasUpper = true
		case unicode.IsLower(r):
			cc.hasLower = true
		case unicode.IsDigit(r):
			cc.hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			cc.hasSpecial = true
		}
	}
	return cc
}

// maxConsecutiveRepeats returns the longest run of one repeated character.
func maxConsecutiveRepeats(password string) int {
	longest, run := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		last = r
	}
	return longest
}

// Violations returns every rule the password breaks; empty means acceptable.
func (p PasswordPolicy) Violations(password, username string) []string {
	var out []string

	if len(password) < p.MinLength {
		out = append(out, fmt.Sprintf("password must be at least %d characters (got %d)", p.MinLength, len(password)))
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		out = append(out, fmt.Sprintf("password must be at most %d bytes", p.MaxLength))
	}

	cc := analyzeCharClasses(password)
	if p.RequireUppercase && !cc.hasUpper {
		out = append(out, "password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !cc.hasLower {
		out = append(out, "password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !cc.hasDigit {
		out = append(out, "password must contain at least one digit")
	}
	if p.RequireSpecial && !cc.hasSpecial {
		out = append(out, "password must contain at least one special character (!@#$%^&*...)")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		out = append(out, fmt.Sprintf("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		out = append(out, "password is too common and easily guessable")
	}
	if p.ForbidUsernameSimilarity && username != "" && isSimilarToUsername(password, username) {
		out = append(out, "password is too similar to username")
	}
	return out
}

// ValidateWithError returns an error joining all violations, or nil.
func (p PasswordPolicy) ValidateWithError(password, username string) error {
	if v := p.Violations(password, username); len(v) > 0 {
		return errors.New(strings.Join(v, "; "))
	}
	return nil
}

var commonPasswords = map[string]bool{
	"123456":        true,
	"password":      true,
	"123456789":     true,
	"12345678":      true,
	"1234567890":    true,
	"qwerty":        true,
	"abc123":        true,
	"password1":     true,
	"password123":   true,
	"admin":         true,
	"admin123":      true,
	"letmein":       true,
	"welcome":       true,
	"welcome1":      true,
	"iloveyou":      true,
	"sunshine":      true,
	"trustno1":      true,
	"111111":        true,
	"000000":        true,
	"secret":        true,
	"changeme":      true,
	"default":       true,
	"test":          true,
	"test123":       true,
	"testing123":    true,
	"guest":         true,
	"root":          true,
	"administrator": true,
	"p@ssw0rd":      true,
	"passw0rd":      true,
	"qwerty123":     true,
	"1q2w3e4r":      true,
	"abcd1234":      true,
	"11111111":      true,
	"00000000":      true,
	"12345678a":     true,
	"a12345678":     true,
	"assesslink":    true,
	"assessment":    true,
	"questionnaire": true,
	"password@123":  true,
	"admin@123":     true,
}

func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}

// isSimilarToUsername checks substring containment in either direction,
// the reversed username, and common leetspeak substitutions.
func isSimilarToUsername(password, username string) bool {
	lowerPass := strings.ToLower(password)
	lowerUser := strings.ToLower(username)

	if strings.Contains(lowerPass, lowerUser) || strings.Contains(lowerUser, lowerPass) {
		return true
	}
	if strings.Contains(lowerPass, reverseString(lowerUser)) {
		return true
	}

	substitutions := map[rune]rune{
		'a': '@', 'e': '3', 'i': '1', 'o': '0', 's': '$', 't': '7',
	}
	substituted := strings.Map(func(r rune) rune {
		if sub, ok := substitutions[r]; ok {
			return sub
		}
		return r
	}, lowerUser)
	return strings.Contains(lowerPass, substituted)
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

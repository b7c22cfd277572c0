// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/validation"
)

// errorMapping pairs a domain sentinel with its HTTP rendering. Order
// matters: the first match wins.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{models.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{models.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{models.ErrQuotaExceeded, http.StatusPaymentRequired, ErrCodePaymentRequired},
	{models.ErrAlreadyFinalized, http.StatusConflict, "ALREADY_FINALIZED"},
	{models.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{models.ErrInvalidSignature, http.StatusBadRequest, "INVALID_SIGNATURE"},
	{models.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest},
	{models.ErrUnauthorized, http.StatusUnauthorized, ErrCodeUnauthorized},
	{models.ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
	{models.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{models.ErrConfiguration, http.StatusInternalServerError, "CONFIGURATION_ERROR"},
	{models.ErrBackendUnavailable, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
}

// statusFor returns the HTTP status and error code for err.
func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternalError
}

// WriteError renders err in the JSON envelope. It is also handed to the
// auth and authz middleware so their rejections look the same.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var locked *auth.LockedError
	if errors.As(err, &locked) {
		secs := int(math.Ceil(locked.Remaining.Seconds()))
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		rw.Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, locked.Error())
		return
	}

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, apiErr.Message, apiErr.Details)
		return
	}

	status, code := statusFor(err)
	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError:
		// Internal detail stays in the log.
		logging.Ctx(r.Context()).Error().
			Str("path", r.URL.Path).
			Str("error", logging.SanitizeError(err.Error())).
			Msg("Request failed")
		message = http.StatusText(status)
	case status == http.StatusNotFound || status == http.StatusConflict:
		logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
	}
	rw.Error(status, code, message)
}

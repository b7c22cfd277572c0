// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package authz

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
}

// NewMiddleware creates a new authorization middleware. writeError renders
// denials; nil falls back to plain-text responses.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, err error) {
			status := http.StatusForbidden
			switch {
			case errors.Is(err, models.ErrUnauthorized):
				status = http.StatusUnauthorized
			case !errors.Is(err, models.ErrForbidden):
				status = http.StatusInternalServerError
			}
			http.Error(w, http.StatusText(status), status)
		}
	}
	return &Middleware{enforcer: enforcer, writeError: writeError}
}

// Authorize enforces the policy for the request path and method. A denied
// anonymous request is ErrUnauthorized so clients know to sign in; a denied
// signed-in request is ErrForbidden.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := RoleAnonymous
		p, ok := auth.PrincipalFromContext(r.Context())
		if ok {
			subject = string(p.Role)
		}
		action := methodToAction(r.Method)

		allowed, err := m.enforcer.Enforce(subject, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.writeError(w, r, err)
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("subject", subject).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Authorization denied")
			if !ok {
				m.writeError(w, r, fmt.Errorf("%w: sign in required", models.ErrUnauthorized))
				return
			}
			m.writeError(w, r, fmt.Errorf("%w: insufficient permissions", models.ErrForbidden))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/validation"
)

// maxBodyBytes bounds JSON request bodies. Questionnaire imports are the
// largest legitimate payload.
const maxBodyBytes = 2 << 20

// Request bodies that do not belong to a service package.

// LinkStatusRequest changes one link's status.
type LinkStatusRequest struct {
	Status models.LinkStatus `json:"status" validate:"required,oneof=unused used disabled expired"`
}

// BatchLinkStatusRequest changes the status of several links.
type BatchLinkStatusRequest struct {
	LinkIDs []string          `json:"linkIds" validate:"required,min=1,max=500,dive,required"`
	Status  models.LinkStatus `json:"status" validate:"required,oneof=unused used disabled expired"`
}

// LinkIDsRequest names a set of links.
type LinkIDsRequest struct {
	LinkIDs []string `json:"linkIds" validate:"required,min=1,max=500,dive,required"`
}

// UserIDsRequest names a set of accounts.
type UserIDsRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,max=500,dive,required"`
}

// NotificationIDsRequest names a set of notifications. Clients send the
// list as notificationIds; ids is accepted as well.
type NotificationIDsRequest struct {
	NotificationIDs []string `json:"notificationIds" validate:"omitempty,max=500,dive,required"`
	IDs             []string `json:"ids" validate:"omitempty,max=500,dive,required"`
}

const maxNotificationIDs = 500

// List returns both id lists combined.
func (req NotificationIDsRequest) List() ([]string, error) {
	ids := append(append([]string(nil), req.NotificationIDs...), req.IDs...)
	switch {
	case len(ids) == 0:
		return nil, fmt.Errorf("%w: notificationIds is required", models.ErrInvalidInput)
	case len(ids) > maxNotificationIDs:
		return nil, fmt.Errorf("%w: at most %d notifications per request", models.ErrInvalidInput, maxNotificationIDs)
	}
	return ids, nil
}

// SubmitRequest records a finished test against its link.
type SubmitRequest struct {
	ReportID string `json:"reportId" validate:"required,max=128"`
}

// AccountStatusRequest approves or disables an account.
type AccountStatusRequest struct {
	Status models.AccountStatus `json:"status" validate:"required,oneof=active pending disabled"`
}

// QuotaGrantRequest adds quota to an account.
type QuotaGrantRequest struct {
	Amount int `json:"amount" validate:"required,min=1,max=100000"`
}

// PublishRequest publishes or unpublishes a questionnaire.
type PublishRequest struct {
	IsPublished *bool `json:"isPublished" validate:"required"`
}

// RenameRequest moves a questionnaire to a new type.
type RenameRequest struct {
	NewType string `json:"newType" validate:"required"`
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: request body exceeds %d bytes", models.ErrInvalidInput, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", models.ErrInvalidInput)
		default:
			return fmt.Errorf("%w: malformed JSON body", models.ErrInvalidInput)
		}
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// getIntParam reads an integer query parameter, falling back to
// defaultValue when absent or malformed.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

// getBoolParam reads an optional boolean query parameter. A malformed
// value is an error rather than a silent default.
func getBoolParam(r *http.Request, key string) (*bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", models.ErrInvalidInput, key)
	}
	return &b, nil
}

// principal returns the authenticated caller. authz has already turned
// anonymous requests away from every route that calls it.
func principal(r *http.Request) (models.Principal, error) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return models.Principal{}, fmt.Errorf("%w: sign in required", models.ErrUnauthorized)
	}
	return p, nil
}

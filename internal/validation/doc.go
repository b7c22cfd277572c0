// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom validators
// for assesslink-specific rules.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Field names reported by their JSON tag, as clients see them
//   - Custom validators: username, qtype (questionnaire type key), money
//   - Errors satisfy errors.Is(err, models.ErrInvalidInput)
//   - Uses WithRequiredStructEnabled option (v11+ compatibility)
//
// Example usage:
//
//	type IssueRequest struct {
//	    QuestionnaireType string `json:"questionnaireType" validate:"required,qtype"`
//	    Quantity          int    `json:"quantity" validate:"min=0,max=1000"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    ...
//	}
package validation

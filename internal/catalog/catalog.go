// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

// Package catalog manages the questionnaire library: JSON import, publishing,
// renaming and the public listing of published questionnaires.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/validation"
)

// ImportContent is the question bank carried by an import.
type ImportContent struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []models.Question `json:"questions"`
	Dimensions  []string          `json:"dimensions"`
}

// ImportRequest creates or replaces the questionnaire of Type.
type ImportRequest struct {
	Type        string         `json:"type" validate:"required,qtype"`
	Questions   *ImportContent `json:"questions" validate:"required"`
	Description string         `json:"description" validate:"max=4000"`
}

// ImportResult summarises a completed import.
type ImportResult struct {
	Type          string    `json:"type"`
	QuestionCount int       `json:"questionCount"`
	ImportedAt    time.Time `json:"importedAt"`
}

// Entry is one questionnaire in a listing.
type Entry struct {
	models.QuestionnaireSummary
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service is the questionnaire library.
type Service struct {
	db *database.DB
}

// NewService returns a Service over db.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Import stores the questionnaire of req.Type, replacing the questions of an
// existing one while keeping its published flag. Questions without an id or
// number are numbered in order.
func (s *Service) Import(ctx context.Context, req ImportRequest) (ImportResult, error) {
	if req.Questions == nil {
		return ImportResult{}, fmt.Errorf("%w: questions are required", models.ErrInvalidInput)
	}
	q := &models.Questionnaire{
		Type:        strings.TrimSpace(req.Type),
		Title:       strings.TrimSpace(req.Questions.Title),
		Description: req.Description,
		Questions:   normalizeQuestions(req.Questions.Questions),
		Dimensions:  req.Questions.Dimensions,
	}
	if q.Title == "" {
		q.Title = q.Type
	}
	if q.Description == "" {
		q.Description = req.Questions.Description
	}
	if err := validation.ValidateStruct(q); err != nil {
		return ImportResult{}, err
	}

	saved, err := s.db.Questionnaires.Save(ctx, q)
	if err != nil {
		return ImportResult{}, err
	}
	logging.Ctx(ctx).Info().
		Str("type", saved.Type).
		Int("questions", len(saved.Questions)).
		Msg("Questionnaire imported")
	return ImportResult{
		Type:          saved.Type,
		QuestionCount: len(saved.Questions),
		ImportedAt:    saved.UpdatedAt,
	}, nil
}

func normalizeQuestions(in []models.Question) []models.Question {
	out := make([]models.Question, len(in))
	for i, q := range in {
		if q.Number == 0 {
			q.Number = i + 1
		}
		if strings.TrimSpace(q.ID) == "" {
			q.ID = "q" + strconv.Itoa(q.Number)
		}
		out[i] = q
	}
	return out
}

func entryOf(q *models.Questionnaire) Entry {
	return Entry{QuestionnaireSummary: q.Summary(), CreatedAt: q.CreatedAt, UpdatedAt: q.UpdatedAt}
}

// List returns every questionnaire without question bodies.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	all, err := s.db.Questionnaires.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(all))
	for i, q := range all {
		out[i] = entryOf(q)
	}
	return out, nil
}

// Available returns the published questionnaires.
func (s *Service) Available(ctx context.Context) ([]Entry, error) {
	published, err := s.db.Questionnaires.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(published))
	for i, q := range published {
		out[i] = entryOf(q)
	}
	return out, nil
}

// Get returns the full questionnaire of qType.
func (s *Service) Get(ctx context.Context, qType string) (*models.Questionnaire, error) {
	return s.db.Questionnaires.Get(ctx, qType)
}

// SetPublished lists or unlists a questionnaire.
func (s *Service) SetPublished(ctx context.Context, qType string, published bool) (*models.Questionnaire, error) {
	q, err := s.db.Questionnaires.SetPublished(ctx, qType, published)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("type", qType).Bool("published", published).Msg("Questionnaire publish status changed")
	return q, nil
}

// Rename moves a questionnaire to newType atomically. A taken newType is
// ErrConflict. Links already issued keep the old type.
func (s *Service) Rename(ctx context.Context, oldType, newType string) (*models.Questionnaire, error) {
	newType = strings.TrimSpace(newType)
	if err := validation.GetValidator().Var(newType, "required,qtype"); err != nil {
		return nil, fmt.Errorf("%w: newType must be lower-case letters, digits, '_' or '-'", models.ErrInvalidInput)
	}
	q, err := s.db.Questionnaires.Rename(ctx, oldType, newType)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("from", oldType).Str("to", newType).Msg("Questionnaire renamed")
	return q, nil
}

// Delete removes a questionnaire.
func (s *Service) Delete(ctx context.Context, qType string) error {
	if err := s.db.Questionnaires.Delete(ctx, qType); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("type", qType).Msg("Questionnaire deleted")
	return nil
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package models

import "time"

// Questionnaire is keyed by Type; at most one record exists per type.
type Questionnaire struct {
	Type        string     `json:"type" validate:"required,max=64"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=4000"`
	Questions   []Question `json:"questions" validate:"required,min=1,dive"`
	Dimensions  []string   `json:"dimensions,omitempty"`
	IsPublished bool       `json:"isPublished"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Question is one ordered item of a questionnaire.
type Question struct {
	ID       string           `json:"id" validate:"required"`
	Number   int              `json:"number" validate:"gte=1"`
	Text     string           `json:"text" validate:"required"`
	Options  []QuestionOption `json:"options,omitempty" validate:"dive"`
	Category string           `json:"category,omitempty"`
	Required bool             `json:"required,omitempty"`
}

// QuestionOption is a selectable answer. Value is a number or a string.
type QuestionOption struct {
	Value any    `json:"value"`
	Label string `json:"label" validate:"required"`
}

// QuestionnaireSummary is the public listing shape (no questions).
type QuestionnaireSummary struct {
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	QuestionCount int      `json:"questionCount"`
	Dimensions    []string `json:"dimensions,omitempty"`
	IsPublished   bool     `json:"isPublished"`
}

// Summary projects q without its question bodies.
func (q *Questionnaire) Summary() QuestionnaireSummary {
	return QuestionnaireSummary{
		Type:          q.Type,
		Title:         q.Title,
		Description:   q.Description,
		QuestionCount: len(q.Questions),
		Dimensions:    q.Dimensions,
		IsPublished:   q.IsPublished,
	}
}

// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/store"
)

// QuestionnaireRepo stores questionnaires keyed by type, so creating a
// record is itself the uniqueness check.
type QuestionnaireRepo struct {
	db   *DB
	coll *store.Collection[models.Questionnaire]
}

func newQuestionnaireRepo(db *DB) *QuestionnaireRepo {
	return &QuestionnaireRepo{
		db: db,
		coll: store.NewCollection(store.Schema[models.Questionnaire]{
			Namespace: "questionnaires",
			ID:        func(q *models.Questionnaire) string { return q.Type },
			SetID:     func(q *models.Questionnaire, id string) { q.Type = id },
		}),
	}
}

// CreateTx stores a questionnaire whose type must be new.
func (r *QuestionnaireRepo) CreateTx(tx *store.Tx, q *models.Questionnaire) error {
	now := r.db.now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	return translate(r.coll.Create(tx, q))
}

// Create stores a questionnaire whose type must be new.
func (r *QuestionnaireRepo) Create(ctx context.Context, q *models.Questionnaire) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		return r.CreateTx(tx, q)
	})
}

// Save creates q or replaces the content of the stored questionnaire of the
// same type. CreatedAt and the published flag of an existing record are kept.
// The stored result is returned.
func (r *QuestionnaireRepo) Save(ctx context.Context, q *models.Questionnaire) (*models.Questionnaire, error) {
	var out *models.Questionnaire
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		updated, err := r.coll.Update(tx, q.Type, func(cur *models.Questionnaire) error {
			cur.Title = q.Title
			cur.Description = q.Description
			cur.Questions = q.Questions
			cur.Dimensions = q.Dimensions
			cur.UpdatedAt = r.db.now()
			return nil
		})
		if err == nil {
			out = updated
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return translate(err)
		}
		fresh := *q
		if err := r.CreateTx(tx, &fresh); err != nil {
			return err
		}
		out = &fresh
		return nil
	})
	return out, err
}

// GetTx loads a questionnaire by type.
func (r *QuestionnaireRepo) GetTx(tx *store.Tx, qType string) (*models.Questionnaire, error) {
	q, err := r.coll.Get(tx, qType)
	if err != nil {
		return nil, notFound("questionnaire", qType, err)
	}
	return q, nil
}

// Get loads a questionnaire by type.
func (r *QuestionnaireRepo) Get(ctx context.Context, qType string) (*models.Questionnaire, error) {
	var out *models.Questionnaire
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.GetTx(tx, qType)
		return err
	})
	return out, err
}

// List returns every questionnaire ordered by type.
func (r *QuestionnaireRepo) List(ctx context.Context) ([]*models.Questionnaire, error) {
	var out []*models.Questionnaire
	err := r.db.View(ctx, func(tx *store.Tx) error {
		var err error
		out, err = r.coll.List(tx)
		return translate(err)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, err
}

// ListPublished returns the published questionnaires ordered by type.
func (r *QuestionnaireRepo) ListPublished(ctx context.Context) ([]*models.Questionnaire, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, q := range all {
		if q.IsPublished {
			out = append(out, q)
		}
	}
	return out, nil
}

// SetPublished toggles whether a questionnaire can be issued and taken.
func (r *QuestionnaireRepo) SetPublished(ctx context.Context, qType string, published bool) (*models.Questionnaire, error) {
	var out *models.Questionnaire
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		q, err := r.coll.Update(tx, qType, func(q *models.Questionnaire) error {
			q.IsPublished = published
			q.UpdatedAt = r.db.now()
			return nil
		})
		if err != nil {
			return notFound("questionnaire", qType, err)
		}
		out = q
		return nil
	})
	return out, err
}

// Rename moves a questionnaire to a new type in one transaction: the new
// record is created and the old one deleted, or neither happens.
func (r *QuestionnaireRepo) Rename(ctx context.Context, oldType, newType string) (*models.Questionnaire, error) {
	if oldType == newType {
		return nil, fmt.Errorf("%w: new type equals old type", models.ErrInvalidInput)
	}
	var out *models.Questionnaire
	err := r.db.Update(ctx, func(tx *store.Tx) error {
		q, err := r.GetTx(tx, oldType)
		if err != nil {
			return err
		}
		renamed := *q
		renamed.Type = newType
		renamed.UpdatedAt = r.db.now()
		if err := translate(r.coll.Create(tx, &renamed)); err != nil {
			return fmt.Errorf("questionnaire %q: %w", newType, err)
		}
		if err := r.coll.Delete(tx, oldType); err != nil {
			return notFound("questionnaire", oldType, err)
		}
		out = &renamed
		return nil
	})
	return out, err
}

// Delete removes a questionnaire. Links referencing its type are kept.
func (r *QuestionnaireRepo) Delete(ctx context.Context, qType string) error {
	return r.db.Update(ctx, func(tx *store.Tx) error {
		if err := r.coll.Delete(tx, qType); err != nil {
			return notFound("questionnaire", qType, err)
		}
		return nil
	})
}

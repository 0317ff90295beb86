// Package repository defines the submission store interface and errors.
package repository

import (
	"context"

	"github.com/mvidal/destino/internal/domain/model"
)

// Store provides read/write access to season submissions.
type Store interface {
	// Upsert inserts or replaces the submission for (season, user).
	// When the user already has a submission in the season, the original
	// SubmittedAt is preserved so re-submitting never improves priority.
	Upsert(ctx context.Context, season string, sub model.Submission) (model.Submission, error)

	// Submission returns a single user's submission for a season.
	// Returns ErrNotFound if the user has not submitted.
	Submission(ctx context.Context, season, userID string) (model.Submission, error)

	// SeasonSubmissions returns all submissions for a season ordered by
	// priority (order asc, then submittedAt asc, then id asc).
	SeasonSubmissions(ctx context.Context, season string) ([]model.Submission, error)

	// SubmissionsAbove returns the submissions with a strictly lower order
	// value than the given one, in priority order.
	SubmissionsAbove(ctx context.Context, season string, order int) ([]model.Submission, error)

	// Orders returns the claimed order numbers for a season, ascending.
	Orders(ctx context.Context, season string) ([]model.OrderEntry, error)

	// Delete removes a user's submission from a season.
	// Returns ErrNotFound if there was nothing to remove.
	Delete(ctx context.Context, season, userID string) error

	// DeleteAllForUser removes a user's submissions from every season and
	// returns the seasons that were touched.
	DeleteAllForUser(ctx context.Context, userID string) ([]string, error)

	// Count returns the number of submissions tracked for a season.
	Count(ctx context.Context, season string) int

	// Seasons returns the seasons that currently hold submissions.
	Seasons(ctx context.Context) []string

	// Close releases any resources held by the store.
	Close() error
}

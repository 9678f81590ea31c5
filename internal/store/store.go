// Package store defines the persistence contract for form schemas and
// submissions, with in-memory, file-backed, and Postgres
// implementations selected by configuration.
package store

import (
	"context"

	"github.com/Alifast22/formbuilder/model"
)

// Store persists form schemas and their submissions. Deleting a form
// cascades to delete every submission referencing it. Submissions are
// upserted by id, which is what lets repeated draft saves overwrite a
// single draft record instead of accumulating.
type Store interface {
	// AddForm persists a new schema. Returns CONFLICT if the id exists.
	AddForm(ctx context.Context, schema model.FormSchema) error

	// UpdateForm replaces a schema by id. Returns NOT_FOUND if absent.
	UpdateForm(ctx context.Context, schema model.FormSchema) error

	// DeleteForm removes a schema and all submissions referencing it.
	DeleteForm(ctx context.Context, id string) error

	// GetForm retrieves a schema by id.
	GetForm(ctx context.Context, id string) (model.FormSchema, error)

	// ListForms returns all schemas ordered by creation time descending.
	ListForms(ctx context.Context) ([]model.FormSchema, error)

	// SubmitData upserts a submission by id.
	SubmitData(ctx context.Context, sub model.Submission) error

	// DeleteSubmission removes a submission by id.
	DeleteSubmission(ctx context.Context, id string) error

	// GetSubmissionByID retrieves a submission by id.
	GetSubmissionByID(ctx context.Context, id string) (model.Submission, error)

	// ListSubmissions returns all submissions ordered by submittedAt
	// descending.
	ListSubmissions(ctx context.Context) ([]model.Submission, error)

	// ListSubmissionsByForm returns the submissions for one form,
	// ordered by submittedAt descending.
	ListSubmissionsByForm(ctx context.Context, formID string) ([]model.Submission, error)

	// LatestDraft returns the most recently saved draft submission for
	// a form, or NOT_FOUND if the form has no draft.
	LatestDraft(ctx context.Context, formID string) (model.Submission, error)

	// Ping reports whether the store is reachable, for readiness checks.
	Ping(ctx context.Context) error
}

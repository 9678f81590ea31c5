package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alifast22/formbuilder/model"
)

// PgStore is a PostgreSQL-backed Store using pgx/v5. Schemas and
// submission data are stored as jsonb payloads alongside the columns
// needed for filtering and ordering.
//
// Expected tables:
//
//	CREATE TABLE forms (
//	    id         TEXT PRIMARY KEY,
//	    payload    JSONB NOT NULL,
//	    created_at BIGINT NOT NULL
//	);
//	CREATE TABLE submissions (
//	    id           TEXT PRIMARY KEY,
//	    form_id      TEXT NOT NULL,
//	    form_version INT NOT NULL,
//	    data         JSONB NOT NULL,
//	    submitted_at BIGINT NOT NULL,
//	    is_draft     BOOLEAN NOT NULL
//	);
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PostgreSQL store over an existing pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// AddForm persists a new schema.
func (s *PgStore) AddForm(ctx context.Context, schema model.FormSchema) error {
	payload, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO forms (id, payload, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		schema.ID, payload, schema.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewConflictError(
			fmt.Sprintf("form %q already exists", schema.ID),
		)
	}
	return nil
}

// UpdateForm replaces a schema by id.
func (s *PgStore) UpdateForm(ctx context.Context, schema model.FormSchema) error {
	payload, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE forms SET payload = $1 WHERE id = $2`,
		payload, schema.ID,
	)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError(fmt.Sprintf("form %q not found", schema.ID))
	}
	return nil
}

// DeleteForm removes a schema and cascades to its submissions in one
// transaction.
func (s *PgStore) DeleteForm(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete form: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM submissions WHERE form_id = $1`, id); err != nil {
		return fmt.Errorf("delete form submissions: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError(fmt.Sprintf("form %q not found", id))
	}

	return tx.Commit(ctx)
}

// GetForm retrieves a schema by id.
func (s *PgStore) GetForm(ctx context.Context, id string) (model.FormSchema, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM forms WHERE id = $1`, id).Scan(&payload)
	if err == pgx.ErrNoRows {
		return model.FormSchema{}, model.NewNotFoundError(
			fmt.Sprintf("form %q not found", id),
		)
	}
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("query form: %w", err)
	}

	var schema model.FormSchema
	if err := json.Unmarshal(payload, &schema); err != nil {
		return model.FormSchema{}, fmt.Errorf("unmarshal form: %w", err)
	}
	return schema, nil
}

// ListForms returns all schemas, newest first.
func (s *PgStore) ListForms(ctx context.Context) ([]model.FormSchema, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM forms ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query forms: %w", err)
	}
	defer rows.Close()

	var result []model.FormSchema
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		var schema model.FormSchema
		if err := json.Unmarshal(payload, &schema); err != nil {
			return nil, fmt.Errorf("unmarshal form: %w", err)
		}
		result = append(result, schema)
	}
	return result, rows.Err()
}

// SubmitData upserts a submission by id.
func (s *PgStore) SubmitData(ctx context.Context, sub model.Submission) error {
	dataJSON, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("marshal submission data: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO submissions (id, form_id, form_version, data, submitted_at, is_draft)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			form_id = EXCLUDED.form_id,
			form_version = EXCLUDED.form_version,
			data = EXCLUDED.data,
			submitted_at = EXCLUDED.submitted_at,
			is_draft = EXCLUDED.is_draft`,
		sub.ID, sub.FormID, sub.FormVersion, dataJSON, sub.SubmittedAt, sub.IsDraft,
	)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// DeleteSubmission removes a submission by id.
func (s *PgStore) DeleteSubmission(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError(fmt.Sprintf("submission %q not found", id))
	}
	return nil
}

// GetSubmissionByID retrieves a submission by id.
func (s *PgStore) GetSubmissionByID(ctx context.Context, id string) (model.Submission, error) {
	var sub model.Submission
	var dataJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, form_id, form_version, data, submitted_at, is_draft
		FROM submissions WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.FormID, &sub.FormVersion, &dataJSON, &sub.SubmittedAt, &sub.IsDraft)
	if err == pgx.ErrNoRows {
		return model.Submission{}, model.NewNotFoundError(
			fmt.Sprintf("submission %q not found", id),
		)
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("query submission: %w", err)
	}

	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &sub.Data); err != nil {
			return model.Submission{}, fmt.Errorf("unmarshal submission data: %w", err)
		}
	}
	return sub, nil
}

// ListSubmissions returns all submissions, newest first.
func (s *PgStore) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT id, form_id, form_version, data, submitted_at, is_draft
		FROM submissions ORDER BY submitted_at DESC, id ASC`)
}

// ListSubmissionsByForm returns one form's submissions, newest first.
func (s *PgStore) ListSubmissionsByForm(ctx context.Context, formID string) ([]model.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT id, form_id, form_version, data, submitted_at, is_draft
		FROM submissions WHERE form_id = $1
		ORDER BY submitted_at DESC, id ASC`, formID)
}

// LatestDraft returns the most recent draft for a form.
func (s *PgStore) LatestDraft(ctx context.Context, formID string) (model.Submission, error) {
	subs, err := s.querySubmissions(ctx, `
		SELECT id, form_id, form_version, data, submitted_at, is_draft
		FROM submissions WHERE form_id = $1 AND is_draft
		ORDER BY submitted_at DESC, id ASC
		LIMIT 1`, formID)
	if err != nil {
		return model.Submission{}, err
	}
	if len(subs) == 0 {
		return model.Submission{}, model.NewNotFoundError(
			fmt.Sprintf("no draft for form %q", formID),
		)
	}
	return subs[0], nil
}

// Ping verifies the database connection.
func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PgStore) querySubmissions(ctx context.Context, query string, args ...any) ([]model.Submission, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var result []model.Submission
	for rows.Next() {
		var sub model.Submission
		var dataJSON []byte
		if err := rows.Scan(
			&sub.ID, &sub.FormID, &sub.FormVersion, &dataJSON, &sub.SubmittedAt, &sub.IsDraft,
		); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if dataJSON != nil {
			_ = json.Unmarshal(dataJSON, &sub.Data)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

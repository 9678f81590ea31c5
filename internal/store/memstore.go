package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Alifast22/formbuilder/model"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu          sync.RWMutex
	forms       map[string]model.FormSchema
	submissions map[string]model.Submission
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forms:       make(map[string]model.FormSchema),
		submissions: make(map[string]model.Submission),
	}
}

// AddForm persists a new schema.
func (s *MemoryStore) AddForm(_ context.Context, schema model.FormSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forms[schema.ID]; exists {
		return model.NewConflictError(
			fmt.Sprintf("form %q already exists", schema.ID),
		)
	}
	s.forms[schema.ID] = schema
	return nil
}

// UpdateForm replaces a schema by id.
func (s *MemoryStore) UpdateForm(_ context.Context, schema model.FormSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forms[schema.ID]; !exists {
		return model.NewNotFoundError(
			fmt.Sprintf("form %q not found", schema.ID),
		)
	}
	s.forms[schema.ID] = schema
	return nil
}

// DeleteForm removes a schema and cascades to its submissions.
func (s *MemoryStore) DeleteForm(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forms[id]; !exists {
		return model.NewNotFoundError(fmt.Sprintf("form %q not found", id))
	}
	delete(s.forms, id)
	for subID, sub := range s.submissions {
		if sub.FormID == id {
			delete(s.submissions, subID)
		}
	}
	return nil
}

// GetForm retrieves a schema by id.
func (s *MemoryStore) GetForm(_ context.Context, id string) (model.FormSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, exists := s.forms[id]
	if !exists {
		return model.FormSchema{}, model.NewNotFoundError(
			fmt.Sprintf("form %q not found", id),
		)
	}
	return schema, nil
}

// ListForms returns all schemas, newest first.
func (s *MemoryStore) ListForms(_ context.Context) ([]model.FormSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.FormSchema, 0, len(s.forms))
	for _, f := range s.forms {
		result = append(result, f)
	}
	sortForms(result)
	return result, nil
}

// SubmitData upserts a submission by id.
func (s *MemoryStore) SubmitData(_ context.Context, sub model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions[sub.ID] = sub
	return nil
}

// DeleteSubmission removes a submission by id.
func (s *MemoryStore) DeleteSubmission(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.submissions[id]; !exists {
		return model.NewNotFoundError(fmt.Sprintf("submission %q not found", id))
	}
	delete(s.submissions, id)
	return nil
}

// GetSubmissionByID retrieves a submission by id.
func (s *MemoryStore) GetSubmissionByID(_ context.Context, id string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.submissions[id]
	if !exists {
		return model.Submission{}, model.NewNotFoundError(
			fmt.Sprintf("submission %q not found", id),
		)
	}
	return sub, nil
}

// ListSubmissions returns all submissions, newest first.
func (s *MemoryStore) ListSubmissions(_ context.Context) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		result = append(result, sub)
	}
	sortSubmissions(result)
	return result, nil
}

// ListSubmissionsByForm returns one form's submissions, newest first.
func (s *MemoryStore) ListSubmissionsByForm(_ context.Context, formID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Submission
	for _, sub := range s.submissions {
		if sub.FormID == formID {
			result = append(result, sub)
		}
	}
	sortSubmissions(result)
	return result, nil
}

// LatestDraft returns the most recent draft for a form.
func (s *MemoryStore) LatestDraft(_ context.Context, formID string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest model.Submission
	found := false
	for _, sub := range s.submissions {
		if sub.FormID != formID || !sub.IsDraft {
			continue
		}
		if !found || sub.SubmittedAt > latest.SubmittedAt {
			latest = sub
			found = true
		}
	}
	if !found {
		return model.Submission{}, model.NewNotFoundError(
			fmt.Sprintf("no draft for form %q", formID),
		)
	}
	return latest, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func sortForms(forms []model.FormSchema) {
	sort.Slice(forms, func(i, j int) bool {
		if forms[i].CreatedAt != forms[j].CreatedAt {
			return forms[i].CreatedAt > forms[j].CreatedAt
		}
		return forms[i].ID < forms[j].ID
	})
}

func sortSubmissions(subs []model.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].SubmittedAt != subs[j].SubmittedAt {
			return subs[i].SubmittedAt > subs[j].SubmittedAt
		}
		return subs[i].ID < subs[j].ID
	})
}

// Package runtime mediates between a form schema, an in-progress data
// record, and persisted submissions: it seeds the working record,
// applies edits, re-resolves visibility, and decides draft-vs-submit
// persistence.
package runtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/Alifast22/formbuilder/internal/engine"
	"github.com/Alifast22/formbuilder/internal/store"
	"github.com/Alifast22/formbuilder/model"
)

// State of a session.
type State int

const (
	// StateEditing is the normal interactive state.
	StateEditing State = iota
	// StateSubmitted is terminal: the record was finalized and the
	// view shows a confirmation for 1800ms before navigating to the
	// submissions list.
	StateSubmitted
)

// Session is one editing session over a schema. Not safe for
// concurrent use; the runtime is single-threaded by design.
type Session struct {
	schema       *model.FormSchema
	store        store.Store
	submissionID string // set when editing an existing submission
	data         map[string]any
	errors       map[string]string
	state        State
}

// Open starts a session for a schema. When submissionID is non-empty
// the session edits that submission and loads its data verbatim.
// Otherwise the most recent draft for the form is loaded if one
// exists; failing that, the record is seeded from field defaults
// (fields without a default stay absent, not empty-string).
func Open(ctx context.Context, st store.Store, schema *model.FormSchema, submissionID string) (*Session, error) {
	s := &Session{
		schema:       schema,
		store:        st,
		submissionID: submissionID,
		data:         make(map[string]any),
		errors:       make(map[string]string),
	}

	if submissionID != "" {
		sub, err := st.GetSubmissionByID(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		for k, v := range sub.Data {
			s.data[k] = v
		}
		return s, nil
	}

	draft, err := st.LatestDraft(ctx, schema.ID)
	switch {
	case err == nil:
		for k, v := range draft.Data {
			s.data[k] = v
		}
		return s, nil
	case !isNotFound(err):
		// A real store failure must not be mistaken for "no draft",
		// or defaults would silently shadow the user's draft.
		return nil, err
	}

	for _, field := range schema.Fields() {
		if field.DefaultValue != nil {
			s.data[field.Name] = field.DefaultValue
		}
	}
	return s, nil
}

// State returns the session state.
func (s *Session) State() State {
	return s.state
}

// Data returns the working record.
func (s *Session) Data() map[string]any {
	return s.data
}

// Errors returns the current per-field validation errors.
func (s *Session) Errors() map[string]string {
	return s.errors
}

// VisibleSections resolves conditional visibility against the current
// record.
func (s *Session) VisibleSections() []model.FormSection {
	return engine.ResolveSections(s.schema, s.data)
}

// SetValue replaces a field's value. A previously recorded error for
// the field is cleared optimistically; re-validation happens only on
// submit.
func (s *Session) SetValue(name string, value any) {
	s.data[name] = value
	delete(s.errors, name)
}

// ToggleOption adds or removes one option value on a multi-select
// field, preserving insertion order.
func (s *Session) ToggleOption(name, optionValue string, checked bool) {
	current := toStringSlice(s.data[name])
	if checked {
		for _, v := range current {
			if v == optionValue {
				s.data[name] = current
				return
			}
		}
		current = append(current, optionValue)
	} else {
		// Filter into a fresh slice. Reusing the backing array would
		// reach into any persisted copy that still shares it.
		kept := make([]string, 0, len(current))
		for _, v := range current {
			if v != optionValue {
				kept = append(kept, v)
			}
		}
		current = kept
	}
	s.data[name] = current
	delete(s.errors, name)
}

// Reset clears the working record back to empty (not back to
// defaults). The caller is responsible for user confirmation.
func (s *Session) Reset() {
	s.data = make(map[string]any)
	s.errors = make(map[string]string)
}

// Submit finalizes the session. Validation runs over the full schema;
// on any violation the errors are recorded and surfaced and nothing is
// persisted. On success the submission is stored with isDraft=false,
// the schema version frozen, reusing the edit id or minting a new one,
// and the session becomes terminal.
func (s *Session) Submit(ctx context.Context) (model.Submission, error) {
	errs := engine.Validate(s.schema, s.data)
	if len(errs) > 0 {
		s.errors = errs
		return model.Submission{}, model.NewValidationError(errs)
	}

	id := s.submissionID
	if id == "" {
		id = uuid.NewString()
	}

	sub := s.buildSubmission(id, false)
	if err := s.store.SubmitData(ctx, sub); err != nil {
		return model.Submission{}, err
	}
	s.state = StateSubmitted
	return sub, nil
}

// SaveDraft persists the record without any validation. The id
// resolves to the explicit edit id, else the form's existing draft id,
// else a fresh one, so repeated draft saves overwrite a single draft
// instead of accumulating.
func (s *Session) SaveDraft(ctx context.Context) (model.Submission, error) {
	id := s.submissionID
	if id == "" {
		draft, err := s.store.LatestDraft(ctx, s.schema.ID)
		switch {
		case err == nil:
			id = draft.ID
		case isNotFound(err):
			id = uuid.NewString()
		default:
			return model.Submission{}, err
		}
	}

	sub := s.buildSubmission(id, true)
	if err := s.store.SubmitData(ctx, sub); err != nil {
		return model.Submission{}, err
	}
	return sub, nil
}

func (s *Session) buildSubmission(id string, isDraft bool) model.Submission {
	data := make(map[string]any, len(s.data))
	for k, v := range s.data {
		// Detach option slices so later session edits cannot rewrite
		// a record already handed to the store.
		if vs, ok := v.([]string); ok {
			data[k] = append([]string(nil), vs...)
			continue
		}
		data[k] = v
	}
	return model.Submission{
		ID:          id,
		FormID:      s.schema.ID,
		FormVersion: s.schema.Version,
		Data:        data,
		SubmittedAt: model.NowMillis(),
		IsDraft:     isDraft,
	}
}

// isNotFound reports whether an error is a NOT_FOUND envelope.
func isNotFound(err error) bool {
	ee, ok := err.(*model.ErrorEnvelope)
	return ok && ee.Code == model.ErrNotFound
}

// toStringSlice coerces a stored checkbox value to []string. Non-array
// values start a fresh array, matching how the renderer treats them.
func toStringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, el := range val {
			if str, ok := el.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

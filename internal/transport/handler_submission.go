package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Alifast22/formbuilder/internal/observability"
	"github.com/Alifast22/formbuilder/internal/runtime"
	"github.com/Alifast22/formbuilder/model"
)

type submissionHandler struct {
	deps Dependencies
}

// submitRequest is the body for creating or updating a submission. If
// SubmissionID is set, the session opens against that record for
// editing; otherwise it starts from the form's latest draft or from
// defaults. Draft=true skips validation and overwrites the form's
// single draft record.
type submitRequest struct {
	SubmissionID string         `json:"submissionId,omitempty"`
	Data         map[string]any `json:"data"`
	Draft        bool           `json:"draft"`
}

func (h *submissionHandler) create(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	schema, err := h.deps.Store.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	sess, err := runtime.Open(r.Context(), h.deps.Store, &schema, req.SubmissionID)
	if err != nil {
		WriteError(w, err)
		return
	}
	for name, value := range req.Data {
		sess.SetValue(name, value)
	}

	ctx, span := observability.StartSpan(r.Context(), "submission.save",
		observability.AttrFormID.String(formID),
		observability.AttrIsDraft.Bool(req.Draft))

	var sub model.Submission
	if req.Draft {
		sub, err = sess.SaveDraft(ctx)
	} else {
		sub, err = sess.Submit(ctx)
	}
	if err == nil {
		span.SetAttributes(observability.AttrSubmissionID.String(sub.ID))
	}
	observability.EndSpanWithError(span, err)

	log := observability.RequestLogger(r.Context(), h.deps.Logger)
	if err != nil {
		if ee, ok := err.(*model.ErrorEnvelope); ok && ee.Code == model.ErrValidationError {
			if h.deps.Metrics != nil {
				h.deps.Metrics.RecordValidationFailure(formID)
			}
			log.Warn("submission rejected",
				zap.String("form_id", formID),
				zap.Int("error_count", len(ee.Details)))
		}
		WriteError(w, err)
		return
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordSubmission(sub.IsDraft)
	}
	log.Info("submission saved",
		zap.String("form_id", formID),
		zap.String("submission_id", sub.ID),
		zap.Bool("is_draft", sub.IsDraft))
	if log.Core().Enabled(zap.DebugLevel) {
		log.Debug("submission data",
			zap.String("submission_id", sub.ID),
			zap.Any("data", observability.RedactData(sub.Data, passwordFieldNames(&schema))))
	}

	WriteJSON(w, http.StatusCreated, sub)
}

// passwordFieldNames lists the schema's password-type fields so their
// values are redacted alongside the built-in sensitive names.
func passwordFieldNames(schema *model.FormSchema) []string {
	var names []string
	for _, f := range schema.Fields() {
		if f.Type == model.FieldTypePassword {
			names = append(names, f.Name)
		}
	}
	return names
}

func (h *submissionHandler) list(w http.ResponseWriter, r *http.Request) {
	subs, err := h.deps.Store.ListSubmissions(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, subs)
}

func (h *submissionHandler) listByForm(w http.ResponseWriter, r *http.Request) {
	subs, err := h.deps.Store.ListSubmissionsByForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, subs)
}

func (h *submissionHandler) latestDraft(w http.ResponseWriter, r *http.Request) {
	sub, err := h.deps.Store.LatestDraft(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sub)
}

func (h *submissionHandler) get(w http.ResponseWriter, r *http.Request) {
	sub, err := h.deps.Store.GetSubmissionByID(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sub)
}

func (h *submissionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "submissionID")
	if err := h.deps.Store.DeleteSubmission(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	observability.RequestLogger(r.Context(), h.deps.Logger).Info("submission deleted",
		zap.String("submission_id", id))
	w.WriteHeader(http.StatusNoContent)
}

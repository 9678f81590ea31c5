package transport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Alifast22/formbuilder/internal/builder"
	"github.com/Alifast22/formbuilder/internal/engine"
	"github.com/Alifast22/formbuilder/internal/observability"
	"github.com/Alifast22/formbuilder/model"
)

// maxImportBytes bounds schema import payloads.
const maxImportBytes = 2 << 20

type formHandler struct {
	deps Dependencies
}

func (h *formHandler) list(w http.ResponseWriter, r *http.Request) {
	forms, err := h.deps.Store.ListForms(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, forms)
}

func (h *formHandler) get(w http.ResponseWriter, r *http.Request) {
	schema, err := h.deps.Store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, schema)
}

func (h *formHandler) create(w http.ResponseWriter, r *http.Request) {
	var in model.FormSchema
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}
	if in.Title == "" {
		WriteError(w, model.NewBadRequestError("title is required"))
		return
	}

	schema := builder.NewSchema(in.Title, in.Description)
	if len(in.Sections) > 0 {
		schema.Sections = in.Sections
	}

	ctx, span := observability.StartSpan(r.Context(), "form.create",
		observability.AttrFormID.String(schema.ID))
	saved, err := builder.Save(ctx, h.deps.Store, schema, false)
	observability.EndSpanWithError(span, err)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordSchemaSave("create")
	}
	observability.RequestLogger(r.Context(), h.deps.Logger).Info("schema created",
		zap.String("form_id", saved.ID),
		zap.String("title", saved.Title))

	WriteJSON(w, http.StatusCreated, saved)
}

func (h *formHandler) update(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	existing, err := h.deps.Store.GetForm(r.Context(), formID)
	if err != nil {
		WriteError(w, err)
		return
	}

	var in model.FormSchema
	if err := decodeJSON(r, &in); err != nil {
		WriteError(w, err)
		return
	}
	in.ID = formID
	in.Version = existing.Version
	in.CreatedAt = existing.CreatedAt

	ctx, span := observability.StartSpan(r.Context(), "form.update",
		observability.AttrFormID.String(formID),
		observability.AttrFormVersion.Int(existing.Version))
	saved, err := builder.Save(ctx, h.deps.Store, in, true)
	observability.EndSpanWithError(span, err)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordSchemaSave("update")
	}
	observability.RequestLogger(r.Context(), h.deps.Logger).Info("schema updated",
		zap.String("form_id", saved.ID),
		zap.Int("version", saved.Version))

	WriteJSON(w, http.StatusOK, saved)
}

func (h *formHandler) delete(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "formID")

	ctx, span := observability.StartSpan(r.Context(), "form.delete",
		observability.AttrFormID.String(formID))
	err := h.deps.Store.DeleteForm(ctx, formID)
	observability.EndSpanWithError(span, err)
	if err != nil {
		WriteError(w, err)
		return
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordFormDeleted()
	}
	observability.RequestLogger(r.Context(), h.deps.Logger).Info("schema deleted",
		zap.String("form_id", formID))

	w.WriteHeader(http.StatusNoContent)
}

func (h *formHandler) export(w http.ResponseWriter, r *http.Request) {
	schema, err := h.deps.Store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		WriteError(w, err)
		return
	}

	raw, err := builder.ExportJSON(schema)
	if err != nil {
		WriteError(w, model.NewInternalError())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", schema.Title+".json"))
	w.Write(raw)
}

func (h *formHandler) importSchema(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		WriteError(w, model.NewBadRequestError("failed to read request body"))
		return
	}

	schema, err := builder.ImportJSON(raw)
	if err != nil {
		if h.deps.Metrics != nil {
			h.deps.Metrics.RecordSchemaImport("rejected")
		}
		observability.RequestLogger(r.Context(), h.deps.Logger).Warn("schema import rejected",
			zap.Error(err))
		WriteError(w, err)
		return
	}

	if err := h.deps.Store.AddForm(r.Context(), schema); err != nil {
		if h.deps.Metrics != nil {
			h.deps.Metrics.RecordSchemaImport("rejected")
		}
		WriteError(w, err)
		return
	}

	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordSchemaImport("accepted")
	}
	observability.RequestLogger(r.Context(), h.deps.Logger).Info("schema imported",
		zap.String("form_id", schema.ID),
		zap.String("title", schema.Title))

	WriteJSON(w, http.StatusCreated, schema)
}

// resolve returns the sections of a form with condition-hidden fields
// removed, evaluated against the data record in the request body.
func (h *formHandler) resolve(w http.ResponseWriter, r *http.Request) {
	schema, err := h.deps.Store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		WriteError(w, err)
		return
	}

	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		WriteError(w, err)
		return
	}

	type resolveResponse struct {
		FormID   string              `json:"formId"`
		Version  int                 `json:"version"`
		Sections []model.FormSection `json:"sections"`
	}
	WriteJSON(w, http.StatusOK, resolveResponse{
		FormID:   schema.ID,
		Version:  schema.Version,
		Sections: engine.ResolveSections(&schema, data),
	})
}

// validate runs the schema validator against the data record in the
// request body without persisting anything.
func (h *formHandler) validate(w http.ResponseWriter, r *http.Request) {
	schema, err := h.deps.Store.GetForm(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		WriteError(w, err)
		return
	}

	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		WriteError(w, err)
		return
	}

	errs := engine.Validate(&schema, data)
	if len(errs) > 0 && h.deps.Metrics != nil {
		h.deps.Metrics.RecordValidationFailure(schema.ID)
	}

	type validateResponse struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors,omitempty"`
	}
	WriteJSON(w, http.StatusOK, validateResponse{Valid: len(errs) == 0, Errors: errs})
}

package builder

import (
	"encoding/json"

	"github.com/Alifast22/formbuilder/model"
)

// ExportJSON serializes a schema to its JSON wire shape, indented for
// copy-paste between environments.
func ExportJSON(schema model.FormSchema) ([]byte, error) {
	return json.MarshalIndent(schema, "", "  ")
}

// ImportJSON parses raw JSON into a schema. Validation is deliberately
// minimal: the object must carry a non-empty id, title, and at least
// one section. Ids are preserved. Anything else is accepted as-is;
// malformed field entries surface later as rendering or validation
// anomalies, not import errors.
func ImportJSON(raw []byte) (model.FormSchema, error) {
	var schema model.FormSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return model.FormSchema{}, model.NewImportError("failed to parse JSON")
	}
	if schema.ID == "" || schema.Title == "" || len(schema.Sections) == 0 {
		return model.FormSchema{}, model.NewImportError("invalid schema format")
	}
	return schema, nil
}

// Package builder implements the schema authoring operations: creating
// and saving schemas, editing sections, fields, and options, and
// importing/exporting the JSON wire format.
package builder

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Alifast22/formbuilder/internal/store"
	"github.com/Alifast22/formbuilder/model"
)

// NewSchema creates a fresh schema at version 1 with a single starter
// section.
func NewSchema(title, description string) model.FormSchema {
	now := model.NowMillis()
	return model.FormSchema{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Version:     1,
		Sections: []model.FormSection{
			{ID: uuid.NewString(), Title: "Core Attributes"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Save persists a schema. Re-saving an existing schema bumps the
// version by exactly 1 and refreshes updatedAt; a new schema is stored
// as-is at version 1.
func Save(ctx context.Context, st store.Store, schema model.FormSchema, isUpdate bool) (model.FormSchema, error) {
	schema.UpdatedAt = model.NowMillis()
	if isUpdate {
		schema.Version++
		if err := st.UpdateForm(ctx, schema); err != nil {
			return model.FormSchema{}, err
		}
		return schema, nil
	}
	if err := st.AddForm(ctx, schema); err != nil {
		return model.FormSchema{}, err
	}
	return schema, nil
}

// AddSection appends an empty section.
func AddSection(schema *model.FormSchema, title string) *model.FormSection {
	schema.Sections = append(schema.Sections, model.FormSection{
		ID:    uuid.NewString(),
		Title: title,
	})
	return &schema.Sections[len(schema.Sections)-1]
}

// SetSectionTitle renames a section. Unknown ids are ignored.
func SetSectionTitle(schema *model.FormSchema, sectionID, title string) {
	if sec := sectionByID(schema, sectionID); sec != nil {
		sec.Title = title
	}
}

// RemoveSection deletes a section and its fields.
func RemoveSection(schema *model.FormSchema, sectionID string) {
	kept := schema.Sections[:0]
	for _, sec := range schema.Sections {
		if sec.ID != sectionID {
			kept = append(kept, sec)
		}
	}
	schema.Sections = kept
}

// AddField appends a new field of the given type to a section, with
// the builder defaults: generated name, full-width span, type-correct
// zero default, and a starter option for choice types.
func AddField(schema *model.FormSchema, sectionID string, fieldType model.FieldType) (*model.FormField, error) {
	sec := sectionByID(schema, sectionID)
	if sec == nil {
		return nil, model.NewNotFoundError(fmt.Sprintf("section %q not found", sectionID))
	}

	field := model.FormField{
		ID:           uuid.NewString(),
		Type:         fieldType,
		Label:        fmt.Sprintf("New %s", fieldType),
		Name:         fmt.Sprintf("field_%d", model.NowMillis()),
		ColSpan:      4,
		Validation:   &model.ValidationRule{},
		DefaultValue: fieldType.ZeroDefault(),
	}
	if fieldType.RequiresOptions() {
		field.Options = []model.FieldOption{{Label: "Option 1", Value: "opt_1"}}
	}

	sec.Fields = append(sec.Fields, field)
	return &sec.Fields[len(sec.Fields)-1], nil
}

// UpdateField replaces a field in place, matched by id. The field
// keeps its position. Unknown ids are ignored.
func UpdateField(schema *model.FormSchema, sectionID string, field model.FormField) {
	sec := sectionByID(schema, sectionID)
	if sec == nil {
		return
	}
	for i := range sec.Fields {
		if sec.Fields[i].ID == field.ID {
			sec.Fields[i] = field
			return
		}
	}
}

// RemoveField deletes a field from a section.
func RemoveField(schema *model.FormSchema, sectionID, fieldID string) {
	sec := sectionByID(schema, sectionID)
	if sec == nil {
		return
	}
	kept := sec.Fields[:0]
	for _, f := range sec.Fields {
		if f.ID != fieldID {
			kept = append(kept, f)
		}
	}
	sec.Fields = kept
}

// Move directions for MoveField.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// MoveField swaps a field with its neighbor within its section. Moves
// past either end are no-ops.
func MoveField(schema *model.FormSchema, sectionID, fieldID, dir string) {
	sec := sectionByID(schema, sectionID)
	if sec == nil {
		return
	}
	idx := -1
	for i, f := range sec.Fields {
		if f.ID == fieldID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	switch {
	case dir == MoveUp && idx > 0:
		sec.Fields[idx-1], sec.Fields[idx] = sec.Fields[idx], sec.Fields[idx-1]
	case dir == MoveDown && idx < len(sec.Fields)-1:
		sec.Fields[idx+1], sec.Fields[idx] = sec.Fields[idx], sec.Fields[idx+1]
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// OptionValueFromLabel derives an option's canonical value from its
// display label: lower-cased, whitespace runs replaced by underscores.
func OptionValueFromLabel(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(label), "_")
}

// SetOptionLabel updates an option's label and re-derives its value.
// The stored value can still diverge from the label when a schema is
// imported raw.
func SetOptionLabel(field *model.FormField, index int, label string) {
	if index < 0 || index >= len(field.Options) {
		return
	}
	field.Options[index].Label = label
	field.Options[index].Value = OptionValueFromLabel(label)
}

// AddOption appends a new placeholder option to a choice field.
func AddOption(field *model.FormField) {
	field.Options = append(field.Options, model.FieldOption{
		Label: "New Option",
		Value: fmt.Sprintf("opt_%d", model.NowMillis()),
	})
}

// RemoveOption deletes the option at index.
func RemoveOption(field *model.FormField, index int) {
	if index < 0 || index >= len(field.Options) {
		return
	}
	field.Options = append(field.Options[:index], field.Options[index+1:]...)
}

func sectionByID(schema *model.FormSchema, sectionID string) *model.FormSection {
	for i := range schema.Sections {
		if schema.Sections[i].ID == sectionID {
			return &schema.Sections[i]
		}
	}
	return nil
}

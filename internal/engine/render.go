package engine

import "github.com/Alifast22/formbuilder/model"

// ResolveSections returns a copy of the schema's sections with
// conditionally hidden fields removed, evaluated against the given
// data record. This is the section list a renderer displays; it is
// recomputed on every edit.
func ResolveSections(schema *model.FormSchema, data map[string]any) []model.FormSection {
	if schema == nil {
		return nil
	}

	result := make([]model.FormSection, 0, len(schema.Sections))
	for _, sec := range schema.Sections {
		resolved := model.FormSection{
			ID:          sec.ID,
			Title:       sec.Title,
			Description: sec.Description,
		}
		for _, field := range sec.Fields {
			if !IsVisible(field, data) {
				continue
			}
			resolved.Fields = append(resolved.Fields, field)
		}
		result = append(result, resolved)
	}
	return result
}

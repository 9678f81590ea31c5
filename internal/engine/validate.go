package engine

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/Alifast22/formbuilder/model"
)

// Validate walks every field of every section in order and checks the
// data record against the schema's constraints. The result maps field
// names to error messages; an empty map means the record is valid.
//
// Conditionally hidden fields are exempt from all checks, including
// required-ness. A required violation short-circuits the field's
// remaining checks. Min and max length apply only to non-empty string
// values; when both are violated the max message wins because it is
// written last. Malformed schemas are treated permissively: an absent
// rule is no constraint. Never panics.
func Validate(schema *model.FormSchema, data map[string]any) map[string]string {
	errors := make(map[string]string)
	if schema == nil {
		return errors
	}

	for _, section := range schema.Sections {
		for _, field := range section.Fields {
			if !IsVisible(field, data) {
				continue
			}

			val, present := data[field.Name]

			if field.Required && isEmpty(val, present) {
				if field.Validation != nil && field.Validation.Message != "" {
					errors[field.Name] = field.Validation.Message
				} else {
					errors[field.Name] = fmt.Sprintf("%s is required", field.Label)
				}
				continue
			}

			str, isString := val.(string)
			if !present || !isString || str == "" || field.Validation == nil {
				continue
			}
			length := utf8.RuneCountInString(str)
			if min := field.Validation.Min; min != nil && length < *min {
				errors[field.Name] = fmt.Sprintf("%s must be at least %d characters", field.Label, *min)
			}
			if max := field.Validation.Max; max != nil && length > *max {
				errors[field.Name] = fmt.Sprintf("%s cannot exceed %d characters", field.Label, *max)
			}
		}
	}

	return errors
}

// isEmpty reports whether a value counts as empty for the required
// check: missing, nil, the empty string, or an empty array.
func isEmpty(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		return rv.Len() == 0
	}
	return false
}

package engine

import (
	"testing"

	"github.com/Alifast22/formbuilder/model"
)

func intPtr(n int) *int { return &n }

func oneFieldSchema(field model.FormField) *model.FormSchema {
	return &model.FormSchema{
		ID:    "schema-1",
		Title: "Test",
		Sections: []model.FormSection{
			{ID: "s1", Title: "Main", Fields: []model.FormField{field}},
		},
	}
}

func TestValidate_requiredEmpty(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeEmail, Label: "Email", Name: "email",
		Required:   true,
		Validation: &model.ValidationRule{Min: intPtr(5)},
	})

	errs := Validate(schema, map[string]any{})
	if got := errs["email"]; got != "Email is required" {
		t.Errorf(`errs["email"] = %q, want "Email is required"`, got)
	}
	if len(errs) != 1 {
		t.Errorf("len(errs) = %d, want 1", len(errs))
	}
}

func TestValidate_requiredCustomMessage(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Name", Name: "name",
		Required:   true,
		Validation: &model.ValidationRule{Message: "Please tell us your name"},
	})

	errs := Validate(schema, map[string]any{"name": ""})
	if got := errs["name"]; got != "Please tell us your name" {
		t.Errorf(`errs["name"] = %q, want custom message`, got)
	}
}

func TestValidate_requiredShortCircuitsLength(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Code", Name: "code",
		Required:   true,
		Validation: &model.ValidationRule{Min: intPtr(5)},
	})

	errs := Validate(schema, map[string]any{"code": ""})
	if got := errs["code"]; got != "Code is required" {
		t.Errorf(`errs["code"] = %q, want the required message, not the min message`, got)
	}
}

func TestValidate_emptyValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
		set   bool
		empty bool
	}{
		{"missing", nil, false, true},
		{"nil", nil, true, true},
		{"empty string", "", true, true},
		{"empty string slice", []string{}, true, true},
		{"empty any slice", []any{}, true, true},
		{"non-empty string", "x", true, false},
		{"false is not empty", false, true, false},
		{"zero is not empty", 0, true, false},
		{"non-empty slice", []string{"a"}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := oneFieldSchema(model.FormField{
				ID: "f1", Type: model.FieldTypeCheckbox, Label: "Choices", Name: "choices",
				Required: true,
			})
			data := map[string]any{}
			if tt.set {
				data["choices"] = tt.value
			}
			_, got := Validate(schema, data)["choices"]
			if got != tt.empty {
				t.Errorf("required error present = %v, want %v", got, tt.empty)
			}
		})
	}
}

func TestValidate_minLength(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Username", Name: "username",
		Validation: &model.ValidationRule{Min: intPtr(3)},
	})

	errs := Validate(schema, map[string]any{"username": "ab"})
	if got := errs["username"]; got != "Username must be at least 3 characters" {
		t.Errorf(`errs["username"] = %q`, got)
	}

	errs = Validate(schema, map[string]any{"username": "abc"})
	if _, ok := errs["username"]; ok {
		t.Error("exact min length must pass")
	}
}

func TestValidate_maxLength(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Bio", Name: "bio",
		Validation: &model.ValidationRule{Max: intPtr(4)},
	})

	errs := Validate(schema, map[string]any{"bio": "hello"})
	if got := errs["bio"]; got != "Bio cannot exceed 4 characters" {
		t.Errorf(`errs["bio"] = %q`, got)
	}
}

func TestValidate_maxOverwritesMin(t *testing.T) {
	// min > max is a malformed rule, but it is the one configuration
	// where a single value violates both bounds at once.
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Tag", Name: "tag",
		Validation: &model.ValidationRule{Min: intPtr(10), Max: intPtr(2)},
	})

	errs := Validate(schema, map[string]any{"tag": "abcde"})
	if got := errs["tag"]; got != "Tag cannot exceed 2 characters" {
		t.Errorf(`errs["tag"] = %q, want the max message to win`, got)
	}
}

func TestValidate_emptyOptionalStringSkipsLength(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Nickname", Name: "nickname",
		Validation: &model.ValidationRule{Min: intPtr(3)},
	})

	if errs := Validate(schema, map[string]any{"nickname": ""}); len(errs) != 0 {
		t.Errorf("empty optional value must not be length-checked, got %v", errs)
	}
}

func TestValidate_hiddenFieldExempt(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Reason", Name: "reason",
		Required: true,
		Condition: &model.Condition{
			Field: "other", Operator: model.OpEquals, Value: "yes",
		},
	})

	// Condition not met: the required field is hidden and exempt.
	if errs := Validate(schema, map[string]any{}); len(errs) != 0 {
		t.Errorf("hidden required field must be exempt, got %v", errs)
	}

	// Condition met: the requirement applies again.
	errs := Validate(schema, map[string]any{"other": "yes"})
	if got := errs["reason"]; got != "Reason is required" {
		t.Errorf(`errs["reason"] = %q`, got)
	}
}

func TestValidate_multibyteLength(t *testing.T) {
	schema := oneFieldSchema(model.FormField{
		ID: "f1", Type: model.FieldTypeText, Label: "Name", Name: "name",
		Validation: &model.ValidationRule{Max: intPtr(3)},
	})

	// Three runes, more than three bytes.
	if errs := Validate(schema, map[string]any{"name": "äöü"}); len(errs) != 0 {
		t.Errorf("length must count runes, got %v", errs)
	}
}

func TestValidate_nilSchema(t *testing.T) {
	if errs := Validate(nil, map[string]any{"x": 1}); len(errs) != 0 {
		t.Errorf("nil schema must validate clean, got %v", errs)
	}
}

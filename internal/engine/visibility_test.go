package engine

import (
	"testing"

	"github.com/Alifast22/formbuilder/model"
)

func condField(cond *model.Condition) model.FormField {
	return model.FormField{
		ID:        "f1",
		Type:      model.FieldTypeText,
		Label:     "Dependent",
		Name:      "dependent",
		Condition: cond,
	}
}

func TestIsVisible_noCondition(t *testing.T) {
	if !IsVisible(condField(nil), map[string]any{}) {
		t.Error("field without a condition must always be visible")
	}
}

// --- equals ---

func TestIsVisible_equals(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		actual  any
		present bool
		want    bool
	}{
		{"string match", "yes", "yes", true, true},
		{"string mismatch", "yes", "no", true, false},
		{"number matches numeric string", "5", 5, true, true},
		{"float matches its string form", "2.5", 2.5, true, true},
		{"bool matches string true", "true", true, true, true},
		{"bool mismatch string false", "false", true, true, false},
		{"missing matches literal undefined", "undefined", nil, false, true},
		{"nil matches literal null", "null", nil, true, true},
		{"missing does not match empty string", "", nil, false, false},
		{"array joins with commas", "a,b", []string{"a", "b"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{}
			if tt.present {
				data["dep"] = tt.actual
			}
			f := condField(&model.Condition{Field: "dep", Operator: model.OpEquals, Value: tt.value})
			if got := IsVisible(f, data); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsVisible_notEqualsIsExactComplement(t *testing.T) {
	values := []any{"yes", 5, 2.5, true, nil, []string{"a"}}
	for _, actual := range values {
		data := map[string]any{"dep": actual}
		eq := condField(&model.Condition{Field: "dep", Operator: model.OpEquals, Value: "yes"})
		ne := condField(&model.Condition{Field: "dep", Operator: model.OpNotEquals, Value: "yes"})
		if IsVisible(eq, data) == IsVisible(ne, data) {
			t.Errorf("equals and notEquals agree for actual %v", actual)
		}
	}

	// Same complement when the dependency is missing entirely.
	eq := condField(&model.Condition{Field: "dep", Operator: model.OpEquals, Value: "undefined"})
	ne := condField(&model.Condition{Field: "dep", Operator: model.OpNotEquals, Value: "undefined"})
	empty := map[string]any{}
	if IsVisible(eq, empty) == IsVisible(ne, empty) {
		t.Error("equals and notEquals agree for a missing dependency")
	}
}

// --- contains ---

func TestIsVisible_contains(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		actual  any
		present bool
		want    bool
	}{
		{"substring match", "ell", "Hello", true, true},
		{"case insensitive", "HELLO", "hello world", true, true},
		{"no match", "xyz", "hello", true, false},
		{"missing value never contains", "a", nil, false, false},
		{"nil collapses to empty", "a", nil, true, false},
		{"false collapses to empty", "false", false, true, false},
		{"zero collapses to empty", "0", 0, true, false},
		{"empty needle always matches", "", "anything", true, true},
		{"array element match", "b", []string{"a", "b", "c"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]any{}
			if tt.present {
				data["dep"] = tt.actual
			}
			f := condField(&model.Condition{Field: "dep", Operator: model.OpContains, Value: tt.value})
			if got := IsVisible(f, data); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsVisible_unknownOperatorFailsOpen(t *testing.T) {
	f := condField(&model.Condition{Field: "dep", Operator: "startsWith", Value: "x"})
	if !IsVisible(f, map[string]any{"dep": "other"}) {
		t.Error("unknown operator must leave the field visible")
	}
}

// --- stringify ---

func TestStringify(t *testing.T) {
	tests := []struct {
		name    string
		v       any
		present bool
		want    string
	}{
		{"missing", nil, false, "undefined"},
		{"nil", nil, true, "null"},
		{"bool true", true, true, "true"},
		{"bool false", false, true, "false"},
		{"int", 42, true, "42"},
		{"float drops trailing zeros", 2.50, true, "2.5"},
		{"whole float has no point", float64(3), true, "3"},
		{"string slice", []string{"a", "b"}, true, "a,b"},
		{"mixed slice", []any{"a", 1, true}, true, "a,1,true"},
		{"map", map[string]any{"k": "v"}, true, "[object Object]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stringify(tt.v, tt.present); got != tt.want {
				t.Errorf("stringify = %q, want %q", got, tt.want)
			}
		})
	}
}

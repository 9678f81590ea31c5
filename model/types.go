// Package model contains the schema data model shared by every layer:
// form schemas, sections, fields, validation rules, visibility
// conditions, and submission records.
package model

import "time"

// FieldType is the closed set of input types a field can take. The
// string values are the wire values used in exported JSON.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeDateTime FieldType = "datetime-local"
	FieldTypeDropdown FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeToggle   FieldType = "toggle"
)

// AllFieldTypes lists every member of the FieldType enumeration in
// display order.
var AllFieldTypes = []FieldType{
	FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeTextarea,
	FieldTypeDate, FieldTypeDateTime, FieldTypeDropdown, FieldTypeCheckbox,
	FieldTypeRadio, FieldTypeToggle,
}

// ValueShape classifies the value a FieldType accepts in submission data.
type ValueShape int

const (
	// ShapeString covers single-line and multi-line text plus the two
	// date types, all of which collect a string.
	ShapeString ValueShape = iota
	// ShapeOptionSingle is one string drawn from a fixed option set.
	ShapeOptionSingle
	// ShapeOptionMulti is an ordered array of strings drawn from a
	// fixed option set.
	ShapeOptionMulti
	// ShapeBool is a boolean.
	ShapeBool
)

// Shape returns the value shape collected by this field type.
func (t FieldType) Shape() ValueShape {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeTextarea,
		FieldTypeDate, FieldTypeDateTime:
		return ShapeString
	case FieldTypeDropdown, FieldTypeRadio:
		return ShapeOptionSingle
	case FieldTypeCheckbox:
		return ShapeOptionMulti
	case FieldTypeToggle:
		return ShapeBool
	}
	// Unknown types degrade to plain string input.
	return ShapeString
}

// RequiresOptions reports whether the field type draws its values from
// a fixed option set.
func (t FieldType) RequiresOptions() bool {
	switch t.Shape() {
	case ShapeOptionSingle, ShapeOptionMulti:
		return true
	}
	return false
}

// ZeroDefault returns the type-correct empty default value for a newly
// added field: false for toggles, an empty array for checkboxes, and
// the empty string for everything else.
func (t FieldType) ZeroDefault() any {
	switch t.Shape() {
	case ShapeBool:
		return false
	case ShapeOptionMulti:
		return []string{}
	}
	return ""
}

// Valid reports whether t is a member of the closed enumeration.
func (t FieldType) Valid() bool {
	for _, ft := range AllFieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Condition operators.
const (
	OpEquals    = "equals"
	OpNotEquals = "notEquals"
	OpContains  = "contains"
)

// Condition makes a field's visibility depend on the current value of
// another field in the same schema. Lookup is by field name across all
// sections. A field carries at most one condition.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// ValidationRule holds the optional per-field constraints. Min and Max
// bound string length; a nil bound means no bound. Message overrides
// the default required-error text. Pattern is carried on the wire but
// not enforced by the validator.
type ValidationRule struct {
	Pattern string `json:"pattern,omitempty"`
	Min     *int   `json:"min,omitempty"`
	Max     *int   `json:"max,omitempty"`
	Message string `json:"message,omitempty"`
}

// FieldOption is one choice of a dropdown, radio, or checkbox field.
// Value is derived from Label by the builder but stored independently,
// so the two can diverge when a schema is imported raw.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormField describes a single input within a section. Name is the
// data key used in submissions; uniqueness within a schema is assumed
// but not enforced.
type FormField struct {
	ID           string          `json:"id"`
	Type         FieldType       `json:"type"`
	Label        string          `json:"label"`
	Name         string          `json:"name"`
	Placeholder  string          `json:"placeholder,omitempty"`
	Required     bool            `json:"required"`
	DefaultValue any             `json:"defaultValue,omitempty"`
	Options      []FieldOption   `json:"options,omitempty"`
	ColSpan      int             `json:"colSpan"`
	Validation   *ValidationRule `json:"validation,omitempty"`
	Condition    *Condition      `json:"condition,omitempty"`
}

// FormSection groups fields. Field order is significant: it is the
// render order and the order the move-up/move-down operations act on.
type FormSection struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
}

// FormSchema is the root of a declarative form definition. Version
// starts at 1 and increments by exactly 1 on every re-save. Timestamps
// are epoch milliseconds.
type FormSchema struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Version     int           `json:"version"`
	Sections    []FormSection `json:"sections"`
	CreatedAt   int64         `json:"createdAt"`
	UpdatedAt   int64         `json:"updatedAt"`
}

// Fields returns every field of every section in section-then-field
// order.
func (s *FormSchema) Fields() []FormField {
	var out []FormField
	for _, sec := range s.Sections {
		out = append(out, sec.Fields...)
	}
	return out
}

// FieldByName returns the last field with the given name, matching the
// permissive collection-time behavior for duplicate names.
func (s *FormSchema) FieldByName(name string) (FormField, bool) {
	var found FormField
	var ok bool
	for _, f := range s.Fields() {
		if f.Name == name {
			found, ok = f, true
		}
	}
	return found, ok
}

// Submission is one recorded data set for a form. FormVersion is the
// schema version at the time of submission, frozen thereafter. Data
// maps field names to values. SubmittedAt is epoch milliseconds.
type Submission struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	FormVersion int            `json:"formVersion"`
	Data        map[string]any `json:"data"`
	SubmittedAt int64          `json:"submittedAt"`
	IsDraft     bool           `json:"isDraft"`
}

// NowMillis returns the current time as epoch milliseconds, the
// timestamp representation used throughout the wire format.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Package engine holds the pure schema-interpretation core: condition
// evaluation and data validation. Both functions are deterministic,
// total, and side-effect free.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alifast22/formbuilder/model"
)

// IsVisible reports whether a field should be rendered given the
// current data record. A field with no condition is always visible.
// Unknown operators are fail-open.
//
// Comparisons deliberately use stringified loose equality, so numeric 5
// matches the string "5" and an unset dependency stringifies to the
// literal "undefined". Existing schemas depend on this.
func IsVisible(field model.FormField, data map[string]any) bool {
	cond := field.Condition
	if cond == nil {
		return true
	}

	actual, present := data[cond.Field]

	switch cond.Operator {
	case model.OpEquals:
		return stringify(actual, present) == stringify(cond.Value, true)
	case model.OpNotEquals:
		return stringify(actual, present) != stringify(cond.Value, true)
	case model.OpContains:
		haystack := strings.ToLower(stringifyFalsyEmpty(actual, present))
		needle := strings.ToLower(stringify(cond.Value, true))
		return strings.Contains(haystack, needle)
	default:
		return true
	}
}

// stringify renders a value the way a loosely typed frontend would:
// missing values become "undefined", nil becomes "null", booleans
// "true"/"false", numbers in their shortest decimal form, and arrays
// join their elements with commas.
func stringify(v any, present bool) string {
	if !present {
		return "undefined"
	}
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, el := range val {
			parts[i] = stringify(el, true)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// stringifyFalsyEmpty is stringify with every falsy value (missing,
// nil, empty string, false, zero) collapsed to the empty string, the
// shape the contains operator uses for the actual value.
func stringifyFalsyEmpty(v any, present bool) string {
	if !present || isFalsy(v) {
		return ""
	}
	return stringify(v, true)
}

func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	}
	return false
}

package visibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ruleMatches evaluates one conditional rule against the referenced field's
// current value. Comparisons are forgiving about representation: numbers
// compare numerically when both sides coerce, everything else falls back to
// string equality.
func ruleMatches(rule schema.ConditionalRule, current any) bool {
	switch rule.Operator {
	case schema.OpEquals:
		return valuesEqual(current, rule.Value)
	case schema.OpNotEquals:
		return !valuesEqual(current, rule.Value)
	case schema.OpContains:
		return valueContains(current, rule.Value)
	case schema.OpGreaterThan:
		left, lok := coerceNumber(current)
		right, rok := coerceNumber(rule.Value)
		return lok && rok && left > right
	case schema.OpLessThan:
		left, lok := coerceNumber(current)
		right, rok := coerceNumber(rule.Value)
		return lok && rok && left < right
	default:
		return false
	}
}

func valuesEqual(left, right any) bool {
	if left == nil && right == nil {
		return true
	}
	if ln, lok := coerceNumber(left); lok {
		if rn, rok := coerceNumber(right); rok {
			return ln == rn
		}
	}
	if lb, lok := left.(bool); lok {
		if rb, rok := coerceBool(right); rok {
			return lb == rb
		}
	}
	return coerceString(left) == coerceString(right)
}

func valueContains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		return strings.Contains(h, coerceString(needle))
	case []string:
		want := coerceString(needle)
		for _, item := range h {
			if item == want {
				return true
			}
		}
	case []any:
		for _, item := range h {
			if valuesEqual(item, needle) {
				return true
			}
		}
	}
	return false
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return parsed, err == nil
	default:
		return false, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

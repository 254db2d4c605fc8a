package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// parseFunc coerces a raw submitted value into the field's canonical Go type.
// It returns the coerced value, or a non-empty message when the value cannot
// be accepted.
type parseFunc func(raw any) (any, string)

// checkFunc inspects an already-coerced value and returns a message on
// violation.
type checkFunc func(value any) string

const dateLayout = "2006-01-02"

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)
)

// baseParsers maps each input kind to its base coercion. The table is the
// single source of per-type behaviour; constraints from Field.Validation are
// layered on top by buildChecks.
var baseParsers = map[schema.Kind]parseFunc{
	schema.KindText:        parseString,
	schema.KindTextarea:    parseString,
	schema.KindEmail:       parseEmail,
	schema.KindPhone:       parsePhone,
	schema.KindNumber:      parseNumber,
	schema.KindRating:      parseRating,
	schema.KindCheckbox:    parseCheckbox,
	schema.KindSelect:      parseString,
	schema.KindRadio:       parseString,
	schema.KindMultiSelect: parseMultiValue,
	schema.KindDate:        parseDate,
	schema.KindFile:        parseString,
	schema.KindSignature:   parseString,
}

func parseString(raw any) (any, string) {
	switch v := raw.(type) {
	case string:
		return v, ""
	case []byte:
		return string(v), ""
	default:
		return nil, "must be text"
	}
}

func parseEmail(raw any) (any, string) {
	value, msg := parseString(raw)
	if msg != "" {
		return nil, msg
	}
	s := strings.TrimSpace(value.(string))
	if !emailPattern.MatchString(s) {
		return nil, "must be a valid email address"
	}
	return s, ""
}

func parsePhone(raw any) (any, string) {
	value, msg := parseString(raw)
	if msg != "" {
		return nil, msg
	}
	s := strings.TrimSpace(value.(string))
	if !phonePattern.MatchString(s) {
		return nil, "must be a valid phone number"
	}
	return s, ""
}

func parseNumber(raw any) (any, string) {
	n, ok := coerceNumber(raw)
	if !ok {
		return nil, "must be a number"
	}
	return n, ""
}

func parseRating(raw any) (any, string) {
	n, ok := coerceNumber(raw)
	if !ok {
		return nil, "must be a rating value"
	}
	if n != math.Trunc(n) {
		return nil, "must be a whole number"
	}
	return int(n), ""
}

func parseCheckbox(raw any) (any, string) {
	switch v := raw.(type) {
	case bool:
		return v, ""
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, "must be true or false"
		}
		return parsed, ""
	default:
		return nil, "must be true or false"
	}
}

func parseMultiValue(raw any) (any, string) {
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), ""
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, "selections must be text values"
			}
			out = append(out, s)
		}
		return out, ""
	case string:
		// A single selection arrives as a scalar from some clients.
		return []string{v}, ""
	default:
		return nil, "must be a list of selections"
	}
}

func parseDate(raw any) (any, string) {
	value, msg := parseString(raw)
	if msg != "" {
		return nil, msg
	}
	s := strings.TrimSpace(value.(string))
	if _, err := time.Parse(dateLayout, s); err != nil {
		return nil, "must be a date in YYYY-MM-DD format"
	}
	return s, ""
}

// buildChecks layers the field's declared constraints on top of its base
// rule. The pattern expression is compiled here so a bad pattern surfaces at
// compile time, not per submission.
func buildChecks(field schema.Field) ([]checkFunc, error) {
	v := field.Validation
	if v == nil {
		return nil, nil
	}

	var checks []checkFunc

	if v.MinLength != nil {
		min := *v.MinLength
		checks = append(checks, func(value any) string {
			if length, ok := valueLength(value); ok && length < min {
				return fmt.Sprintf("must have at least %d %s", min, lengthUnit(value))
			}
			return ""
		})
	}
	if v.MaxLength != nil {
		max := *v.MaxLength
		checks = append(checks, func(value any) string {
			if length, ok := valueLength(value); ok && length > max {
				return fmt.Sprintf("must have at most %d %s", max, lengthUnit(value))
			}
			return ""
		})
	}
	if v.Min != nil {
		min := *v.Min
		checks = append(checks, func(value any) string {
			if n, ok := coerceNumber(value); ok && n < min {
				return fmt.Sprintf("must be at least %v", min)
			}
			return ""
		})
	}
	if v.Max != nil {
		max := *v.Max
		checks = append(checks, func(value any) string {
			if n, ok := coerceNumber(value); ok && n > max {
				return fmt.Sprintf("must be at most %v", max)
			}
			return ""
		})
	}
	if v.Pattern != "" {
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return nil, fmt.Errorf("validate: field %q: invalid pattern %q: %w", field.Name, v.Pattern, err)
		}
		checks = append(checks, func(value any) string {
			if s, ok := value.(string); ok && !re.MatchString(s) {
				return "does not match the expected format"
			}
			return ""
		})
	}

	return checks, nil
}

// lengthUnit names what a length constraint counted, so multiselect
// violations do not complain about characters.
func lengthUnit(value any) string {
	switch value.(type) {
	case []string, []any:
		return "selections"
	default:
		return "characters"
	}
}

func valueLength(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return len([]rune(v)), true
	case []string:
		return len(v), true
	case []any:
		return len(v), true
	default:
		return 0, false
	}
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

// isEmpty reports whether a submitted value counts as absent. A blank field
// is absent, not present-as-null; empty collections count as absent too.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

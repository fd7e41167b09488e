package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/teemow/goopy/internal/google"
)

// Args wraps the decoded arguments of a tool call.
type Args map[string]interface{}

// RequiredString returns a non-empty string argument.
func (a Args) RequiredString(name string) (string, error) {
	s, err := a.String(name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", google.Invalid(name, "required")
	}
	return s, nil
}

// String returns a string argument, or "" when it is absent.
func (a Args) String(name string) (string, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", google.Invalid(name, "must be a string")
	}
	return s, nil
}

// Int returns an integer argument, or def when it is absent. JSON numbers
// arrive as float64 and must be whole.
func (a Args) Int(name string, def int64) (int64, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, google.Invalid(name, "must be a whole number, got %v", n)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, google.Invalid(name, "must be a number")
	}
}

// Bool returns a boolean argument, or def when it is absent.
func (a Args) Bool(name string, def bool) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, google.Invalid(name, "must be a boolean")
	}
	return b, nil
}

// StringOrArray accepts a single string, an array of strings, or a string
// holding a JSON array of strings. The result is never empty.
func (a Args) StringOrArray(name string) ([]string, error) {
	v := a[name]
	if s, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "[") {
		var decoded []interface{}
		if json.Unmarshal([]byte(s), &decoded) == nil {
			v = decoded
		}
	}
	switch v := v.(type) {
	case nil:
		return nil, google.Invalid(name, "required")
	case string:
		if v == "" {
			return nil, google.Invalid(name, "cannot be empty")
		}
		return []string{v}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, google.Invalid(name, "cannot be empty")
		}
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, google.Invalid(fmt.Sprintf("%s[%d]", name, i), "must be a non-empty string")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, google.Invalid(name, "must be a string or array of strings")
	}
}

// Rows returns a two-dimensional array argument. A string holding a JSON
// array of arrays is accepted for clients that cannot send nested arrays.
func (a Args) Rows(name string) ([][]interface{}, error) {
	v := a[name]
	if s, ok := v.(string); ok {
		var decoded []interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, google.Invalid(name, "not a JSON array of rows: %v", err)
		}
		v = decoded
	}
	rows, ok := v.([]interface{})
	if !ok || len(rows) == 0 {
		return nil, google.Invalid(name, "must be a non-empty array of rows")
	}
	out := make([][]interface{}, 0, len(rows))
	for i, r := range rows {
		row, ok := r.([]interface{})
		if !ok {
			return nil, google.Invalid(fmt.Sprintf("%s[%d]", name, i), "must be an array of cells")
		}
		out = append(out, row)
	}
	return out, nil
}

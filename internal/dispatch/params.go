package dispatch

import (
	"encoding/json"
	"strconv"

	"docmost-mcp/internal/apperr"
)

// params is the argument bag of one invocation. Unknown keys are ignored.
type params map[string]any

// str returns the value of key as a string. Numbers are formatted; any
// other type reads as empty.
func (p params) str(key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// object returns the value of key as an object. A missing or null value
// yields nil.
func (p params) object(key string) (map[string]any, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	}
	return nil, apperr.Validation("%s must be an object", key)
}

// stringAt walks nested objects and returns the string found at path.
func stringAt(v any, path ...string) string {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return ""
		}
		v = m[key]
	}
	s, _ := v.(string)
	return s
}

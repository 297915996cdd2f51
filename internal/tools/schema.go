package tools

import "encoding/json"

// MarshalJSON renders the tool in the catalog shape served over plain
// HTTP: parameters keyed by name.
func (t Tool) MarshalJSON() ([]byte, error) {
	params := make(map[string]Param, len(t.Params))
	for _, p := range t.Params {
		params[p.Name] = p
	}
	return json.Marshal(struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Params      map[string]Param `json:"params"`
		ReadOnly    bool             `json:"readOnly"`
	}{t.Name, t.Description, params, !t.Mutating})
}

// InputSchema translates the parameter list into a JSON Schema object.
func (t Tool) InputSchema() map[string]any {
	properties := make(map[string]any, len(t.Params))
	required := []string{}
	for _, p := range t.Params {
		prop := map[string]any{"type": p.Type}
		if p.Nullable {
			prop["type"] = []string{p.Type, "null"}
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

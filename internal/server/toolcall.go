package server

import (
	"encoding/json"
	"net/http"

	"docmost-mcp/internal/apperr"
)

// handleToolCall serves the direct envelope {tool, params}. Every failure
// becomes a 400 carrying only the message.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	req, err := decodeToolCall(w, r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	args, err := argumentObject(req.Params)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.invoke(r.Context(), req.Tool, args)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, toolCallResponse{Result: result})
}

func decodeToolCall(w http.ResponseWriter, r *http.Request) (toolCallRequest, error) {
	var req toolCallRequest
	body, err := readBody(w, r)
	if err != nil {
		return req, err
	}
	if body != nil {
		if err := json.Unmarshal(body, &req); err != nil {
			return req, apperr.Protocol("request body must be valid JSON")
		}
	}
	if req.Tool == "" {
		return req, apperr.Protocol(`the "tool" field is required`)
	}
	return req, nil
}

// argumentObject converts a decoded parameter value into an argument bag.
// Null or absent means no arguments.
func argumentObject(v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	}
	return nil, apperr.Protocol("tool arguments must be an object")
}

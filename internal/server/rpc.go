package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"docmost-mcp/internal/apperr"
	"docmost-mcp/internal/tools"
)

// latestProtocolVersion is advertised when the client asks for a version
// this server does not know.
const latestProtocolVersion = "2025-06-18"

var supportedProtocolVersions = map[string]bool{
	"2024-11-05": true,
	"2025-03-26": true,
	"2025-06-18": true,
}

// JSON-RPC 2.0 error codes. codeInvalidRequest doubles as the code for
// failures that carry none of their own.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

const instructions = "Tools for a Docmost knowledge base: list spaces and pages, read and search pages, " +
	"walk the page tree, build page links, and move attachments. Page and file ids come from " +
	"list_pages, search_pages or get_page results."

// handleRPC serves the JSON-RPC envelope. The HTTP status is always 200;
// failures travel in the error member.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeRPCError(w, nil, err)
		return
	}
	var req rpcRequest
	if body == nil {
		s.writeRPCError(w, nil, apperr.Protocol("request body is empty"))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeRPCError(w, nil, apperr.Protocol("invalid JSON").WithCode(codeParseError))
		return
	}

	result, err := s.dispatchRPC(r.Context(), req)
	if err != nil {
		s.writeRPCError(w, req.ID, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) dispatchRPC(ctx context.Context, req rpcRequest) (any, error) {
	switch req.Method {
	case "initialize":
		return s.initialize(req.Params), nil
	case "tools/list":
		return toolsListResult{Tools: describeTools(s.invoker.Tools())}, nil
	case "tools/call":
		return s.callTool(ctx, req.Params)
	case "ping":
		return struct{}{}, nil
	}
	if strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug("accepted MCP notification", "method", req.Method)
		return struct{}{}, nil
	}
	return nil, apperr.Protocol("method not found: %s", req.Method).WithCode(codeMethodNotFound)
}

func (s *Server) initialize(raw json.RawMessage) initializeResult {
	var params initializeParams
	_ = json.Unmarshal(raw, &params)
	version := latestProtocolVersion
	if supportedProtocolVersions[params.ProtocolVersion] {
		version = params.ProtocolVersion
	}
	return initializeResult{
		ProtocolVersion: version,
		Capabilities:    serverCapabilities{Tools: &toolCapability{}},
		ServerInfo:      s.info,
		Instructions:    instructions,
	}
}

func describeTools(list []tools.Tool) []toolDescription {
	out := make([]toolDescription, len(list))
	for i, t := range list {
		out[i] = toolDescription{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema(),
			Annotations: &toolAnnotations{ReadOnlyHint: !t.Mutating},
		}
	}
	return out
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, error) {
	var params toolsCallParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, apperr.Protocol("invalid params").WithCode(codeInvalidParams)
		}
	}
	name := firstNonEmpty(params.Name, params.Tool, params.ToolName)
	if name == "" {
		return nil, apperr.Protocol("tool name is required").WithCode(codeInvalidParams)
	}
	args, err := decodeArguments(params.Arguments, params.Args, params.Params, params.Input)
	if err != nil {
		return nil, err
	}

	result, err := s.invoke(ctx, name, args)
	if err != nil {
		return nil, err
	}
	return toolsCallResult{Content: []contentBlock{{Type: "text", Text: renderText(result)}}}, nil
}

// decodeArguments takes the first present candidate. A JSON string holding
// an encoded object is accepted too.
func decodeArguments(candidates ...json.RawMessage) (map[string]any, error) {
	for _, raw := range candidates {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apperr.Protocol("invalid arguments").WithCode(codeInvalidParams)
		}
		if encoded, ok := v.(string); ok {
			if err := json.Unmarshal([]byte(encoded), &v); err != nil {
				return nil, apperr.Protocol("arguments string is not valid JSON").WithCode(codeInvalidParams)
			}
		}
		args, err := argumentObject(v)
		if err != nil {
			return nil, apperr.Protocol("arguments must be an object").WithCode(codeInvalidParams)
		}
		return args, nil
	}
	return map[string]any{}, nil
}

// renderText turns a tool result into the text of a content block.
func renderText(result any) string {
	if s, ok := result.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(b)
}

func (s *Server) writeRPCError(w http.ResponseWriter, id json.RawMessage, err error) {
	code := apperr.CodeOf(err)
	if code == 0 {
		code = codeInvalidRequest
	}
	rpcErr := &rpcError{Code: code, Message: err.Error()}
	if kind := apperr.KindOf(err); kind != "" {
		rpcErr.Data = &rpcErrorData{Kind: string(kind)}
	}
	s.writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: "2.0", ID: id, Error: rpcErr})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

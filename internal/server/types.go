package server

import (
	"encoding/json"

	"docmost-mcp/internal/tools"
)

// toolCallRequest is the direct envelope accepted by /mcp/tool-call.
type toolCallRequest struct {
	Tool   string `json:"tool"`
	Params any    `json:"params"`
}

type toolCallResponse struct {
	Result any `json:"result"`
}

// errorResponse is the direct envelope's only failure shape. It carries
// no failure kind.
type errorResponse struct {
	Error string `json:"error"`
}

type toolsResponse struct {
	Tools []tools.Tool `json:"tools"`
}

type bannerResponse struct {
	Message string       `json:"message"`
	Server  serverInfo   `json:"server"`
	Tools   []tools.Tool `json:"tools"`
}

// --- JSON-RPC envelope ---

// rpcRequest is a JSON-RPC 2.0 request or notification.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rpcResponse is a JSON-RPC 2.0 response. A nil ID encodes as null.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *rpcErrorData `json:"data,omitempty"`
}

type rpcErrorData struct {
	Kind string `json:"kind"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

type serverCapabilities struct {
	Tools *toolCapability `json:"tools,omitempty"`
}

type toolCapability struct {
	ListChanged bool `json:"listChanged"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolsListResult struct {
	Tools []toolDescription `json:"tools"`
}

type toolDescription struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputSchema map[string]any   `json:"inputSchema"`
	Annotations *toolAnnotations `json:"annotations,omitempty"`
}

type toolAnnotations struct {
	ReadOnlyHint bool `json:"readOnlyHint"`
}

// toolsCallParams accepts the tool name and its arguments under every key
// clients are known to use.
type toolsCallParams struct {
	Name      string          `json:"name"`
	Tool      string          `json:"tool"`
	ToolName  string          `json:"toolName"`
	Arguments json.RawMessage `json:"arguments"`
	Args      json.RawMessage `json:"args"`
	Params    json.RawMessage `json:"params"`
	Input     json.RawMessage `json:"input"`
}

type toolsCallResult struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// wellKnownResponse is the self-description served under /.well-known/mcp.
type wellKnownResponse struct {
	Protocol        string             `json:"protocol"`
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions"`
	Transport       transportInfo      `json:"transport"`
	Capabilities    serverCapabilities `json:"capabilities"`
	Endpoints       map[string]string  `json:"endpoints"`
}

type transportInfo struct {
	Type     string `json:"type"`
	Endpoint string `json:"endpoint"`
}

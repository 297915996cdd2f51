package server

import (
	"net/http"
	"strings"
)

func (s *Server) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	base := externalBaseURL(r)
	s.writeJSON(w, http.StatusOK, wellKnownResponse{
		Protocol:        "mcp",
		ProtocolVersion: latestProtocolVersion,
		ServerInfo:      s.info,
		Instructions:    instructions,
		Transport:       transportInfo{Type: "http", Endpoint: base + "/mcp"},
		Capabilities:    serverCapabilities{Tools: &toolCapability{}},
		Endpoints: map[string]string{
			"rpc":    base + "/mcp",
			"tools":  base + "/mcp/tools",
			"call":   base + "/mcp/tool-call",
			"health": base + "/health",
		},
	})
}

// externalBaseURL reconstructs the scheme and host a client used, honouring
// X-Forwarded-Proto and X-Forwarded-Host set by a reverse proxy.
func externalBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwd := firstHeaderValue(r, "X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

// firstHeaderValue returns the first entry of a possibly comma-separated
// proxy header.
func firstHeaderValue(r *http.Request, key string) string {
	v, _, _ := strings.Cut(r.Header.Get(key), ",")
	return strings.TrimSpace(v)
}

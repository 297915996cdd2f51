// Package server provides the HTTP handlers and routing for the MCP server.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"docmost-mcp/internal/apperr"
	"docmost-mcp/internal/dispatch"
)

// MaxRequestBodySize caps inbound request bodies. Larger bodies fail the
// request and the connection is closed.
const MaxRequestBodySize = 5_000_000

// Config contains the server's collaborators and identity.
type Config struct {
	Invoker dispatch.Invoker
	Logger  *slog.Logger
	Name    string
	Version string
}

// Server contains the configured router and the invoker both protocol
// adapters share.
type Server struct {
	router  *chi.Mux
	invoker dispatch.Invoker
	logger  *slog.Logger
	info    serverInfo
}

// New constructs a Server with middleware and routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.Invoker == nil {
		return nil, errors.New("invoker is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	info := serverInfo{Name: cfg.Name, Version: cfg.Version}
	if info.Name == "" {
		info.Name = "docmost-mcp"
	}
	if info.Version == "" {
		info.Version = "dev"
	}

	s := &Server{
		router:  chi.NewRouter(),
		invoker: cfg.Invoker,
		logger:  logger,
		info:    info,
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors)

	s.router.Get("/", s.handleBanner)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/.well-known/mcp", s.handleWellKnown)
	s.router.Get("/.well-known/mcp/{server}", s.handleWellKnown)

	s.router.Get("/mcp/tools", s.handleListTools)
	s.router.Post("/mcp/tool-call", s.handleToolCall)

	for _, path := range []string{"/", "/mcp", "/mcp/", "/rpc", "/mcp/rpc"} {
		s.router.Post(path, s.handleRPC)
	}

	s.router.NotFound(s.handleNotFound)
	s.router.MethodNotAllowed(s.handleMethodNotAllowed)
	return s, nil
}

// Router exposes the root HTTP handler for the server.
func (s *Server) Router() http.Handler { return s.router }

// cors allows any origin and answers preflight requests without a body.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Mcp-Session-Id, Mcp-Protocol-Version")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBanner(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, bannerResponse{
		Message: "Docmost MCP server running",
		Server:  s.info,
		Tools:   s.invoker.Tools(),
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, toolsResponse{Tools: s.invoker.Tools()})
}

// handleNotFound answers unmatched routes: 405 for methods this server
// never serves, 404 otherwise.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.handleMethodNotAllowed(w, r)
		return
	}
	s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// invoke runs a tool through the shared invoker and logs the outcome.
func (s *Server) invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	callID := uuid.NewString()
	log := s.logger.With("tool", name, "call_id", callID, "request_id", middleware.GetReqID(ctx))
	log.Debug("tool call")

	result, err := s.invoker.Invoke(ctx, name, args)
	if err != nil {
		log.Warn("tool call failed", "kind", apperr.KindOf(err), "error", err)
		return nil, err
	}
	log.Debug("tool call complete")
	return result, nil
}

// readBody reads a capped request body. An empty body reads as nil.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Protocol("request body is too large")
		}
		return nil, apperr.Wrap(apperr.KindProtocol, err, "read request body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

// Package dispatch routes tool invocations to the Docmost backend and
// enforces the read-only policy.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docmost-mcp/internal/apperr"
	"docmost-mcp/internal/docmost"
	"docmost-mcp/internal/tools"
)

// Backend is the subset of the Docmost client the dispatcher drives.
type Backend interface {
	ListSpaces(ctx context.Context) (any, error)
	GetSpace(ctx context.Context, spaceID string) (any, error)
	ListPages(ctx context.Context, spaceID string) (*docmost.PageListing, error)
	GetPage(ctx context.Context, pageID string) (any, error)
	SearchPages(ctx context.Context, query string) (any, error)
	CreatePage(ctx context.Context, in docmost.CreatePageInput) (any, error)
	UpdatePage(ctx context.Context, pageID string, payload map[string]any) (any, error)
	GetParentPage(ctx context.Context, pageID string) (*docmost.ParentResult, error)
	ListChildren(ctx context.Context, pageID string) (*docmost.ChildrenResult, error)
	DownloadFile(ctx context.Context, fileID string) (*docmost.FileDownload, error)
	UploadFile(ctx context.Context, in docmost.UploadInput) (any, error)
}

// Invoker runs a tool by name. Both protocol adapters depend on it.
type Invoker interface {
	Invoke(ctx context.Context, name string, params map[string]any) (any, error)
	Tools() []tools.Tool
}

// Config holds the dispatcher's collaborators and policy.
type Config struct {
	Backend  Backend
	Registry *tools.Registry
	// ReadOnly refuses and hides mutating tools. Fixed for the process lifetime.
	ReadOnly bool
	// PublicURL is the browser-facing Docmost URL used to build page links.
	PublicURL string
	Logger    *slog.Logger
}

type handlerFunc func(ctx context.Context, p params) (any, error)

// Dispatcher resolves tool names and calls the backend.
type Dispatcher struct {
	backend   Backend
	registry  *tools.Registry
	readOnly  bool
	publicURL string
	logger    *slog.Logger
	handlers  map[string]handlerFunc
}

// New constructs a Dispatcher. It fails when the registry and the handler
// table do not cover exactly the same tools.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if cfg.PublicURL == "" {
		return nil, errors.New("public url is required")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = tools.Catalog()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		backend:   cfg.Backend,
		registry:  registry,
		readOnly:  cfg.ReadOnly,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		logger:    logger,
	}
	d.handlers = d.handlerTable()
	if err := checkCoverage(registry, d.handlers); err != nil {
		return nil, err
	}
	return d, nil
}

func checkCoverage(registry *tools.Registry, handlers map[string]handlerFunc) error {
	var errs []error
	registered := make(map[string]bool)
	for _, name := range registry.Names() {
		registered[name] = true
		if _, ok := handlers[name]; !ok {
			errs = append(errs, fmt.Errorf("tool %s has no handler", name))
		}
	}
	for name := range handlers {
		if !registered[name] {
			errs = append(errs, fmt.Errorf("handler %s has no registered tool", name))
		}
	}
	return errors.Join(errs...)
}

// ReadOnly reports whether mutating tools are disabled.
func (d *Dispatcher) ReadOnly() bool { return d.readOnly }

// Tools returns the catalog visible under the current policy.
func (d *Dispatcher) Tools() []tools.Tool { return d.registry.Visible(d.readOnly) }

// Invoke runs the named tool. A namespace suffix on name is ignored.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	resolved := tools.ResolveName(name)
	tool, ok := d.registry.Get(resolved)
	if !ok {
		return nil, apperr.UnknownTool(name)
	}
	if d.readOnly && tool.Mutating {
		return nil, apperr.Policy("%s is disabled in read-only mode", resolved)
	}
	d.logger.Debug("dispatching tool", "tool", resolved, "requested", name)
	return d.handlers[resolved](ctx, params(args))
}

func (d *Dispatcher) handlerTable() map[string]handlerFunc {
	return map[string]handlerFunc{
		tools.ListSpaces: func(ctx context.Context, _ params) (any, error) {
			return d.backend.ListSpaces(ctx)
		},
		tools.ListPages: func(ctx context.Context, p params) (any, error) {
			return d.backend.ListPages(ctx, p.str("spaceId"))
		},
		tools.GetPage: func(ctx context.Context, p params) (any, error) {
			return d.backend.GetPage(ctx, p.str("pageId"))
		},
		tools.SearchPages: func(ctx context.Context, p params) (any, error) {
			return d.backend.SearchPages(ctx, p.str("query"))
		},
		tools.CreatePage: func(ctx context.Context, p params) (any, error) {
			return d.backend.CreatePage(ctx, docmost.CreatePageInput{
				Title:    p.str("title"),
				Content:  p.str("content"),
				SpaceID:  p.str("spaceId"),
				FolderID: p.str("folderId"),
			})
		},
		tools.UpdatePage: func(ctx context.Context, p params) (any, error) {
			payload, err := p.object("payload")
			if err != nil {
				return nil, err
			}
			return d.backend.UpdatePage(ctx, p.str("pageId"), payload)
		},
		tools.GetParentPage: func(ctx context.Context, p params) (any, error) {
			return d.backend.GetParentPage(ctx, p.str("pageId"))
		},
		tools.ListChildren: func(ctx context.Context, p params) (any, error) {
			return d.backend.ListChildren(ctx, p.str("pageId"))
		},
		tools.GetPageURL: func(ctx context.Context, p params) (any, error) {
			return d.pageURL(ctx, p.str("pageId"))
		},
		tools.DownloadFile: func(ctx context.Context, p params) (any, error) {
			return d.backend.DownloadFile(ctx, p.str("fileId"))
		},
		tools.UploadFile: func(ctx context.Context, p params) (any, error) {
			return d.backend.UploadFile(ctx, docmost.UploadInput{
				PageID:     p.str("pageId"),
				FileName:   p.str("fileName"),
				FileBase64: p.str("fileBase64"),
				FileURL:    p.str("fileUrl"),
			})
		},
	}
}

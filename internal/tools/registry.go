// Package tools holds the catalog of tools exposed to MCP clients.
package tools

import "strings"

// Tool names.
const (
	ListSpaces    = "list_spaces"
	ListPages     = "list_pages"
	GetPage       = "get_page"
	SearchPages   = "search_pages"
	CreatePage    = "create_page"
	UpdatePage    = "update_page"
	GetParentPage = "get_parent_page"
	ListChildren  = "list_children"
	GetPageURL    = "get_page_url"
	DownloadFile  = "download_file"
	UploadFile    = "upload_file"
)

// Param describes one named parameter of a tool.
type Param struct {
	Name        string `json:"-"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Nullable    bool   `json:"nullable,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tool is an invocable operation. Mutating tools create or change content
// and are hidden and refused in read-only mode.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Mutating    bool
}

// Registry is an ordered, immutable tool catalog.
type Registry struct {
	tools []Tool
	index map[string]int
}

// NewRegistry builds a registry from defs. Later duplicates are ignored.
func NewRegistry(defs ...Tool) *Registry {
	r := &Registry{index: make(map[string]int, len(defs))}
	for _, def := range defs {
		if _, dup := r.index[def.Name]; dup {
			continue
		}
		r.index[def.Name] = len(r.tools)
		r.tools = append(r.tools, def)
	}
	return r
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	i, ok := r.index[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// All returns a copy of the catalog in registration order.
func (r *Registry) All() []Tool {
	return append([]Tool(nil), r.tools...)
}

// Names returns every tool name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Without returns the catalog minus the named tools. The registry itself
// is left untouched.
func (r *Registry) Without(names ...string) []Tool {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		if !skip[t.Name] {
			out = append(out, t)
		}
	}
	return out
}

// MutatingNames lists the tools that change content.
func (r *Registry) MutatingNames() []string {
	var names []string
	for _, t := range r.tools {
		if t.Mutating {
			names = append(names, t.Name)
		}
	}
	return names
}

// Visible returns the catalog a caller may see under the given policy.
func (r *Registry) Visible(readOnly bool) []Tool {
	if !readOnly {
		return r.All()
	}
	return r.Without(r.MutatingNames()...)
}

// namespaceSeparators split a connector suffix from a tool name, as in
// "get_page:docmost" or "get_page/docmost".
const namespaceSeparators = ":/."

// ResolveName strips any namespace suffix from a tool name.
func ResolveName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, namespaceSeparators); i >= 0 {
		return name[:i]
	}
	return name
}

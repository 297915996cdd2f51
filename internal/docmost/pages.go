package docmost

import (
	"context"

	"docmost-mcp/internal/apperr"
)

// sidebarPageSize is the page size requested while draining a space listing.
const sidebarPageSize = 100

// PageListing is every sidebar page of a space plus the metadata of the
// last page fetched.
type PageListing struct {
	Items []any `json:"items"`
	Meta  any   `json:"meta"`
}

// ParentResult is the parent of a page. Both fields are nil for a top-level page.
type ParentResult struct {
	ParentID *string `json:"parentId"`
	Parent   any     `json:"parent"`
}

// ChildrenResult lists the direct children of a page.
type ChildrenResult struct {
	ParentPageID string `json:"parentPageId"`
	Items        []any  `json:"items"`
}

// CreatePageInput describes a new page. An empty FolderID creates a
// top-level page.
type CreatePageInput struct {
	Title    string
	Content  string
	SpaceID  string
	FolderID string
}

// ListSpaces returns the spaces visible to the configured credential.
func (c *Client) ListSpaces(ctx context.Context) (any, error) {
	return c.post(ctx, "/api/spaces", map[string]any{"page": 1, "limit": 50})
}

// GetSpace returns a single space by id.
func (c *Client) GetSpace(ctx context.Context, spaceID string) (any, error) {
	if spaceID == "" {
		return nil, apperr.Validation("spaceId is required to get a space")
	}
	return c.post(ctx, "/api/spaces/info", map[string]any{"spaceId": spaceID})
}

// ListPages drains the sidebar listing of a space. Pages are requested
// one after another until the metadata stops reporting a next page.
func (c *Client) ListPages(ctx context.Context, spaceID string) (*PageListing, error) {
	if spaceID == "" {
		return nil, apperr.Validation("spaceId is required to list pages")
	}
	listing := &PageListing{Items: []any{}}
	for page := 1; ; page++ {
		res, err := c.post(ctx, "/api/pages/sidebar-pages", map[string]any{
			"spaceId": spaceID,
			"page":    page,
			"limit":   sidebarPageSize,
		})
		if err != nil {
			return nil, err
		}
		m, _ := res.(map[string]any)
		items, _ := m["items"].([]any)
		listing.Items = append(listing.Items, items...)
		listing.Meta = m["meta"]

		c.logger().Debug("fetched sidebar page", "space_id", spaceID, "page", page, "items", len(items))
		if !hasNextPage(listing.Meta) {
			return listing, nil
		}
	}
}

func hasNextPage(meta any) bool {
	m, _ := meta.(map[string]any)
	next, _ := m["hasNextPage"].(bool)
	return next
}

// GetPage returns a page by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (any, error) {
	if pageID == "" {
		return nil, apperr.Validation("pageId is required to get a page")
	}
	return c.post(ctx, "/api/pages/info", map[string]any{"pageId": pageID})
}

// SearchPages runs a free-text search.
func (c *Client) SearchPages(ctx context.Context, query string) (any, error) {
	if query == "" {
		return nil, apperr.Validation("query is required to search")
	}
	return c.post(ctx, "/api/search", map[string]any{"query": query})
}

// CreatePage creates a page. The parent reference is always sent, as null
// for a top-level page.
func (c *Client) CreatePage(ctx context.Context, in CreatePageInput) (any, error) {
	if in.Title == "" || in.Content == "" || in.SpaceID == "" {
		return nil, apperr.Validation("title, content and spaceId are required to create a page")
	}
	var parent any
	if in.FolderID != "" {
		parent = in.FolderID
	}
	return c.post(ctx, "/api/pages/create", map[string]any{
		"title":        in.Title,
		"content":      in.Content,
		"spaceId":      in.SpaceID,
		"parentPageId": parent,
	})
}

// UpdatePage merges payload into the update request for pageID.
func (c *Client) UpdatePage(ctx context.Context, pageID string, payload map[string]any) (any, error) {
	if pageID == "" {
		return nil, apperr.Validation("pageId is required to update a page")
	}
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["pageId"] = pageID
	return c.post(ctx, "/api/pages/update", body)
}

// GetParentPage fetches a page and then its parent, if it has one.
func (c *Client) GetParentPage(ctx context.Context, pageID string) (*ParentResult, error) {
	page, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	parentID := ParentRef(page)
	if parentID == "" {
		return &ParentResult{}, nil
	}
	parent, err := c.GetPage(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return &ParentResult{ParentID: &parentID, Parent: parent}, nil
}

// ListChildren returns the pages of the owning space whose parent is pageID.
func (c *Client) ListChildren(ctx context.Context, pageID string) (*ChildrenResult, error) {
	page, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	spaceID := SpaceRef(page)
	if spaceID == "" {
		return nil, apperr.Resolution("could not determine the space of page %s", pageID)
	}
	listing, err := c.ListPages(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	children := []any{}
	for _, item := range listing.Items {
		if ParentRef(item) == pageID {
			children = append(children, item)
		}
	}
	return &ChildrenResult{ParentPageID: pageID, Items: children}, nil
}

// ParentRef extracts the parent page id from a page object, checking the
// explicit field, then the nested parent object, then the generic field.
func ParentRef(page any) string {
	m, _ := page.(map[string]any)
	return firstNonEmpty(
		getString(m, "parentPageId"),
		getString(getMap(m, "parentPage"), "id"),
		getString(m, "parentId"),
	)
}

// SpaceRef extracts the owning space id from a page object.
func SpaceRef(page any) string {
	m, _ := page.(map[string]any)
	space := getMap(m, "space")
	return firstNonEmpty(getString(m, "spaceId"), getString(space, "id"), getString(space, "spaceId"))
}

package tools

// Catalog returns the Docmost tool registry.
func Catalog() *Registry {
	return NewRegistry(
		Tool{
			Name:        ListSpaces,
			Description: "List the spaces available in Docmost.",
		},
		Tool{
			Name:        ListPages,
			Description: "List every page of a space, following pagination to the end.",
			Params: []Param{
				{Name: "spaceId", Type: "string", Required: true, Description: "Space id."},
			},
		},
		Tool{
			Name:        GetPage,
			Description: "Get a page by id.",
			Params: []Param{
				{Name: "pageId", Type: "string", Required: true, Description: "Page id."},
			},
		},
		Tool{
			Name:        SearchPages,
			Description: "Search pages by free text.",
			Params: []Param{
				{Name: "query", Type: "string", Required: true, Description: "Text to search for."},
			},
		},
		Tool{
			Name:        CreatePage,
			Description: "Create a page in a space, optionally under a parent page.",
			Mutating:    true,
			Params: []Param{
				{Name: "title", Type: "string", Required: true, Description: "Page title."},
				{Name: "content", Type: "string", Required: true, Description: "Page content."},
				{Name: "spaceId", Type: "string", Required: true, Description: "Space that will own the page."},
				{Name: "folderId", Type: "string", Nullable: true, Description: "Parent page id; omit or null for a top-level page."},
			},
		},
		Tool{
			Name:        UpdatePage,
			Description: "Update an existing page with the given fields.",
			Mutating:    true,
			Params: []Param{
				{Name: "pageId", Type: "string", Required: true, Description: "Page id."},
				{Name: "payload", Type: "object", Required: true, Description: "Fields to change, e.g. title or content."},
			},
		},
		Tool{
			Name:        GetParentPage,
			Description: "Get the parent of a page. Returns nulls for a top-level page.",
			Params: []Param{
				{Name: "pageId", Type: "string", Required: true, Description: "Page id."},
			},
		},
		Tool{
			Name:        ListChildren,
			Description: "List the direct children of a page.",
			Params: []Param{
				{Name: "pageId", Type: "string", Required: true, Description: "Parent page id."},
			},
		},
		Tool{
			Name:        GetPageURL,
			Description: "Build the browser URL of a page.",
			Params: []Param{
				{Name: "pageId", Type: "string", Required: true, Description: "Page id."},
			},
		},
		Tool{
			Name:        DownloadFile,
			Description: "Download an attachment. Content is returned base64 encoded.",
			Params: []Param{
				{Name: "fileId", Type: "string", Required: true, Description: "Attachment id."},
			},
		},
		Tool{
			Name:        UploadFile,
			Description: "Attach a file to a page from base64 content or a source URL.",
			Mutating:    true,
			Params: []Param{
				{Name: "pageId", Type: "string", Required: true, Description: "Page that receives the file."},
				{Name: "fileName", Type: "string", Nullable: true, Description: "File name; derived from fileUrl when omitted."},
				{Name: "fileBase64", Type: "string", Nullable: true, Description: "File content, base64 encoded."},
				{Name: "fileUrl", Type: "string", Nullable: true, Description: "URL to fetch the file from."},
			},
		},
	)
}

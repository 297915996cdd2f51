package docmost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmost-mcp/internal/apperr"
)

// recorded is a request seen by the fake backend.
type recorded struct {
	Method string
	Path   string
	Body   map[string]any
	Header http.Header
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(w http.ResponseWriter, r *http.Request, body map[string]any)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recorded{Method: r.Method, Path: r.URL.Path, Body: body, Header: r.Header.Clone()})
	f.mu.Unlock()
	f.handler(w, r, body)
}

func (f *fakeBackend) calls() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func newTestClient(t *testing.T, token string, h func(w http.ResponseWriter, r *http.Request, body map[string]any)) (*Client, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{handler: h}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", token, srv.Client()), fb
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestUnwrap(t *testing.T) {
	assert.Equal(t, map[string]any{"foo": float64(1)}, Unwrap(map[string]any{"data": map[string]any{"foo": float64(1)}}))
	assert.Equal(t, map[string]any{"foo": float64(1)}, Unwrap(map[string]any{"foo": float64(1)}))
	assert.Equal(t, []any{"a"}, Unwrap([]any{"a"}))
	assert.Nil(t, Unwrap(map[string]any{"data": nil}))
}

func TestGetPageUnwrapsDataAndSendsBearer(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "p1", "title": "x"}})
	})

	page, err := c.GetPage(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "p1", "title": "x"}, page)

	calls := fb.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/pages/info", calls[0].Path)
	assert.Equal(t, "p1", calls[0].Body["pageId"])
	assert.Equal(t, "Bearer tok", calls[0].Header.Get("Authorization"))
}

func TestNonSuccessStatusIsBackendError(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "nope"})
	})

	_, err := c.ListSpaces(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBackend))
	assert.Equal(t, 403, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "nope")
}

func TestHTMLResponseIsBackendError(t *testing.T) {
	cases := map[string]func(w http.ResponseWriter){
		"content type": func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, "<html><body>login</body></html>")
		},
		"doctype body": func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "<!DOCTYPE html><html></html>")
		},
	}
	for name, respond := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
				respond(w)
			})
			_, err := c.SearchPages(context.Background(), "hello")
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindBackend))
			assert.Contains(t, err.Error(), "HTML")
		})
	}
}

func TestValidationHappensBeforeNetwork(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx := context.Background()

	_, err := c.ListPages(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.GetPage(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.SearchPages(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.CreatePage(ctx, CreatePageInput{Title: "t", Content: "c"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.UpdatePage(ctx, "", nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.DownloadFile(ctx, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.UploadFile(ctx, UploadInput{PageID: "p1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = c.Login(ctx, "a@b.c", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Empty(t, fb.calls())
}

func TestListPagesDrainsAllPages(t *testing.T) {
	const pages = 3
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, body map[string]any) {
		n := int(body["page"].(float64))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"items": []any{map[string]any{"id": n*10 + 1}, map[string]any{"id": n*10 + 2}},
			"meta":  map[string]any{"page": n, "hasNextPage": n < pages},
		}})
	})

	listing, err := c.ListPages(context.Background(), "s1")
	require.NoError(t, err)

	calls := fb.calls()
	require.Len(t, calls, pages)
	for i, call := range calls {
		assert.Equal(t, "/api/pages/sidebar-pages", call.Path)
		assert.Equal(t, "s1", call.Body["spaceId"])
		assert.Equal(t, float64(i+1), call.Body["page"])
		assert.Equal(t, float64(sidebarPageSize), call.Body["limit"])
	}

	var ids []float64
	for _, it := range listing.Items {
		ids = append(ids, it.(map[string]any)["id"].(float64))
	}
	assert.Equal(t, []float64{11, 12, 21, 22, 31, 32}, ids)
	assert.Equal(t, map[string]any{"page": float64(3), "hasNextPage": false}, listing.Meta)
}

func TestListPagesWithoutMetaStopsAfterOnePage(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{"a"}})
	})

	listing, err := c.ListPages(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, fb.calls(), 1)
	assert.Equal(t, []any{"a"}, listing.Items)
	assert.Nil(t, listing.Meta)
}

func TestCreatePageSendsExplicitNullParent(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "new"}})
	})

	_, err := c.CreatePage(context.Background(), CreatePageInput{Title: "t", Content: "c", SpaceID: "s1"})
	require.NoError(t, err)
	_, err = c.CreatePage(context.Background(), CreatePageInput{Title: "t", Content: "c", SpaceID: "s1", FolderID: "f1"})
	require.NoError(t, err)

	calls := fb.calls()
	require.Len(t, calls, 2)
	parent, present := calls[0].Body["parentPageId"]
	assert.True(t, present)
	assert.Nil(t, parent)
	assert.Equal(t, "f1", calls[1].Body["parentPageId"])
}

func TestUpdatePageMergesPayload(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	_, err := c.UpdatePage(context.Background(), "p1", map[string]any{"title": "new", "pageId": "other"})
	require.NoError(t, err)
	body := fb.calls()[0].Body
	assert.Equal(t, "p1", body["pageId"])
	assert.Equal(t, "new", body["title"])
}

func TestGetParentPage(t *testing.T) {
	pages := map[string]map[string]any{
		"child":  {"id": "child", "parentPage": map[string]any{"id": "root"}},
		"root":   {"id": "root"},
		"legacy": {"id": "legacy", "parentId": "root"},
	}
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, body map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{"data": pages[body["pageId"].(string)]})
	})
	ctx := context.Background()

	res, err := c.GetParentPage(ctx, "child")
	require.NoError(t, err)
	require.NotNil(t, res.ParentID)
	assert.Equal(t, "root", *res.ParentID)
	assert.Equal(t, map[string]any{"id": "root"}, res.Parent)

	res, err = c.GetParentPage(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "root", *res.ParentID)

	res, err = c.GetParentPage(ctx, "root")
	require.NoError(t, err)
	assert.Nil(t, res.ParentID)
	assert.Nil(t, res.Parent)

	encoded, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"parentId":null,"parent":null}`, string(encoded))
}

func TestParentRefPrecedence(t *testing.T) {
	page := map[string]any{"parentPageId": "a", "parentPage": map[string]any{"id": "b"}, "parentId": "c"}
	assert.Equal(t, "a", ParentRef(page))
	delete(page, "parentPageId")
	assert.Equal(t, "b", ParentRef(page))
	page["parentPage"] = map[string]any{}
	assert.Equal(t, "c", ParentRef(page))
	assert.Equal(t, "", ParentRef("not a page"))
}

func TestListChildren(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		switch r.URL.Path {
		case "/api/pages/info":
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "p1", "space": map[string]any{"id": "s1"}}})
		case "/api/pages/sidebar-pages":
			writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
				"items": []any{
					map[string]any{"id": "a", "parentPageId": "p1"},
					map[string]any{"id": "b", "parentPageId": "zz"},
					map[string]any{"id": "c", "parentPage": map[string]any{"id": "p1"}},
				},
				"meta": map[string]any{"hasNextPage": false},
			}})
		default:
			http.NotFound(w, r)
		}
	})

	res, err := c.ListChildren(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", res.ParentPageID)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "a", res.Items[0].(map[string]any)["id"])
	assert.Equal(t, "c", res.Items[1].(map[string]any)["id"])
}

func TestListChildrenWithoutSpaceIsResolutionError(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "p1"}})
	})
	_, err := c.ListChildren(context.Background(), "p1")
	assert.True(t, apperr.Is(err, apperr.KindResolution))
}

func TestDownloadFile(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	file, err := c.DownloadFile(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "/api/files/f1", fb.calls()[0].Path)
	assert.Equal(t, "f1", file.FileID)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, 4, file.Size)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}), file.Base64)
}

func TestDownloadFileFailure(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		http.Error(w, "missing", http.StatusNotFound)
	})
	_, err := c.DownloadFile(context.Background(), "f1")
	assert.True(t, apperr.Is(err, apperr.KindBackend))
	assert.Equal(t, 404, apperr.CodeOf(err))
}

func TestUploadFileFromBase64(t *testing.T) {
	type upload struct {
		pageID, name, contentType, content string
	}
	got := make(chan upload, 1)
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		got <- upload{r.FormValue("pageId"), hdr.Filename, hdr.Header.Get("Content-Type"), string(data)}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "att1"}})
	})

	res, err := c.UploadFile(context.Background(), UploadInput{
		PageID:     "p1",
		FileName:   "notes.txt",
		FileBase64: base64.StdEncoding.EncodeToString([]byte("hello")),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "att1"}, res)
	assert.Equal(t, upload{"p1", "notes.txt", defaultContentType, "hello"}, <-got)
}

func TestUploadFileFromURLDerivesName(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "a,b")
	}))
	t.Cleanup(source.Close)

	names := make(chan [2]string, 1)
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		names <- [2]string{hdr.Filename, hdr.Header.Get("Content-Type")}
		writeJSON(w, http.StatusOK, map[string]any{"id": "att2"})
	})

	_, err := c.UploadFile(context.Background(), UploadInput{PageID: "p1", FileURL: source.URL + "/exports/report.csv"})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"report.csv", "text/csv"}, <-names)
}

func TestFileNameFromPath(t *testing.T) {
	assert.Equal(t, "a.png", fileNameFromPath("/x/y/a.png"))
	assert.Equal(t, "", fileNameFromPath("/"))
	assert.Equal(t, "", fileNameFromPath(""))
}

func TestUploadFileRejectsBadBase64(t *testing.T) {
	c, fb := newTestClient(t, "tok", func(w http.ResponseWriter, _ *http.Request, _ map[string]any) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	_, err := c.UploadFile(context.Background(), UploadInput{PageID: "p1", FileBase64: "%%%"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, fb.calls())
}

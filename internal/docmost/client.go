// Package docmost provides a client for the Docmost document API.
package docmost

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"docmost-mcp/internal/apperr"
)

// Client is an HTTP client for a single Docmost instance. Requests carry
// the bearer token when one is configured, otherwise the session cookie
// obtained through Login.
type Client struct {
	BaseURL  string
	APIToken string
	HTTP     *http.Client
	Logger   *slog.Logger

	mu         sync.RWMutex
	authCookie string
}

// New returns a new client. If httpClient is nil, a default client without a
// timeout is used; callers bound requests through the context instead.
func New(baseURL, apiToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIToken: apiToken, HTTP: httpClient}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Client) endpoint(path string) string { return c.BaseURL + path }

// authorize sets the credential header on an outbound request.
func (c *Client) authorize(req *http.Request) {
	if c.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
		return
	}
	c.mu.RLock()
	cookie := c.authCookie
	c.mu.RUnlock()
	if cookie != "" {
		req.Header.Set("Cookie", authCookieName+"="+cookie)
	}
}

// post sends body as JSON to path and returns the normalized response.
func (c *Client) post(ctx context.Context, path string, body any) (any, error) {
	if body == nil {
		body = map[string]any{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "encode request for %s", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "build request for %s", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "docmost request %s failed", path)
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

// decodeResponse turns any JSON-returning response into a single value:
// non-2xx statuses and HTML pages become backend errors and a top-level
// "data" envelope is unwrapped.
func decodeResponse(resp *http.Response) (any, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "read docmost response")
	}

	contentType := resp.Header.Get("Content-Type")
	var body any
	if strings.Contains(contentType, "application/json") && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			if !isSuccess(resp.StatusCode) {
				return nil, apperr.Backend(resp.StatusCode, "docmost returned %d: %s", resp.StatusCode, string(raw))
			}
			return nil, apperr.Wrap(apperr.KindBackend, err, "decode docmost response")
		}
	} else {
		body = string(raw)
	}

	if !isSuccess(resp.StatusCode) {
		return nil, apperr.Backend(resp.StatusCode, "docmost returned %d: %s", resp.StatusCode, describeBody(body))
	}
	if looksLikeHTML(contentType, body) {
		return nil, apperr.Backend(0, "docmost returned HTML instead of JSON; check that the API base URL is correct")
	}
	return Unwrap(body), nil
}

// Unwrap returns the "data" field of an object body, or the body itself.
func Unwrap(body any) any {
	if m, ok := body.(map[string]any); ok {
		if data, ok := m["data"]; ok {
			return data
		}
	}
	return body
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

func looksLikeHTML(contentType string, body any) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	s, ok := body.(string)
	return ok && strings.Contains(strings.ToLower(s), "<!doctype html")
}

func describeBody(body any) string {
	if s, ok := body.(string); ok {
		return s
	}
	b, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(b)
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok {
		switch t := v.(type) {
		case string:
			return t
		}
	}
	return ""
}

func getMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	nested, _ := m[key].(map[string]any)
	return nested
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

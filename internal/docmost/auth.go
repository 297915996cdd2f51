package docmost

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"docmost-mcp/internal/apperr"
)

const authCookieName = "authToken"

// Login exchanges credentials for a session cookie and keeps it for later
// requests. It is meant to run once at startup, before traffic is served;
// the cookie is never refreshed.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Validation("email and password are required to log in")
	}
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, err, "encode login request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/auth/login"), bytes.NewReader(payload))
	if err != nil {
		return "", apperr.Wrap(apperr.KindBackend, err, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindBackend, err, "docmost login failed")
	}
	defer resp.Body.Close()
	if _, err := decodeResponse(resp); err != nil {
		return "", err
	}

	token, err := authTokenFromCookies(resp.Header.Values("Set-Cookie"))
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.authCookie = token
	c.mu.Unlock()
	c.logger().Info("logged in to docmost", "base_url", c.BaseURL)
	return token, nil
}

// authTokenFromCookies finds the session cookie among Set-Cookie values.
// A value may hold several cookies joined by commas.
func authTokenFromCookies(values []string) (string, error) {
	prefix := authCookieName + "="
	for _, v := range values {
		for _, candidate := range strings.Split(v, ",") {
			candidate = strings.TrimSpace(candidate)
			if !strings.HasPrefix(candidate, prefix) {
				continue
			}
			pair, _, _ := strings.Cut(candidate, ";")
			token := strings.TrimSpace(strings.TrimPrefix(pair, prefix))
			if token == "" {
				return "", apperr.Auth("could not extract the %s value", authCookieName)
			}
			return token, nil
		}
	}
	return "", apperr.Auth("login response did not set the %s cookie", authCookieName)
}

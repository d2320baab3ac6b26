// Package client talks to the accounts server over HTTP. It keeps the session
// and CSRF cookies in a cookie jar, so one Client is one signed-in browser.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/entities"
	httpapi "github.com/mrlokans/accounts/internal/http"
)

const defaultTimeout = 30 * time.Second

// Client is an accounts API client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	origin     string
	httpClient *http.Client

	mu        sync.Mutex
	csrfToken string
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8188".
func New(baseURL string) (*Client, error) {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: defaultTimeout})
}

// NewWithHTTPClient uses hc for transport. A cookie jar is attached when hc has none.
func NewWithHTTPClient(baseURL string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must include scheme and host", baseURL)
	}

	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	return &Client{
		baseURL:    u,
		origin:     u.Scheme + "://" + u.Host,
		httpClient: hc,
	}, nil
}

// Register creates an account. Failures are returned as *APIError or *NetworkError.
func (c *Client) Register(ctx context.Context, in auth.RegisterInput) (*entities.Summary, error) {
	return c.postAccount(ctx, "/auth/register", in, http.StatusCreated)
}

// Login verifies credentials without starting a session.
func (c *Client) Login(ctx context.Context, email, password string) (*entities.Summary, error) {
	return c.postAccount(ctx, "/auth/login", auth.Credentials{Email: email, Password: password}, http.StatusOK)
}

// SignIn starts a session. The outcome is always carried by the result's
// Status; the error is set only when no response was received.
func (c *Client) SignIn(ctx context.Context, email, password string) (auth.SignInResult, error) {
	body, err := json.Marshal(auth.Credentials{Email: email, Password: password})
	if err != nil {
		return auth.SignInResult{}, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, raw, err := c.doProtected(ctx, http.MethodPost, "/auth/session", body)
	if err != nil {
		return auth.SignInResult{}, err
	}

	var result auth.SignInResult
	if json.Unmarshal(raw, &result) != nil || result.Status == 0 {
		result = auth.SignInResult{Status: resp.StatusCode, Message: decodeError(resp.StatusCode, raw).Message}
	}
	return result, nil
}

// CurrentUser returns the signed-in account, or nil when there is no session.
func (c *Client) CurrentUser(ctx context.Context) (*entities.Summary, error) {
	resp, raw, err := c.do(ctx, http.MethodGet, "/auth/session", nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var out auth.AccountResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out.User, nil
}

// SignOut ends the current session.
func (c *Client) SignOut(ctx context.Context) error {
	resp, raw, err := c.doProtected(ctx, http.MethodDelete, "/auth/session", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return decodeError(resp.StatusCode, raw)
	}
	return nil
}

// Landing loads the landing route. redirect is a path returned by a form
// submission such as "/?signup=success"; an empty value loads "/".
func (c *Client) Landing(ctx context.Context, redirect string) (*httpapi.LandingResponse, error) {
	if redirect == "" {
		redirect = "/"
	}
	resp, raw, err := c.do(ctx, http.MethodGet, redirect, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var out httpapi.LandingResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) postAccount(ctx context.Context, path string, payload any, want int) (*entities.Summary, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, raw, err := c.do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != want {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var out auth.AccountResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out.User, nil
}

// doProtected sends a request to a CSRF-protected route. A rejected token is
// refreshed once.
func (c *Client) doProtected(ctx context.Context, method, path string, body []byte) (*http.Response, []byte, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.ensureCSRFToken(ctx)
		if err != nil {
			return nil, nil, err
		}

		headers := map[string]string{}
		if token != "" {
			headers[auth.CSRFTokenHeader] = token
		}
		resp, raw, err := c.do(ctx, method, path, body, headers)
		if err != nil {
			return nil, nil, err
		}
		if resp.StatusCode != http.StatusForbidden || attempt > 0 {
			return resp, raw, nil
		}
		c.setCSRFToken("")
	}
}

func (c *Client) ensureCSRFToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.csrfToken
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	resp, raw, err := c.do(ctx, http.MethodGet, "/auth/csrf", nil, nil)
	if err != nil {
		return "", err
	}
	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		token = resp.Header.Get(auth.CSRFTokenHeader)
	case http.StatusNotFound:
		// Server runs without CSRF protection.
		return "", nil
	default:
		return "", decodeError(resp.StatusCode, raw)
	}

	c.setCSRFToken(token)
	return token, nil
}

func (c *Client) setCSRFToken(token string) {
	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, headers map[string]string) (*http.Response, []byte, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse path: %w", err)
	}
	target := c.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set("Origin", c.origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Op: "read " + path, Err: err}
	}
	return resp, raw, nil
}

func decodeError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	var body auth.ErrorResponse
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

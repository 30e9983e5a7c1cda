package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// User is the server's public view of an account.
type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Client is the API contract the CLI depends on.
type Client interface {
	Register(ctx context.Context, username, password, adminSecret string) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (string, error)
	ListUsers(ctx context.Context, token string) ([]User, error)
	Promote(ctx context.Context, token, username string) (*User, error)
	Demote(ctx context.Context, token, username string) (*User, error)
	Array(ctx context.Context, token string) ([]any, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Register(ctx context.Context, username, password, adminSecret string) (*User, error) {
	body := map[string]string{"username": username, "password": password}
	if adminSecret != "" {
		body["admin_secret"] = adminSecret
	}
	var u User
	if err := c.doJSON(ctx, http.MethodPost, "/users", "", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login uses the OAuth2 password form and returns the access token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"grant_type": {"password"}, "username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (string, error) {
	var out struct {
		User string `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/me", token, nil, &out); err != nil {
		return "", err
	}
	return out.User, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context, token string) ([]User, error) {
	var out []User
	if err := c.doJSON(ctx, http.MethodGet, "/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Promote(ctx context.Context, token, username string) (*User, error) {
	return c.setRole(ctx, token, username, "promote")
}

func (c *HTTPClient) Demote(ctx context.Context, token, username string) (*User, error) {
	return c.setRole(ctx, token, username, "demote")
}

func (c *HTTPClient) setRole(ctx context.Context, token, username, action string) (*User, error) {
	var u User
	path := "/users/" + url.PathEscape(username) + "/" + action
	if err := c.doJSON(ctx, http.MethodPut, path, token, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Array(ctx context.Context, token string) ([]any, error) {
	var out struct {
		Array []any `json:"array"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/array", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Array, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Detail: e.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Package api implements the typed HTTP client for the backend. Every
// outbound call goes through one request helper that attaches the bearer
// token when one is present and classifies failures into the error taxonomy
// consumed by the session layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/chemviz/chemviz/internal/model"
)

// TokenReader is the narrow credential-store contract the client needs. The
// client only ever reads tokens; it never writes them.
type TokenReader interface {
	AccessToken() string
}

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenReader
}

// NewClient creates a client for the API rooted at baseURL (for example
// "http://127.0.0.1:8000/api"). No request timeout is configured; a hung
// request is bounded only by the transport's own limits.
func NewClient(baseURL string, tokens TokenReader) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		tokens:  tokens,
	}
}

// Login posts credentials and returns the issued token pair. Persisting the
// pair is the caller's responsibility.
func (c *Client) Login(ctx context.Context, username, password string) (model.Credentials, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return model.Credentials{}, fmt.Errorf("api: marshal login: %w", err)
	}

	body, err := c.request(ctx, http.MethodPost, "/login/", "application/json", bytes.NewReader(payload))
	if err != nil {
		return model.Credentials{}, err
	}

	var creds model.Credentials
	if err := json.Unmarshal(body, &creds); err != nil {
		return model.Credentials{}, fmt.Errorf("api: decode login response: %w", err)
	}
	return creds, nil
}

// FetchHistory returns processed uploads, newest first, as ordered by the
// server.
func (c *Client) FetchHistory(ctx context.Context) (model.History, error) {
	body, err := c.request(ctx, http.MethodGet, "/history/", "", nil)
	if err != nil {
		return nil, err
	}

	var history model.History
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("api: decode history: %w", err)
	}
	return history, nil
}

// UploadFile posts data as a multipart form under field name "file".
func (c *Client) UploadFile(ctx context.Context, filename string, data io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("api: create form file: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return fmt.Errorf("api: read upload data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("api: finalize form: %w", err)
	}

	_, err = c.request(ctx, http.MethodPost, "/upload/", mw.FormDataContentType(), &buf)
	return err
}

// DownloadReport fetches the generated report as raw PDF bytes.
func (c *Client) DownloadReport(ctx context.Context) ([]byte, error) {
	return c.request(ctx, http.MethodGet, "/report/", "", nil)
}

// request performs one HTTP call, attaching the bearer token when present.
// Non-2xx responses come back classified; 2xx returns the raw body.
func (c *Client) request(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, data)
	}
	return data, nil
}

var _ model.Gateway = (*Client)(nil)

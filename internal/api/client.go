package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"hireflow/internal/common"
	"hireflow/internal/domain/resume"
)

// TokenSource returns the token to attach to the next request, or "" to
// send it unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string {
	return f(ctx)
}

// UnauthorizedFunc is called when a request that carried token was
// answered with 401.
type UnauthorizedFunc func(ctx context.Context, token string)

// Ack is the plain {"message": ...} acknowledgement most mutations return.
type Ack struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithUnauthorizedHandler(fn UnauthorizedFunc) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// Client is the single configured HTTP client of the job board API. Each
// endpoint method performs exactly one request and never retries.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	timeout        time.Duration
	logger         *slog.Logger
	onUnauthorized UnauthorizedFunc
}

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &authTransport{
		base:           base,
		tokens:         tokens,
		onUnauthorized: c.onUnauthorized,
		logger:         c.logger,
	}
	if c.timeout > 0 {
		wrapped.Timeout = c.timeout
	}
	c.httpClient = &wrapped
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return common.NewError(common.CodeInternal, "encode request", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return common.NewError(common.CodeInternal, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, fileField string, file resume.File, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return common.NewError(common.CodeInternal, "encode form field", err)
		}
	}
	part, err := writer.CreateFormFile(fileField, file.Name)
	if err != nil {
		return common.NewError(common.CodeInternal, "encode form file", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return common.NewError(common.CodeInternal, "encode form file", err)
	}
	if err := writer.Close(); err != nil {
		return common.NewError(common.CodeInternal, "encode form", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return common.NewError(common.CodeInternal, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return common.NewError(common.CodeNetwork, "request canceled", err)
		}
		return common.NewError(common.CodeNetwork, "request failed", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.NewError(common.CodeNetwork, "read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp.StatusCode, payload)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return common.NewError(common.CodeInternal, "decode response", fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	return nil
}

// mapError keeps the server's own text. Bodies that are not the usual
// {"error"} or {"message"} object carry no user-facing text.
func mapError(status int, payload []byte) error {
	var parsed errorResponse
	message := ""
	if err := json.Unmarshal(payload, &parsed); err == nil {
		message = strings.TrimSpace(parsed.Error)
		if message == "" {
			message = strings.TrimSpace(parsed.Message)
		}
	}
	return common.NewStatusError(status, message)
}

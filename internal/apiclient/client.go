// Package apiclient is the HTTP client the web front and the operator CLI use
// to talk to the recruiting API.
//
// The bearer token is attached only to admin endpoints. Public endpoints
// never see it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lifewood/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// ErrNetwork wraps transport failures: the request never produced an HTTP
// response.
var ErrNetwork = errors.New("network error")

// Response is a completed HTTP exchange.
type Response struct {
	Status int
	Header http.Header
	Data   []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Error is returned for non-2xx responses.
type Error struct {
	Response *Response
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("api error %d: %s", e.Response.Status, msg)
	}
	return fmt.Sprintf("api error %d", e.Response.Status)
}

// Status is the HTTP status of the failed response.
func (e *Error) Status() int {
	return e.Response.Status
}

// Message extracts the server's explanation: the JSON field "message", else
// "error", else the raw body text.
func (e *Error) Message() string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Response.Data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(e.Response.Data))
}

// AsError returns the *Error inside err, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// Client calls the recruiting API relative to a base URL such as
// "http://localhost:8080/api".
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
}

// New returns a Client. tokens may be nil when no admin calls are made.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the client's token store.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// isAdminPath reports whether path addresses an admin endpoint. One leading
// slash is ignored and the match is case-sensitive.
func isAdminPath(path string) bool {
	normalized := strings.TrimPrefix(path, "/")
	return strings.HasPrefix(normalized, "admin") || strings.Contains(normalized, "admin/")
}

// URL resolves path against the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Do sends a request. body may be nil, a *Multipart, or any value that is
// encoded as JSON. header may be nil. Each call is a client span whose
// context is propagated to the API.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (resp *Response, err error) {
	ctx, span := observability.StartClientSpan(ctx, "api "+method,
		attribute.String("http.method", method),
		attribute.String("http.target", path))
	defer func() {
		if resp != nil {
			span.SetAttributes(attribute.Int("http.status_code", resp.Status))
		}
		observability.EndSpan(span, err)
	}()
	return c.do(ctx, method, path, body, header)
}

func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		data, ct, err := b.encode()
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
		contentType = ct
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if contentType != "" {
		// Multipart bodies carry their own boundary.
		req.Header.Set("Content-Type", contentType)
	} else if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if c.tokens != nil && isAdminPath(path) {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Data: data}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &Error{Response: out}
	}
	return out, nil
}

// Decode turns a call's result into a typed value. It is meant to wrap a
// call directly:
//
//	list, err := apiclient.Decode[[]models.Applicant](c.ListApplicants(ctx))
func Decode[T any](resp *Response, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if err := resp.JSON(&out); err != nil {
		return out, err
	}
	return out, nil
}

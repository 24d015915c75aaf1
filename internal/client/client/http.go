package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/models"
	"github.com/dmitrijs2005/storeadmin/internal/common"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
	"github.com/dmitrijs2005/storeadmin/internal/netx"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient creates a client for the API rooted at baseURL. tokens may be
// nil, in which case requests are sent without Authorization.
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "api")
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &out)
	return out, err
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.doJSON(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

func (c *HTTPClient) CreateProduct(ctx context.Context, p ProductPayload) (models.Product, error) {
	var out models.Product
	err := c.doMultipart(ctx, http.MethodPost, "/products", p, &out)
	return out, err
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id string, p ProductPayload) (models.Product, error) {
	var out models.Product
	err := c.doMultipart(ctx, http.MethodPut, "/products/"+url.PathEscape(id), p, &out)
	return out, err
}

func (c *HTTPClient) DeleteProduct(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// Ping reports ErrUnavailable when the backend cannot be reached or answers
// with 5xx. Any other answer means it is up.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/products", nil, "")
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &StatusError{Method: req.Method, Path: "/products", Status: resp.StatusCode, kind: ErrUnavailable}
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *HTTPClient) doMultipart(ctx context.Context, method, path string, p ProductPayload, out any) error {
	fields := []netx.Field{
		{Name: "name", Value: p.Name},
		{Name: "description", Value: p.Description},
		{Name: "price", Value: strconv.FormatFloat(p.Price, 'f', -1, 64)},
	}
	var files []netx.FilePart
	if p.Image != nil {
		files = append(files, netx.FilePart{Field: "image", Name: p.Image.Name, ContentType: p.Image.ContentType, Data: p.Image.Data})
	} else {
		fields = append(fields, netx.Field{Name: "image", Value: p.ImageURL})
	}

	body, contentType, err := netx.EncodeMultipart(fields, files...)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+tok)
		}
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request, path string, out any) error {
	ctx := req.Context()
	reqID := req.Header.Get(common.RequestIDHeader)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", req.Method, "path", path, "request_id", reqID, "error", err)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", req.Method, "path", path, "request_id", reqID,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:  req.Method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Body),
			kind:    kindForStatus(resp.StatusCode),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, path, err)
	}
	return nil
}

// errorMessage pulls "message" (or "error") out of a JSON error body and
// falls back to the raw text.
func errorMessage(r io.Reader) string {
	raw := netx.ReadSnippet(r, 4096)
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return raw
}

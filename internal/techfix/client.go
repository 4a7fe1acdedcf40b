package techfix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is the typed HTTP client for the TechFix backend API. Every screen
// of the admin front end goes through it; it performs exactly one attempt per
// call (no retries, no backoff) and surfaces failures to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a client for the given API base URL (no trailing slash
// required). timeout bounds every request including body read.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// RequestError is a non-2xx API response, carrying the HTTP status and the
// optional server-supplied message used for user-facing error text.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsNotFound reports whether err is a RequestError with status 404.
func IsNotFound(err error) bool {
	re, ok := err.(*RequestError)
	return ok && re.Status == http.StatusNotFound
}

type tokenCtxKey struct{}

// WithToken returns a context carrying the bearer credential attached to
// every request issued with it. The session middleware sets this for each
// authenticated request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFrom extracts the bearer credential from ctx, if any.
func TokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenCtxKey{}).(string)
	return t, ok && t != ""
}

// doRequest issues one API request. body (if non-nil) is JSON-encoded;
// result (if non-nil) receives the decoded JSON response. Non-2xx responses
// become *RequestError with the server's "message" field when present.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token, ok := TokenFrom(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			reqErr.Message = payload.Message
		}
		return reqErr
	}

	if result != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

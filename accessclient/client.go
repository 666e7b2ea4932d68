// Package accessclient decides whether the current user may open a chapter.
// It reads the ambient mode/token settings from an injected store and either
// applies the local demo rule or asks the verification endpoint.
package accessclient

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	// ModeDemo grants only DemoChapter without any remote check.
	ModeDemo = "demo"

	// DemoChapter is the single chapter readable in demo mode.
	DemoChapter = 1

	// DefaultEndpoint matches the local development server.
	DefaultEndpoint = "http://127.0.0.1:5000/verify"

	modeKey  = "mode"
	tokenKey = "token"
)

// Config carries the externally supplied knobs of the verifier.
// Zero values resolve to the development defaults.
type Config struct {
	// Endpoint is the verification URL. Defaults to DefaultEndpoint.
	Endpoint string
	// HTTPClient performs the verification call. Defaults to a client
	// without a timeout; callers wanting one inject their own.
	HTTPClient *http.Client
	// Logger receives failure diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client verifies chapter access for the current user.
// Results are derived fresh on every call; nothing is cached.
type Client struct {
	store      Store
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a Client reading mode/token from store.
func New(store Store, cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		store:      store,
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}
}

// UserMode returns the stored access mode, or ModeDemo when unset.
func (c *Client) UserMode() string {
	if mode, ok := c.store.Get(modeKey); ok && mode != "" {
		return mode
	}
	return ModeDemo
}

// UserToken returns the stored token, or nil when unset.
func (c *Client) UserToken() *string {
	if token, ok := c.store.Get(tokenKey); ok {
		return &token
	}
	return nil
}

type verifyRequest struct {
	Token   *string `json:"token"`
	Chapter int     `json:"chapter"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// VerifyAccess reports whether the user may open chapter. In demo mode only
// chapter 1 is accessible and no request is issued. Otherwise one POST is
// made to the verification endpoint and the response's valid field decides.
// Every failure on that path is logged and coerced to false; the caller
// always receives a plain boolean.
func (c *Client) VerifyAccess(ctx context.Context, chapter int) bool {
	if c.UserMode() == ModeDemo {
		return chapter == DemoChapter
	}

	body, err := json.Marshal(verifyRequest{Token: c.UserToken(), Chapter: chapter})
	if err != nil {
		c.logFailure(ctx, chapter, "encode_request", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.logFailure(ctx, chapter, "build_request", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(ctx, chapter, "call_endpoint", err)
		return false
	}
	defer resp.Body.Close()

	// The response body is parsed regardless of status; the server answers
	// the same shape on denial and the valid field carries the verdict.
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logFailure(ctx, chapter, "decode_response", err)
		return false
	}
	return out.Valid
}

func (c *Client) logFailure(ctx context.Context, chapter int, operation string, err error) {
	c.logger.WarnContext(ctx, "chapter verification failed",
		"module", "accessclient",
		"operation", operation,
		"outcome", "failure",
		"chapter", chapter,
		"endpoint", c.endpoint,
		"error", err,
	)
}

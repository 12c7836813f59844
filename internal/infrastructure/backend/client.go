// Package backend talks to the remote REST backend that owns clients, rooms,
// the item catalog, sales and sessions.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sangkips/pscafe-console/pkg/apperror"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const maxErrorBody = 4 << 10

// Config configures the backend client.
type Config struct {
	BaseURL string
	// Token is the fallback bearer token for requests without an operator token.
	Token   string
	Timeout time.Duration
}

// Client is a thin JSON client for the backend API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  oauth2.TokenSource
	logger  *zap.Logger
}

// NewClient creates a backend client. A zero Timeout means no client timeout.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend: base url %q must be absolute", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  NewStaticTokenSource(cfg.Token),
		logger:  logger.Named("backend"),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperror.NewUnavailableError("Backend unavailable, please retry")
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return upstreamError(resp.StatusCode, raw)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.NewUnavailableError("Backend response was interrupted, please retry")
	}
	return decodeBody(raw, out)
}

// authorize sets the bearer token: the operator token carried by ctx wins over
// the configured fallback. Without either the request goes out unauthenticated.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if tok := TokenFromContext(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
		return nil
	}
	if c.tokens == nil {
		return nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("backend: token: %w", err)
	}
	if tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}
	return nil
}

// upstreamError maps a failed backend response. 401/403/404/422 keep their
// status so the caller can tell them apart; everything else is a 502.
func upstreamError(status int, raw []byte) error {
	msg := errorMessage(raw)
	switch status {
	case http.StatusUnauthorized:
		return apperror.NewAppError(http.StatusUnauthorized, fallback(msg, "Backend rejected the credentials"))
	case http.StatusForbidden:
		return apperror.NewAppError(http.StatusForbidden, fallback(msg, "Backend denied access"))
	case http.StatusNotFound:
		return apperror.NewAppError(http.StatusNotFound, fallback(msg, "Resource not found on backend"))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperror.NewAppError(http.StatusUnprocessableEntity, fallback(msg, "Backend rejected the request"))
	}
	return apperror.NewUpstreamError(status, msg)
}

func errorMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var problem struct {
		Message string `json:"message"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &problem); err == nil {
		for _, m := range []string{problem.Message, problem.Detail, problem.Title, problem.Error} {
			if m != "" {
				return m
			}
		}
		return ""
	}
	if raw[0] == '<' {
		return ""
	}
	return string(raw)
}

func fallback(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}

// decodeBody accepts either a bare JSON value or a {"data": ...} style envelope.
// Targets with their own decoder get the body as sent.
func decodeBody(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if u, ok := out.(json.Unmarshaler); ok {
		if err := u.UnmarshalJSON(raw); err != nil {
			return apperror.NewUpstreamError(http.StatusBadGateway, "unexpected response format")
		}
		return nil
	}
	if raw[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err == nil {
			for _, key := range []string{"data", "items", "result", "value"} {
				if inner, ok := envelope[key]; ok && len(inner) > 0 && (inner[0] == '[' || inner[0] == '{') {
					if err := json.Unmarshal(inner, out); err == nil {
						return nil
					}
				}
			}
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.NewUpstreamError(http.StatusBadGateway, "unexpected response format")
	}
	return nil
}

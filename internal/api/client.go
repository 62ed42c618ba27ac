// Package api is the client data layer: thin request functions over the
// habit, share and upvote REST collections.
package api

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

	"github.com/julianstephens/habitshare/internal/constants"
	apperrors "github.com/julianstephens/habitshare/internal/errors"
	"github.com/julianstephens/habitshare/internal/logger"
)

// Client talks to habitshared. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	authKey string
	token   string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 15s timeout
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAuthKey sets the publishable key sent to the auth endpoints
func WithAuthKey(key string) Option {
	return func(c *Client) { c.authKey = key }
}

// WithToken sets the bearer token sent to data endpoints
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of c that authenticates as token
func (c *Client) WithSession(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// StatusError is a non-2xx response
type StatusError struct {
	Method string
	Path   string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Msg)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Kind maps the status code onto the client error taxonomy
func (e *StatusError) Kind() apperrors.Kind {
	switch {
	case e.Code == http.StatusNotFound:
		return apperrors.KindNotFound
	case e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden:
		return apperrors.KindForbidden
	case e.Code == http.StatusBadRequest || e.Code == http.StatusUnprocessableEntity || e.Code == http.StatusConflict:
		return apperrors.KindValidation
	default:
		return apperrors.KindTransport
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends body as JSON and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.KindValidation, "", fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.KindTransport, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.HasPrefix(path, "/auth/") && c.authKey != "" {
		req.Header.Set(constants.HeaderPubKey, c.authKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", constants.BearerPrefix+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("Request failed", "method", method, "path", path, "error", err)
		return apperrors.Wrap(apperrors.KindTransport, "", err)
	}
	defer resp.Body.Close()
	logger.Debug("Request complete", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Msg: eb.Error}
		return apperrors.Wrap(se.Kind(), "", se)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.KindTransport, "", fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// Health checks that the server answers /healthz
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

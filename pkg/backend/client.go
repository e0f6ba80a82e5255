// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package backend is a client for the control panel's REST backend, which
// owns the serial port, the companion device mappings and host power.
package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 10 * time.Second

// APIError is a failure reported by the backend itself. Message is the
// backend's own text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsAPIError reports whether err carries a backend-reported failure.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

type basicAuthTransport struct {
	base     http.RoundTripper
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform HTTP round trip: %w", err)
	}
	return resp, nil
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sends credentials with every request.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithInsecureTLS skips certificate verification, for self-signed
// backends on the local network.
func WithInsecureTLS() Option {
	return func(c *Client) { c.insecure = true }
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client talks to one backend. It implements transport.Transport over
// POST /api/command.
type Client struct {
	base     *url.URL
	http     *http.Client
	username string
	password string
	timeout  time.Duration
	insecure bool
	now      func() time.Time
}

var _ transport.Transport = (*Client)(nil)

// NewClient parses baseURL, e.g. "http://multiview.local:5000".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{base: u, timeout: DefaultTimeout, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		if c.insecure {
			base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // user opt-in
		}
		var rt http.RoundTripper = base
		if c.username != "" {
			rt = &basicAuthTransport{base: base, username: c.username, password: c.password}
		}
		c.http = &http.Client{Transport: rt, Timeout: c.timeout}
	}
	return c, nil
}

func (c *Client) URL() string {
	return c.base.String()
}

// envelope holds the fields every backend reply shares.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends a JSON request and decodes the reply into out. A reply with
// success:false becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u := c.base.JoinPath(ref.Path)
	u.RawQuery = ref.RawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("path", path).Msg("backend request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Command  string `json:"command"`
	Response string `json:"response"`
}

// Send relays command to the device through the backend. The backend's
// "No response" reply is returned as transport.ErrNoResponse.
func (c *Client) Send(ctx context.Context, command string) (string, error) {
	var out commandResponse
	if err := c.do(ctx, http.MethodPost, "/api/command", commandRequest{Command: command}, &out); err != nil {
		return "", err
	}
	if orei.IsNoData(out.Response) {
		return "", transport.ErrNoResponse
	}
	return out.Response, nil
}

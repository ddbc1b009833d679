// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package recordservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzhttp"

	"github.com/bureau-foundation/adjudicator/lib/clock"
)

// DefaultMaxResponseBytes bounds every buffered response body: 64 MB.
// Fragments and JSON replies are far smaller; the bound only stops a
// misbehaving server from exhausting memory. Downloads are streamed
// and not subject to it.
const DefaultMaxResponseBytes int64 = 64 << 20

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root the service's endpoints hang off, e.g.
	// "https://coder.example.org/app". Required.
	BaseURL string

	// HTTPClient is used for all requests. Defaults to a client with
	// no timeout: a hung response blocks until ctx is cancelled.
	HTTPClient *http.Client

	// Compression wraps the transport so responses are requested and
	// decoded with gzip (and zstd when the server offers it).
	Compression bool

	// MaxResponseBytes bounds buffered response bodies. Defaults to
	// DefaultMaxResponseBytes.
	MaxResponseBytes int64

	// Clock times requests for logging. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client is a typed client for the record service's adjudication
// endpoints. Each method maps to one endpoint. Non-2xx responses are
// returned as *ServiceError.
//
// Client is safe for concurrent use.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	maxResponseBytes int64
	clock            clock.Clock
	logger           *slog.Logger
}

// NewClient creates a Client from config. Returns an error if the base
// URL is missing or is not an absolute http(s) URL.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("recordservice: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("recordservice: parsing base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("recordservice: base URL must be http or https (got %q)", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("recordservice: base URL has no host (got %q)", baseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if config.Compression {
		parent := httpClient.Transport
		if parent == nil {
			parent = http.DefaultTransport
		}
		wrapped := *httpClient
		wrapped.Transport = gzhttp.Transport(parent)
		httpClient = &wrapped
	}

	maxResponseBytes := config.MaxResponseBytes
	if maxResponseBytes <= 0 {
		maxResponseBytes = DefaultMaxResponseBytes
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:          baseURL,
		httpClient:       httpClient,
		maxResponseBytes: maxResponseBytes,
		clock:            clk,
		logger:           logger,
	}, nil
}

// BaseURL returns the normalized base URL.
func (client *Client) BaseURL() string { return client.baseURL }

// do sends one request and buffers the response. GET requests carry
// params in the query string; POST requests carry them as a
// form-encoded body. On non-2xx responses, returns a *ServiceError.
func (client *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, http.Header, error) {
	response, err := client.send(ctx, method, path, params)
	if err != nil {
		return nil, nil, err
	}
	defer response.Body.Close()

	body, err := readBounded(response.Body, client.maxResponseBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("recordservice: %s %s: reading response body: %w", method, path, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, nil, &ServiceError{
			StatusCode: response.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(body),
		}
	}
	return body, response.Header, nil
}

// send issues a request and returns the open response. The caller
// closes the body. Status codes are not checked here.
func (client *Client) send(ctx context.Context, method, path string, params url.Values) (*http.Response, error) {
	target := client.baseURL + "/" + strings.TrimLeft(path, "/")

	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			target += "?" + params.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}

	request, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("recordservice: building %s %s: %w", method, path, err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	request.Header.Set("X-Requested-With", "XMLHttpRequest")

	start := client.clock.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Debug("record service request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, fmt.Errorf("recordservice: %s %s: %w", method, path, err)
	}
	client.logger.Debug("record service request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"duration", client.clock.Now().Sub(start),
	)
	return response, nil
}

// readBounded reads body up to limit bytes. A body over the limit is
// an error, never a truncated result.
func readBounded(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return data, nil
}

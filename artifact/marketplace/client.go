// Package marketplace is an HTTP client for an extension gallery: it queries
// the version catalog of an artifact and downloads version packages.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/netutil"
)

const (
	DefaultURL             = "https://marketplace.visualstudio.com/_apis/public/gallery/extensionquery"
	DefaultMetadataTimeout = 30 * time.Second
	DefaultDownloadTimeout = 120 * time.Second
	DefaultMaxPackageBytes = 200 << 20
	DefaultMaxRetries      = 2
	DefaultUserAgent       = "extcompat/1"

	acceptHeader     = "application/json;api-version=3.0-preview.1"
	maxMetadataBytes = 64 << 20
)

// ErrNotFound is returned when the gallery has no extension for an id.
var ErrNotFound = errors.New("extension not found")

// Client implements ports.CatalogClient and ports.PackageFetcher.
type Client struct {
	http            *http.Client
	logger          *slog.Logger
	url             string
	userAgent       string
	tempDir         string
	metadataTimeout time.Duration
	downloadTimeout time.Duration
	maxPackageBytes int64
	maxRetries      int
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the extension query endpoint.
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithHTTPClient replaces the HTTP client. Timeouts are applied per request
// through the context, so the client's own Timeout should be zero.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetadataTimeout sets the timeout for catalog queries.
func WithMetadataTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.metadataTimeout = d
		}
	}
}

// WithDownloadTimeout sets the timeout for package downloads.
func WithDownloadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.downloadTimeout = d
		}
	}
}

// WithMaxPackageBytes caps the size of a downloaded package.
func WithMaxPackageBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPackageBytes = n
		}
	}
}

// WithMaxRetries sets how often transient failures are retried by the
// default transport. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithTempDir sets where packages are downloaded. Default: os.TempDir().
func WithTempDir(dir string) Option {
	return func(c *Client) {
		c.tempDir = dir
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a gallery client. Unless WithHTTPClient is given, it
// uses a TLS 1.2+ transport that retries transient failures.
func NewClient(opts ...Option) *Client {
	c := &Client{
		logger:          slog.Default(),
		url:             DefaultURL,
		userAgent:       DefaultUserAgent,
		metadataTimeout: DefaultMetadataTimeout,
		downloadTimeout: DefaultDownloadTimeout,
		maxPackageBytes: DefaultMaxPackageBytes,
		maxRetries:      DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		retries := c.maxRetries
		if retries == 0 {
			retries = -1
		}
		c.http = &http.Client{Transport: netutil.NewTransport(retries, c.logRetry)}
	}
	return c
}

func (c *Client) logRetry(attempt int, wait time.Duration, status int) {
	c.logger.Warn("retrying gallery request", "attempt", attempt, "wait", wait, "status", status)
}

// Query fetches the catalog entry for id. Any failure is returned as an
// *entities.CatalogUnavailableError. Versions keep the gallery's order,
// which is assumed to be newest first.
func (c *Client) Query(ctx context.Context, id values.ArtifactID) (*entities.CatalogEntry, error) {
	entry, err := c.query(ctx, id)
	if err != nil {
		return nil, &entities.CatalogUnavailableError{ID: id, Err: err}
	}
	c.logger.Info("queried gallery", "artifact", id.String(), "versions", entry.Len())
	return entry, nil
}

func (c *Client) query(ctx context.Context, id values.ArtifactID) (*entities.CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	body, err := json.Marshal(newQueryRequest(id))
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("querying gallery", "url", netutil.StripCredentials(c.url), "artifact", id.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", netutil.StripCredentials(c.url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: netutil.StripCredentials(c.url), StatusCode: resp.StatusCode}
	}

	var out queryResponse
	if err := json.NewDecoder(netutil.NewLimitedReader(resp.Body, maxMetadataBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding gallery response: %w", err)
	}

	if len(out.Results) == 0 || len(out.Results[0].Extensions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return out.Results[0].Extensions[0].toEntry(id), nil
}

// StatusError reports a non-2xx gallery response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// drain discards a bounded amount of body so the connection can be reused.
func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4<<10))
}

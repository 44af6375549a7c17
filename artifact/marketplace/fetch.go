package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/netutil"
)

// Fetch downloads the package at url into a new temporary file and returns
// its path and sha256 digest. The caller owns the file. On failure no file
// is left behind and the error is an *entities.PackageError.
func (c *Client) Fetch(ctx context.Context, url string) (string, values.Digest, error) {
	path, digest, err := c.fetch(ctx, url)
	if err != nil {
		return "", values.Digest{}, &entities.PackageError{URL: netutil.Redact(url), Err: err}
	}
	return path, digest, nil
}

func (c *Client) fetch(ctx context.Context, url string) (_ string, _ values.Digest, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", values.Digest{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", values.Digest{}, fmt.Errorf("downloading: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return "", values.Digest{}, &StatusError{URL: netutil.Redact(url), StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > c.maxPackageBytes {
		return "", values.Digest{}, &netutil.SizeLimitExceededError{Limit: c.maxPackageBytes, Read: resp.ContentLength}
	}

	f, err := os.CreateTemp(c.tempDir, "extcompat-*.vsix")
	if err != nil {
		return "", values.Digest{}, fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("closing temporary file: %w", closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(f.Name()); rmErr != nil {
				c.logger.Warn("cannot remove partial download", "path", f.Name(), "error", rmErr)
			}
		}
	}()

	digester := values.NewDigestWriter()
	body := netutil.NewLimitedReader(resp.Body, c.maxPackageBytes)
	if _, err = io.Copy(io.MultiWriter(f, digester), body); err != nil {
		return "", values.Digest{}, fmt.Errorf("writing package: %w", err)
	}

	c.logger.Debug("downloaded package",
		"url", netutil.Redact(url),
		"size", netutil.FormatSize(body.BytesRead()),
		"path", f.Name(),
	)
	return f.Name(), digester.Digest(), nil
}

package netutil

import (
	"errors"
	"fmt"
	"io"
)

// LimitedReader reads at most Limit bytes from R. Content of exactly Limit
// bytes is allowed; reading past it returns a SizeLimitExceededError.
type LimitedReader struct {
	R     io.Reader
	Limit int64
	read  int64
}

// NewLimitedReader creates a new LimitedReader that will read at most limit bytes.
func NewLimitedReader(r io.Reader, limit int64) *LimitedReader {
	return &LimitedReader{R: r, Limit: limit}
}

// Read implements io.Reader. It allows one byte past the limit through to
// the underlying reader to tell "exactly at limit" from "over limit".
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.read > l.Limit {
		return 0, &SizeLimitExceededError{Limit: l.Limit, Read: l.read}
	}
	if remaining := l.Limit - l.read + 1; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := l.R.Read(p)
	l.read += int64(n)
	if l.read > l.Limit {
		// Drop the probe byte.
		return n - 1, &SizeLimitExceededError{Limit: l.Limit, Read: l.read}
	}
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (l *LimitedReader) BytesRead() int64 {
	return l.read
}

// SizeLimitExceededError is returned when the size limit is exceeded.
type SizeLimitExceededError struct {
	Limit int64
	Read  int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("size limit exceeded: read more than %s", FormatSize(e.Limit))
}

// IsSizeLimitExceededError returns true if the error is a SizeLimitExceededError.
func IsSizeLimitExceededError(err error) bool {
	var sizeLimitErr *SizeLimitExceededError
	return errors.As(err, &sizeLimitErr)
}

// FormatSize returns a human-readable size string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

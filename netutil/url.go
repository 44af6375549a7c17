package netutil

import (
	"fmt"
	"net/url"
	"strings"
)

// StripCredentials removes user:password@ from a URL for safe logging.
// Returns the original string if the URL cannot be parsed.
func StripCredentials(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.User = nil
	return parsed.String()
}

// Redact strips credentials and the query string, which registries use for
// signed download tokens.
func Redact(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.User = nil
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

// ExtractHost returns just the host:port from a URL.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// ValidateHTTPURL checks that rawURL is absolute with an http or https
// scheme and a host.
func ValidateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", StripCredentials(rawURL), err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("invalid URL %q: scheme must be http or https", StripCredentials(rawURL))
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", StripCredentials(rawURL))
	}
	return nil
}

// IsHTTPS returns true if the URL uses the HTTPS scheme.
func IsHTTPS(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.ToLower(parsed.Scheme) == "https"
}

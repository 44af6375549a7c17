package netutil

import (
	"crypto/tls"
	"net/http"
	"time"
)

// TLSConfig returns a TLS configuration with TLS 1.2 minimum and AEAD-only
// cipher suites for TLS 1.2.
func TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
	}
}

// NewTransport returns an http.Transport using TLSConfig, wrapped in a
// RetryTransport with maxRetries. onRetry may be nil.
func NewTransport(maxRetries int, onRetry func(attempt int, wait time.Duration, statusCode int)) *RetryTransport {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSClientConfig = TLSConfig()
	return &RetryTransport{
		Base:       base,
		MaxRetries: maxRetries,
		OnRetry:    onRetry,
	}
}

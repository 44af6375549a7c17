package values

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// Digest represents a content hash with algorithm.
type Digest struct {
	algorithm string // sha256
	value     string // hex-encoded hash
}

// NewDigest creates a digest from algorithm and hex value.
func NewDigest(algorithm, hexValue string) (Digest, error) {
	if algorithm != "sha256" {
		return Digest{}, fmt.Errorf("unsupported digest algorithm: %s", algorithm)
	}
	if _, err := hex.DecodeString(hexValue); err != nil {
		return Digest{}, fmt.Errorf("invalid digest value %q: %w", hexValue, err)
	}
	return Digest{algorithm: algorithm, value: strings.ToLower(hexValue)}, nil
}

// ParseDigest parses a digest string (e.g., "sha256:abc123...").
func ParseDigest(s string) (Digest, error) {
	algo, val, ok := strings.Cut(s, ":")
	if !ok {
		return Digest{}, fmt.Errorf("invalid digest format: %s", s)
	}
	return NewDigest(algo, val)
}

// String returns the canonical digest string.
func (d Digest) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%s", d.algorithm, d.value)
}

// Algorithm returns the hash algorithm.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns the hex-encoded hash value.
func (d Digest) Value() string {
	return d.value
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	return d.algorithm == "" && d.value == ""
}

// Equals checks equality with another digest.
func (d Digest) Equals(other Digest) bool {
	return d.algorithm == other.algorithm && d.value == other.value
}

// DigestWriter hashes everything written to it. Use it with io.MultiWriter
// to digest a download while it streams to disk.
type DigestWriter struct {
	h hash.Hash
}

// NewDigestWriter creates a sha256 DigestWriter.
func NewDigestWriter() *DigestWriter {
	return &DigestWriter{h: sha256.New()}
}

// Write implements io.Writer.
func (w *DigestWriter) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// Digest returns the digest of everything written so far.
func (w *DigestWriter) Digest() Digest {
	return Digest{algorithm: "sha256", value: hex.EncodeToString(w.h.Sum(nil))}
}

// ComputeDigestSHA256 computes SHA-256 digest of reader contents.
func ComputeDigestSHA256(r io.Reader) (Digest, error) {
	w := NewDigestWriter()
	if _, err := io.Copy(w, r); err != nil {
		return Digest{}, err
	}
	return w.Digest(), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/ports"
	"github.com/reglet-dev/extcompat/artifact/values"
)

// ErrDigestMismatch is returned when a package no longer hashes to its
// locked digest.
var ErrDigestMismatch = errors.New("package digest mismatch")

// DigestMismatchError reports the locked and observed digests.
type DigestMismatchError struct {
	Key      string
	Expected values.Digest
	Actual   values.Digest
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("%s: %s: expected %s, got %s", ErrDigestMismatch, e.Key, e.Expected, e.Actual)
}

// Is reports whether target is ErrDigestMismatch.
func (e *DigestMismatchError) Is(target error) bool {
	return target == ErrDigestMismatch
}

// IntegrityService re-downloads locked packages and checks their digests.
type IntegrityService struct {
	fetcher ports.PackageFetcher
	logger  *slog.Logger
}

// NewIntegrityService creates an integrity service.
func NewIntegrityService(fetcher ports.PackageFetcher, logger *slog.Logger) *IntegrityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityService{fetcher: fetcher, logger: logger}
}

// VerifyDigest fetches the package recorded under key and compares its
// digest with the locked one.
func (s *IntegrityService) VerifyDigest(ctx context.Context, key string, lock entities.ArtifactLock) error {
	expected, err := values.ParseDigest(lock.Digest)
	if err != nil {
		return fmt.Errorf("%s: locked digest: %w", key, err)
	}

	path, actual, err := s.fetcher.Fetch(ctx, lock.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	removeTemp(s.logger, path)

	if !actual.Equals(expected) {
		return &DigestMismatchError{Key: key, Expected: expected, Actual: actual}
	}
	s.logger.Info("digest verified", "artifact", key, "version", lock.Resolved)
	return nil
}

// VerifyLockfile checks every entry of lock in key order and returns one
// error per failing entry, keyed by artifact.
func (s *IntegrityService) VerifyLockfile(ctx context.Context, lock *entities.Lockfile) map[string]error {
	failures := make(map[string]error)
	for _, key := range lock.IDs() {
		if err := ctx.Err(); err != nil {
			failures[key] = err
			continue
		}
		entry := lock.GetArtifact(key)
		if err := s.VerifyDigest(ctx, key, *entry); err != nil {
			failures[key] = err
		}
	}
	return failures
}

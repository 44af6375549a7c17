package entities

import (
	"errors"
	"fmt"

	"github.com/reglet-dev/extcompat/artifact/values"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrNoCompatibleVersion is returned when a scan ends without an acceptance.
	ErrNoCompatibleVersion = errors.New("no compatible version found")

	// ErrCatalogUnavailable is returned when the registry query fails.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrPackageUnavailable is returned when a package cannot be fetched or read.
	ErrPackageUnavailable = errors.New("package unavailable")
)

// NoCompatibleVersionError carries the scan counters of an exhausted scan.
type NoCompatibleVersionError struct {
	ID    values.ArtifactID
	Stats ScanStats
}

func (e *NoCompatibleVersionError) Error() string {
	return fmt.Sprintf(
		"no compatible version of %s (checked %d, prerelease %d, engine mismatch %d, capability mismatch %d)",
		e.ID, e.Stats.Checked, e.Stats.Prerelease, e.Stats.EngineMismatch, e.Stats.CapabilityMismatch,
	)
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrNoCompatibleVersion)
func (e *NoCompatibleVersionError) Is(target error) bool {
	return target == ErrNoCompatibleVersion
}

// CatalogUnavailableError indicates the registry query for an artifact failed.
type CatalogUnavailableError struct {
	Err error
	ID  values.ArtifactID
}

func (e *CatalogUnavailableError) Error() string {
	return fmt.Sprintf("catalog for %s unavailable: %v", e.ID, e.Err)
}

// Is implements error matching for errors.Is() checks.
func (e *CatalogUnavailableError) Is(target error) bool {
	return target == ErrCatalogUnavailable
}

func (e *CatalogUnavailableError) Unwrap() error {
	return e.Err
}

// PackageError indicates a package could not be downloaded or its manifest
// could not be read.
type PackageError struct {
	Err error
	URL string
}

func (e *PackageError) Error() string {
	return fmt.Sprintf("package %s: %v", e.URL, e.Err)
}

// Is implements error matching for errors.Is() checks.
func (e *PackageError) Is(target error) bool {
	return target == ErrPackageUnavailable
}

func (e *PackageError) Unwrap() error {
	return e.Err
}

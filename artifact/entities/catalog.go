// Package entities holds the domain types of version resolution: the
// catalog returned by a registry, the outcome of a scan and the lockfile
// that pins a selection.
package entities

import (
	"github.com/reglet-dev/extcompat/artifact/values"
)

// VersionRecord is one published version of an artifact as reported by the
// registry.
type VersionRecord struct {
	Version           string
	EngineRequirement string // empty when the version declares none
	PackageURL        string // empty when no downloadable package is published
	Prerelease        bool
}

// HasEngine reports whether the record declares an engine requirement.
func (r VersionRecord) HasEngine() bool {
	return r.EngineRequirement != ""
}

// HasPackage reports whether the record references a downloadable package.
func (r VersionRecord) HasPackage() bool {
	return r.PackageURL != ""
}

// CatalogEntry is the ordered list of published versions for one artifact.
//
// Versions are kept in the order the registry returned them. That order is
// assumed to be descending by preference (newest first); it is never
// re-derived from version numbers.
type CatalogEntry struct {
	ID          values.ArtifactID
	DisplayName string
	Versions    []VersionRecord
}

// Len returns the number of versions.
func (c *CatalogEntry) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Versions)
}

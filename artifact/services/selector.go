// Package services holds the domain services of version resolution.
package services

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/ports"
	"github.com/reglet-dev/extcompat/capability"
)

// DefaultMaxVersions caps how many catalog records one scan visits.
const DefaultMaxVersions = 200

// Selector walks a catalog in registry order and returns the first version
// whose engine requirement and declared capabilities the host satisfies.
//
// Scanning is sequential: each probe downloads a package and its verdict
// decides whether scanning continues.
type Selector struct {
	fetcher     ports.PackageFetcher
	extractor   ports.ManifestExtractor
	engines     ports.EngineComparator
	logger      *slog.Logger
	maxVersions int
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithMaxVersions sets the scan cap. Values below one are ignored.
func WithMaxVersions(n int) SelectorOption {
	return func(s *Selector) {
		if n > 0 {
			s.maxVersions = n
		}
	}
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSelector creates a Selector.
func NewSelector(
	fetcher ports.PackageFetcher,
	extractor ports.ManifestExtractor,
	engines ports.EngineComparator,
	opts ...SelectorOption,
) *Selector {
	s := &Selector{
		fetcher:     fetcher,
		extractor:   extractor,
		engines:     engines,
		logger:      slog.Default(),
		maxVersions: DefaultMaxVersions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select scans entry and returns the outcome. Outcome.Selected is nil when
// the catalog or the scan cap is exhausted, or ctx is cancelled, without an
// acceptance. Every downloaded package is removed before Select moves on.
func (s *Selector) Select(
	ctx context.Context,
	entry *entities.CatalogEntry,
	hostVersion string,
	supported capability.Set,
) entities.Outcome {
	var out entities.Outcome
	if entry == nil {
		return out
	}

	for i, rec := range entry.Versions {
		if i >= s.maxVersions {
			s.logger.Info("scan cap reached", "max_versions", s.maxVersions)
			break
		}
		if err := ctx.Err(); err != nil {
			s.logger.Warn("scan cancelled", "error", err)
			break
		}

		out.Stats.Checked++
		log := s.logger.With("version", rec.Version)

		switch {
		case rec.Prerelease:
			log.Debug("skipping prerelease")
			out.Reject(entities.Rejection{Version: rec.Version, Reason: entities.ReasonPrerelease})
			continue
		case !rec.HasEngine():
			log.Debug("skipping version without engine requirement")
			out.Reject(entities.Rejection{Version: rec.Version, Reason: entities.ReasonNoEngine})
			continue
		case !s.engines.IsCompatible(hostVersion, rec.EngineRequirement):
			log.Debug("skipping engine mismatch", "engine", rec.EngineRequirement, "host", hostVersion)
			out.Reject(entities.Rejection{
				Version: rec.Version,
				Reason:  entities.ReasonEngineMismatch,
				Detail:  rec.EngineRequirement,
			})
			continue
		case !rec.HasPackage():
			log.Debug("skipping version without package")
			out.Reject(entities.Rejection{Version: rec.Version, Reason: entities.ReasonNoPackage})
			continue
		}

		sel, unsupported, err := s.probe(ctx, rec, supported)
		if err != nil {
			log.Warn("cannot probe package", "error", err)
			out.Reject(entities.Rejection{
				Version: rec.Version,
				Reason:  entities.ReasonFetchFailed,
				Detail:  err.Error(),
			})
			continue
		}
		if len(unsupported) > 0 {
			log.Debug("skipping capability mismatch", "unsupported", capability.Strings(unsupported))
			out.Reject(entities.Rejection{
				Version:     rec.Version,
				Reason:      entities.ReasonCapabilityMismatch,
				Unsupported: unsupported,
			})
			continue
		}

		log.Info("selected version", "engine", rec.EngineRequirement, "requirements", len(sel.Requirements))
		out.Selected = sel
		return out
	}

	return out
}

// probe downloads rec's package, reads its requirements and runs the gate.
// A nil selection with a non-empty unsupported list is a capability mismatch.
func (s *Selector) probe(
	ctx context.Context,
	rec entities.VersionRecord,
	supported capability.Set,
) (*entities.Selection, []capability.Requirement, error) {
	path, digest, err := s.fetcher.Fetch(ctx, rec.PackageURL)
	if path != "" {
		defer removeTemp(s.logger, path)
	}
	if err != nil {
		return nil, nil, err
	}

	reqs, err := s.extractor.Extract(path)
	if err != nil {
		return nil, nil, err
	}

	if ok, unsupported := capability.Check(reqs, supported); !ok {
		return nil, unsupported, nil
	}

	return &entities.Selection{Record: rec, Requirements: reqs, Digest: digest}, nil, nil
}

func removeTemp(logger *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("cannot remove temporary package", "path", path, "error", err)
	}
}

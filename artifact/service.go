// Package artifact resolves, for a host runtime, the newest published
// version of an artifact whose engine and capability requirements the host
// satisfies, and pins the result in a lockfile.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/ports"
	"github.com/reglet-dev/extcompat/artifact/services"
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/capability/detect"
	"github.com/reglet-dev/extcompat/netutil"
)

// CapabilityDetector produces the host's supported capability set.
type CapabilityDetector interface {
	Detect(ctx context.Context) detect.Result
}

// Resolution is the result of resolving one artifact for one host.
type Resolution struct {
	ID           values.ArtifactID
	HostVersion  string
	Capabilities detect.Result
	Outcome      entities.Outcome
}

// ResolveService orchestrates detection, catalog query and version
// selection. The supported capability set is detected once per service and
// reused for every artifact it resolves.
type ResolveService struct {
	catalog   ports.CatalogClient
	selector  *services.Selector
	detector  CapabilityDetector
	lockfiles ports.LockfileRepository
	logger    *slog.Logger
	now       func() time.Time

	detectOnce sync.Once
	detected   detect.Result
}

// ResolveServiceOption configures a ResolveService.
type ResolveServiceOption func(*ResolveService)

// WithLockfileRepository sets the repository used by Lock.
func WithLockfileRepository(repo ports.LockfileRepository) ResolveServiceOption {
	return func(s *ResolveService) { s.lockfiles = repo }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolveServiceOption {
	return func(s *ResolveService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for lockfile timestamps.
func WithClock(now func() time.Time) ResolveServiceOption {
	return func(s *ResolveService) { s.now = now }
}

// NewResolveService creates a resolve service. Catalog, selector and
// detector are required.
func NewResolveService(
	catalog ports.CatalogClient,
	selector *services.Selector,
	detector CapabilityDetector,
	opts ...ResolveServiceOption,
) *ResolveService {
	s := &ResolveService{
		catalog:  catalog,
		selector: selector,
		detector: detector,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capabilities returns the detected capability set, detecting on first use.
func (s *ResolveService) Capabilities(ctx context.Context) detect.Result {
	s.detectOnce.Do(func() {
		s.detected = s.detector.Detect(ctx)
	})
	return s.detected
}

// Resolve finds the version of id to use on a host running hostVersion.
//
// A failed catalog query returns an error matching
// entities.ErrCatalogUnavailable. An exhausted scan returns the Resolution
// together with an error matching entities.ErrNoCompatibleVersion, so the
// caller can report the counters.
func (s *ResolveService) Resolve(ctx context.Context, id values.ArtifactID, hostVersion string) (*Resolution, error) {
	caps := s.Capabilities(ctx)

	entry, err := s.catalog.Query(ctx, id)
	if err != nil {
		if !errors.Is(err, entities.ErrCatalogUnavailable) {
			err = &entities.CatalogUnavailableError{ID: id, Err: err}
		}
		return nil, err
	}

	res := &Resolution{
		ID:           id,
		HostVersion:  hostVersion,
		Capabilities: caps,
		Outcome:      s.selector.Select(ctx, entry, hostVersion, caps.Set),
	}

	if res.Outcome.Accepted() {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("resolving %s: %w", id, err)
	}

	s.logger.Warn("no compatible version",
		"artifact", id.String(),
		"checked", res.Outcome.Stats.Checked,
		"prerelease", res.Outcome.Stats.Prerelease,
		"engine_mismatch", res.Outcome.Stats.EngineMismatch,
		"capability_mismatch", res.Outcome.Stats.CapabilityMismatch,
	)
	return res, &entities.NoCompatibleVersionError{ID: id, Stats: res.Outcome.Stats}
}

// ResolveAll resolves each id in order and stops at the first error.
func (s *ResolveService) ResolveAll(ctx context.Context, ids []values.ArtifactID, hostVersion string) ([]*Resolution, error) {
	out := make([]*Resolution, 0, len(ids))
	for _, id := range ids {
		res, err := s.Resolve(ctx, id, hostVersion)
		if res != nil {
			out = append(out, res)
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// Lock records accepted resolutions in the lockfile at path, keeping
// entries for other artifacts.
func (s *ResolveService) Lock(ctx context.Context, path string, resolutions ...*Resolution) error {
	if s.lockfiles == nil {
		return errors.New("no lockfile repository configured")
	}

	lock, err := s.lockfiles.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("loading lockfile: %w", err)
	}
	if lock == nil {
		lock = entities.NewLockfile()
	}

	now := s.now().UTC()
	for _, res := range resolutions {
		if res == nil || !res.Outcome.Accepted() {
			continue
		}
		sel := res.Outcome.Selected
		err := lock.AddArtifact(res.ID.Key(), entities.ArtifactLock{
			Fetched:          now,
			Requested:        res.ID.String(),
			Resolved:         sel.Record.Version,
			Source:           netutil.Redact(sel.Record.PackageURL),
			Engine:           sel.Record.EngineRequirement,
			HostVersion:      res.HostVersion,
			CapabilitySource: string(res.Capabilities.Source),
			Digest:           sel.Digest.String(),
			Requirements:     capability.Strings(sel.Requirements),
		})
		if err != nil {
			return fmt.Errorf("locking %s: %w", res.ID, err)
		}
	}
	lock.Generated = now

	if err := s.lockfiles.Save(ctx, lock, path); err != nil {
		return fmt.Errorf("saving lockfile: %w", err)
	}
	s.logger.Info("lockfile written", "path", path, "artifacts", lock.ArtifactCount())
	return nil
}

package detect

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/capability/sources"
)

// Result is the supported-capability set for one run and where it came from.
type Result struct {
	Set    capability.Set
	Source Source
	Path   string
}

// Permissive reports whether no evidence was found.
func (r Result) Permissive() bool {
	return r.Set.IsEmpty()
}

// Detector runs the detection chain and applies the permissive fallback.
type Detector struct {
	chain  Strategy
	logger *slog.Logger
}

// Option configures a Detector.
type Option func(*detectorConfig)

type detectorConfig struct {
	threshold         int
	usePermissionList bool
	logger            *slog.Logger
	strategies        []Strategy
}

// WithNoiseThreshold overrides the bundle noise threshold.
func WithNoiseThreshold(n int) Option {
	return func(c *detectorConfig) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithPermissionList enables or disables the permission-list fallback.
func WithPermissionList(enabled bool) Option {
	return func(c *detectorConfig) { c.usePermissionList = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *detectorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrategies replaces the default chain. Called with no strategies it
// leaves the default chain in place.
func WithStrategies(strategies ...Strategy) Option {
	return func(c *detectorConfig) {
		if len(strategies) > 0 {
			c.strategies = strategies
		}
	}
}

// NewDetector builds the default chain over paths: declaration tables, then
// bundles, then permission lists.
func NewDetector(paths Paths, opts ...Option) *Detector {
	cfg := detectorConfig{
		threshold:         sources.DefaultNoiseThreshold,
		usePermissionList: true,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	strategies := cfg.strategies
	if len(strategies) == 0 {
		strategies = defaultStrategies(paths, cfg)
	}
	return &Detector{chain: link(strategies), logger: cfg.logger}
}

func defaultStrategies(paths Paths, cfg detectorConfig) []Strategy {
	strategies := []Strategy{
		NewDeclarationStrategy(paths, cfg.logger),
		NewBundleStrategy(paths, cfg.threshold, cfg.logger),
	}
	if cfg.usePermissionList {
		strategies = append(strategies, NewPermissionListStrategy(paths, cfg.logger))
	}
	return strategies
}

// Detect returns the supported set. It never fails: any error, including
// ErrNoEvidence and cancellation, yields the permissive empty set.
func (d *Detector) Detect(ctx context.Context) Result {
	evidence, err := d.chain.Detect(ctx)
	if err != nil {
		if errors.Is(err, ErrNoEvidence) {
			d.logger.Warn("no capability evidence found, all requirements will be treated as supported")
		} else {
			d.logger.Warn("capability detection failed, falling back to permissive mode", "error", err)
		}
		return Result{Set: capability.Empty(), Source: SourceNone}
	}

	d.logger.Info("detected supported capabilities",
		"source", evidence.Source, "path", evidence.Path, "count", evidence.Set.Len())
	if evidence.Source == SourcePermissionList {
		d.logger.Warn("using permission list as capability evidence; it lists permitted, not implemented, capabilities",
			"path", evidence.Path)
	}

	return Result{Set: evidence.Set, Source: evidence.Source, Path: evidence.Path}
}

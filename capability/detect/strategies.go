package detect

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reglet-dev/extcompat/capability/sources"
)

// fileStrategy tries a reader over an ordered candidate list.
type fileStrategy struct {
	BaseStrategy
	source     Source
	reader     sources.Reader
	candidates func() []string
	logger     *slog.Logger
}

func (s *fileStrategy) Detect(ctx context.Context) (*Evidence, error) {
	for _, path := range s.candidates() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		set, err := s.reader.Read(path)
		if err != nil {
			var below *sources.BelowThresholdError
			if errors.As(err, &below) {
				s.logger.Warn("ignoring capability source below noise threshold",
					"source", s.source, "path", path, "found", below.Found, "threshold", below.Threshold)
			} else {
				s.logger.Debug("capability source not usable", "source", s.source, "path", path, "error", err)
			}
			continue
		}

		return &Evidence{Set: set, Source: s.source, Path: path}, nil
	}

	return s.DetectNext(ctx)
}

// NewDeclarationStrategy reads standalone declaration tables: the explicit
// list first, then any found beneath the install roots.
func NewDeclarationStrategy(paths Paths, logger *slog.Logger) Strategy {
	return &fileStrategy{
		source: SourceDeclaration,
		reader: sources.NewDeclarationReader(),
		candidates: func() []string {
			return appendUnique(paths.DeclarationFiles, discover(logger, paths.InstallRoots, DeclarationPatterns))
		},
		logger: logger,
	}
}

// NewBundleStrategy scans bundle files with the given noise threshold.
func NewBundleStrategy(paths Paths, threshold int, logger *slog.Logger) Strategy {
	return &fileStrategy{
		source: SourceBundle,
		reader: sources.NewBundleReader(threshold),
		candidates: func() []string {
			return appendUnique(paths.BundleFiles, discover(logger, paths.InstallRoots, BundlePatterns))
		},
		logger: logger,
	}
}

// NewPermissionListStrategy reads product configuration allow-lists.
func NewPermissionListStrategy(paths Paths, logger *slog.Logger) Strategy {
	return &fileStrategy{
		source:     SourcePermissionList,
		reader:     sources.NewPermissionListReader(),
		candidates: func() []string { return paths.PermissionLists },
		logger:     logger,
	}
}

func appendUnique(first, second []string) []string {
	out := make([]string, 0, len(first)+len(second))
	seen := make(map[string]struct{}, len(first)+len(second))
	for _, list := range [][]string{first, second} {
		for _, p := range list {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

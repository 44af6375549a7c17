package detect

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// discover returns files under roots matching any of patterns, sorted per
// root. Unreadable roots are skipped.
func discover(logger *slog.Logger, roots, patterns []string) []string {
	var found []string
	seen := make(map[string]struct{})

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			logger.Debug("skipping install root", "root", root, "error", err)
			continue
		}

		fsys := os.DirFS(root)
		var matches []string
		for _, pattern := range patterns {
			m, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				logger.Debug("install root search failed", "root", root, "pattern", pattern, "error", err)
				continue
			}
			matches = append(matches, m...)
		}
		sort.Strings(matches)

		for _, m := range matches {
			path := filepath.Join(root, filepath.FromSlash(m))
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			found = append(found, path)
		}
	}
	return found
}

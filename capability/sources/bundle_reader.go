package sources

import (
	"fmt"
	"os"

	"github.com/reglet-dev/extcompat/capability"
)

// BundleReader scans a large concatenated build artifact for an embedded
// declaration table. Unrelated code can collide with the pattern, so results
// under Threshold distinct names are rejected rather than trusted.
type BundleReader struct {
	// Threshold is the minimum distinct-name count. Default: DefaultNoiseThreshold if zero.
	Threshold int
}

// NewBundleReader creates a BundleReader with the given threshold.
func NewBundleReader(threshold int) *BundleReader {
	return &BundleReader{Threshold: threshold}
}

// Read returns the embedded names or ErrNotUsable.
func (r *BundleReader) Read(path string) (capability.Set, error) {
	threshold := r.Threshold
	if threshold <= 0 {
		threshold = DefaultNoiseThreshold
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return capability.Set{}, fmt.Errorf("%w: reading %s: %v", ErrNotUsable, path, err)
	}

	set := ExtractDeclarations(content)
	if set.Len() < threshold {
		return capability.Set{}, &BelowThresholdError{Path: path, Found: set.Len(), Threshold: threshold}
	}
	return set, nil
}

// BelowThresholdError reports a bundle whose match count is indistinguishable
// from accidental collisions.
type BelowThresholdError struct {
	Path      string
	Found     int
	Threshold int
}

func (e *BelowThresholdError) Error() string {
	return fmt.Sprintf("capability source not usable: %s yielded %d declarations, need at least %d",
		e.Path, e.Found, e.Threshold)
}

// Is allows errors.Is(err, ErrNotUsable).
func (e *BelowThresholdError) Is(target error) bool {
	return target == ErrNotUsable
}

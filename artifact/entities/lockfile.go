package entities

import (
	"fmt"
	"sort"
	"time"
)

// Lockfile is an aggregate root pinning resolved artifact versions so the
// same host gets the same package on the next run.
//
// Invariants:
// - Each artifact entry must have a resolved version and a digest
// - Generated timestamp must be set once entries exist
type Lockfile struct {
	Generated time.Time
	Artifacts map[string]ArtifactLock
	Version   int
}

// ArtifactLock is a value object representing a pinned artifact version.
// Immutable after creation.
type ArtifactLock struct {
	Fetched          time.Time
	Requested        string // artifact id as given by the user
	Resolved         string // selected version
	Source           string // package URL, credentials stripped
	Engine           string // engine requirement of the selected version
	HostVersion      string
	CapabilitySource string // which evidence source produced the supported set
	Digest           string // sha256:...
	Requirements     []string
}

// NewLockfile creates a new lockfile with the current version.
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:   1,
		Generated: time.Now().UTC(),
		Artifacts: make(map[string]ArtifactLock),
	}
}

// AddArtifact adds or replaces an artifact lock entry keyed by id.
func (l *Lockfile) AddArtifact(id string, lock ArtifactLock) error {
	if err := lock.validate(id); err != nil {
		return err
	}
	if l.Artifacts == nil {
		l.Artifacts = make(map[string]ArtifactLock)
	}
	l.Artifacts[id] = lock
	return nil
}

// GetArtifact retrieves an artifact lock entry by id.
// Returns nil if not found.
func (l *Lockfile) GetArtifact(id string) *ArtifactLock {
	if l.Artifacts == nil {
		return nil
	}
	if lock, ok := l.Artifacts[id]; ok {
		return &lock
	}
	return nil
}

// IDs returns the locked artifact ids in sorted order.
func (l *Lockfile) IDs() []string {
	ids := make([]string, 0, len(l.Artifacts))
	for id := range l.Artifacts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ArtifactCount returns the number of locked artifacts.
func (l *Lockfile) ArtifactCount() int {
	return len(l.Artifacts)
}

// Validate checks lockfile invariants.
func (l *Lockfile) Validate() error {
	if l.ArtifactCount() > 0 && l.Generated.IsZero() {
		return fmt.Errorf("generated timestamp is required")
	}
	for _, id := range l.IDs() {
		lock := l.Artifacts[id]
		if err := lock.validate(id); err != nil {
			return err
		}
	}
	return nil
}

func (a ArtifactLock) validate(id string) error {
	if a.Resolved == "" {
		return fmt.Errorf("artifact %q: resolved version is required", id)
	}
	if a.Digest == "" {
		return fmt.Errorf("artifact %q: digest is required", id)
	}
	return nil
}

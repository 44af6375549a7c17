package filesystem

import (
	"time"

	"github.com/reglet-dev/extcompat/artifact/entities"
)

// Lockfile represents the YAML structure of a lockfile.
type Lockfile struct {
	Generated time.Time               `yaml:"generated"`
	Artifacts map[string]ArtifactLock `yaml:"artifacts"`
	Version   int                     `yaml:"lockfile_version"`
}

// ArtifactLock represents a pinned artifact version in YAML.
type ArtifactLock struct {
	Fetched          time.Time `yaml:"fetched,omitempty"`
	Requested        string    `yaml:"requested"`
	Resolved         string    `yaml:"resolved"`
	Source           string    `yaml:"source"`
	Engine           string    `yaml:"engine,omitempty"`
	HostVersion      string    `yaml:"host_version,omitempty"`
	CapabilitySource string    `yaml:"capability_source,omitempty"`
	Digest           string    `yaml:"sha256"`
	Requirements     []string  `yaml:"requirements,omitempty"`
}

// ToEntity converts the lockfile to a domain entity.
func (l *Lockfile) ToEntity() *entities.Lockfile {
	entity := &entities.Lockfile{
		Generated: l.Generated,
		Version:   l.Version,
		Artifacts: make(map[string]entities.ArtifactLock, len(l.Artifacts)),
	}
	for id, lock := range l.Artifacts {
		entity.Artifacts[id] = entities.ArtifactLock(lock)
	}
	return entity
}

// FromEntity converts a domain lockfile to YAML representation.
func FromEntity(entity *entities.Lockfile) *Lockfile {
	if entity == nil {
		return nil
	}
	l := &Lockfile{
		Generated: entity.Generated,
		Version:   entity.Version,
		Artifacts: make(map[string]ArtifactLock, len(entity.Artifacts)),
	}
	for id, lock := range entity.Artifacts {
		l.Artifacts[id] = ArtifactLock(lock)
	}
	return l
}

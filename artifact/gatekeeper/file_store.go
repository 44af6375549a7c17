package gatekeeper

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Approvals is the set of artifact keys approved for locking without
// capability evidence.
type Approvals struct {
	Artifacts []string `yaml:"artifacts"`
}

// Contains reports whether key was approved.
func (a *Approvals) Contains(key string) bool {
	return a != nil && slices.Contains(a.Artifacts, key)
}

// Add records key, keeping the list sorted and unique.
func (a *Approvals) Add(key string) {
	if a.Contains(key) {
		return
	}
	a.Artifacts = append(a.Artifacts, key)
	slices.Sort(a.Artifacts)
}

type fileStoreConfig struct {
	path     string
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func defaultFileStoreConfig() fileStoreConfig {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return fileStoreConfig{
		path:     filepath.Join(dir, "extcompat", "approvals.yaml"),
		dirPerm:  0o755,
		filePerm: 0o600,
	}
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the approvals file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		if path != "" {
			c.path = path
		}
	}
}

// WithFilePermissions sets the approvals file mode.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// FileStore keeps approvals in a YAML file.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a FileStore.
func NewFileStore(opts ...FileStoreOption) *FileStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load reads the approvals. A missing file yields an empty set.
func (s *FileStore) Load() (*Approvals, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		return &Approvals{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read approvals: %w", err)
	}

	var a Approvals
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse approvals: %w", err)
	}
	return &a, nil
}

// Save writes the approvals.
func (s *FileStore) Save(a *Approvals) error {
	if a == nil {
		a = &Approvals{}
	}

	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal approvals: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.config.path), s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create approvals directory: %w", err)
	}
	if err := os.WriteFile(s.config.path, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write approvals: %w", err)
	}
	return nil
}

// Path returns the approvals file path.
func (s *FileStore) Path() string {
	return s.config.path
}

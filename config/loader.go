package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/extcompat/schema"
)

// Loader reads and merges configuration layers.
type Loader struct {
	schemas  *schema.Registry
	logger   *slog.Logger
	userPath string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithUserConfigPath overrides the per-user configuration file. An empty
// path disables the user layer.
func WithUserConfigPath(path string) LoaderOption {
	return func(l *Loader) { l.userPath = path }
}

// WithSchemas sets the schema registry. The config kind is registered if
// missing.
func WithSchemas(r *schema.Registry) LoaderOption {
	return func(l *Loader) {
		if r != nil {
			l.schemas = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		logger:   slog.Default(),
		userPath: DefaultUserConfigPath(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.schemas == nil {
		l.schemas = schema.NewRegistry()
	}
	if _, ok := l.schemas.GetSchema(SchemaKind); !ok {
		l.schemas.MustRegister(SchemaKind, Config{})
	}
	return l
}

// Load returns the defaults overlaid with the user file, if present, and
// then explicitPath, which must exist when set.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	cfg := Default()

	if l.userPath != "" {
		if err := l.merge(cfg, l.userPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if explicitPath != "" {
		if err := l.merge(cfg, explicitPath); err != nil {
			return nil, err
		}
	}

	if err := l.schemas.Validate(SchemaKind, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) merge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		l.logger.Debug("empty config file", "path", path)
		return nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := l.schemas.Validate(SchemaKind, raw); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	l.logger.Debug("loaded config layer", "path", path)
	return nil
}

// Schema returns the JSON schema for configuration files.
func (l *Loader) Schema() string {
	s, _ := l.schemas.GetSchema(SchemaKind)
	return s
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

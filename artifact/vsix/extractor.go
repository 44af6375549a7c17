// Package vsix reads the capability requirements a packaged extension
// declares in its manifest.
package vsix

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/netutil"
	"github.com/reglet-dev/extcompat/parser"
	"github.com/reglet-dev/extcompat/schema"
)

// Manifest locations inside a package, in lookup order.
const (
	ManifestPath         = "extension/package.json"
	FallbackManifestPath = "package.json"
)

// ManifestSchemaKind is the schema registry kind used for manifests.
const ManifestSchemaKind = "package-manifest"

// ManifestSchema constrains only the keys the resolver reads; manifests
// carry many more.
const ManifestSchema = `{
  "type": "object",
  "properties": {
    "enabledApiProposals": {
      "type": "array",
      "items": {"type": "string"}
    },
    "engines": {
      "type": "object",
      "properties": {"vscode": {"type": "string"}}
    }
  }
}`

const maxManifestBytes = 8 << 20

// ErrNoManifest is returned when a package contains neither manifest path.
var ErrNoManifest = errors.New("package has no manifest")

// Extractor implements ports.ManifestExtractor.
type Extractor struct {
	parser  parser.ManifestParser
	schemas *schema.Registry
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSchemas validates every manifest against ManifestSchemaKind in r.
// The kind is registered if missing.
func WithSchemas(r *schema.Registry) Option {
	return func(e *Extractor) {
		if r == nil {
			return
		}
		if _, ok := r.GetSchema(ManifestSchemaKind); !ok {
			_ = r.Register(ManifestSchemaKind, ManifestSchema)
		}
		e.schemas = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor using the JSON manifest parser.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		parser: parser.NewJSONManifestParser(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract opens the package at path and returns its declared requirements
// in declaration order. A manifest without the key yields an empty list.
func (e *Extractor) Extract(path string) ([]capability.Requirement, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening package %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	data, name, err := readManifest(zr)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", path, err)
	}

	if e.schemas != nil {
		if err := e.schemas.ValidateJSON(ManifestSchemaKind, data); err != nil {
			return nil, fmt.Errorf("package %s: %w", path, err)
		}
	}

	manifest, err := e.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", path, err)
	}

	reqs, err := capability.ParseRequirements(manifest.EnabledAPIProposals)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", path, err)
	}

	e.logger.Debug("read package manifest",
		"path", path,
		"manifest", name,
		"version", manifest.Version,
		"requirements", len(reqs),
	)
	return reqs, nil
}

// readManifest returns the first manifest found, trying ManifestPath then
// FallbackManifestPath.
func readManifest(zr *zip.ReadCloser) ([]byte, string, error) {
	for _, name := range []string{ManifestPath, FallbackManifestPath} {
		f, err := zr.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, name, fmt.Errorf("opening %s: %w", name, err)
		}
		data, err := io.ReadAll(netutil.NewLimitedReader(f, maxManifestBytes))
		_ = f.Close()
		if err != nil {
			return nil, name, fmt.Errorf("reading %s: %w", name, err)
		}
		return parser.TrimBOM(data), name, nil
	}
	return nil, "", ErrNoManifest
}

package artifact

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/reglet-dev/extcompat/artifact/entities"
	"github.com/reglet-dev/extcompat/artifact/values"
	"github.com/reglet-dev/extcompat/capability"
	"github.com/reglet-dev/extcompat/capability/detect"
)

// MockDetector implements CapabilityDetector
type MockDetector struct {
	Result detect.Result
	Calls  int
}

func (m *MockDetector) Detect(ctx context.Context) detect.Result {
	m.Calls++
	return m.Result
}

// MockCatalog implements ports.CatalogClient
type MockCatalog struct {
	Entry *entities.CatalogEntry
	Err   error
	Calls int
}

func (m *MockCatalog) Query(ctx context.Context, id values.ArtifactID) (*entities.CatalogEntry, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entry, nil
}

// MockFetcher implements ports.PackageFetcher by writing Packages[url] to a
// real temporary file in Dir, so callers' cleanup can be observed.
// The file content is read back by MockExtractor.
type MockFetcher struct {
	Packages map[string]string
	Errs     map[string]error
	Dir      string

	mu      sync.Mutex
	Fetched []string
	Paths   []string
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (string, values.Digest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Fetched = append(m.Fetched, url)
	if err := m.Errs[url]; err != nil {
		return "", values.Digest{}, err
	}
	content, ok := m.Packages[url]
	if !ok {
		return "", values.Digest{}, errors.New("mock: unknown package " + url)
	}

	f, err := os.CreateTemp(m.Dir, "pkg-*.vsix")
	if err != nil {
		return "", values.Digest{}, err
	}
	defer func() { _ = f.Close() }()

	w := values.NewDigestWriter()
	if _, err := io.Copy(io.MultiWriter(f, w), strings.NewReader(content)); err != nil {
		return "", values.Digest{}, err
	}
	m.Paths = append(m.Paths, f.Name())
	return f.Name(), w.Digest(), nil
}

// Remaining returns the fetched paths that still exist on disk.
func (m *MockFetcher) Remaining() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, p := range m.Paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// CorruptPackage is package content MockExtractor refuses to read.
const CorruptPackage = "<corrupt>"

// MockExtractor implements ports.ManifestExtractor. It reads the file as a
// comma-separated requirement list.
type MockExtractor struct{}

func (MockExtractor) Extract(path string) ([]capability.Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if string(data) == CorruptPackage {
		return nil, errors.New("mock: corrupt package")
	}
	return capability.ParseRequirements(strings.Split(string(data), ","))
}

// MockLockfileRepository implements ports.LockfileRepository in memory.
type MockLockfileRepository struct {
	Lockfiles map[string]*entities.Lockfile
	SaveErr   error
	LoadErr   error
}

func (m *MockLockfileRepository) Load(ctx context.Context, path string) (*entities.Lockfile, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Lockfiles[path], nil
}

func (m *MockLockfileRepository) Save(ctx context.Context, lockfile *entities.Lockfile, path string) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.Lockfiles == nil {
		m.Lockfiles = make(map[string]*entities.Lockfile)
	}
	m.Lockfiles[path] = lockfile
	return nil
}

func (m *MockLockfileRepository) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.Lockfiles[path]
	return ok, nil
}

func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

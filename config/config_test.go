package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reglet-dev/extcompat/artifact"
	"github.com/reglet-dev/extcompat/artifact/marketplace"
	"github.com/reglet-dev/extcompat/config"
	"github.com/reglet-dev/extcompat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loader(userPath string) *config.Loader {
	return config.NewLoader(
		config.WithUserConfigPath(userPath),
		config.WithLogger(artifact.NewTestLogger()),
	)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := loader(filepath.Join(t.TempDir(), "missing.yaml")).Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, marketplace.DefaultURL, cfg.Registry.URL)
	assert.Equal(t, 200, cfg.Selector.MaxVersions)
	assert.Equal(t, 20, cfg.Detection.NoiseThreshold)
	assert.Equal(t, "codium", cfg.Host.Binary)
	assert.Zero(t, cfg.CacheTTL())
}

func TestLoad_Layers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	user := write(t, dir, "user.yaml", `
registry:
  cache_ttl_seconds: 300
selector:
  max_versions: 50
detection:
  noise_threshold: 5
  install_roots: [/opt/user]
`)
	explicit := write(t, dir, "explicit.yaml", `
detection:
  install_roots: [/opt/explicit]
  use_permission_list: false
lockfile:
  security_level: strict
`)

	cfg, err := loader(user).Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Selector.MaxVersions)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 5, cfg.Detection.NoiseThreshold)
	assert.Equal(t, []string{"/opt/explicit"}, cfg.Detection.InstallRoots)
	assert.False(t, cfg.Detection.UsePermissionList)
	assert.Equal(t, "strict", cfg.Lockfile.SecurityLevel)
	assert.Equal(t, "extcompat.lock", cfg.Lockfile.Path)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "unknown key", content: "selector:\n  max_version: 5\n", wantMsg: "selector"},
		{name: "wrong type", content: "selector:\n  max_versions: many\n", wantMsg: "max_versions"},
		{name: "below minimum", content: "selector:\n  max_versions: 0\n", wantMsg: "max_versions"},
		{name: "bad enum", content: "lockfile:\n  security_level: paranoid\n", wantMsg: "security_level"},
		{name: "plain http registry", content: "registry:\n  url: http://gallery.test/query\n", wantMsg: "https"},
		{name: "malformed yaml", content: "selector: [\n", wantMsg: "explicit.yaml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := write(t, t.TempDir(), "explicit.yaml", tc.content)
			_, err := loader("").Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestLoad_ExplicitMustExist(t *testing.T) {
	t.Parallel()

	_, err := loader("").Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	path := write(t, t.TempDir(), "empty.yaml", "\n")
	cfg, err := loader("").Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestDetectionPaths(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Detection.UseDefaultPaths = false
	cfg.Detection.InstallRoots = []string{"/opt/b"}
	cfg.Detection.DeclarationFiles = []string{"/x/decl.js"}

	p := cfg.DetectionPaths("/opt/a")
	assert.Equal(t, []string{"/opt/a", "/opt/b"}, p.InstallRoots)
	require.Len(t, p.DeclarationFiles, 3)
	assert.Equal(t, filepath.Join("/opt/a", "out/vs/workbench/api/common/extensionApiProposals.js"), p.DeclarationFiles[0])
	assert.Equal(t, "/x/decl.js", p.DeclarationFiles[2])
	assert.Equal(t, []string{filepath.Join("/opt/a", "product.json"), filepath.Join("/opt/b", "product.json")}, p.PermissionLists)

	cfg.Detection.UseDefaultPaths = true
	assert.Greater(t, len(cfg.DetectionPaths().BundleFiles), 0)
}

func TestSchemaShared(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry()
	l := config.NewLoader(config.WithSchemas(reg), config.WithUserConfigPath(""))
	assert.Contains(t, reg.List(), config.SchemaKind)
	assert.Contains(t, l.Schema(), "max_versions")

	out, err := config.Marshal(config.Default())
	require.NoError(t, err)
	assert.Contains(t, string(out), "noise_threshold: 20")
}

func TestValidate_LoopbackHTTP(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Registry.URL = "http://127.0.0.1:8080/query"
	assert.NoError(t, cfg.Validate())

	cfg.Registry.URL = "http://localhost/query"
	assert.NoError(t, cfg.Validate())

	cfg.Registry.URL = "ftp://gallery.test/"
	assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
}

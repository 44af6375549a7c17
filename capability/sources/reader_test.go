package sources_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/extcompat/capability/sources"
	"github.com/reglet-dev/extcompat/capability/sources/sourcestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExtractDeclarations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "formatted", content: sourcestest.Formatted(sourcestest.CoreNames...)},
		{name: "minified bare keys", content: sourcestest.Minified(false, sourcestest.CoreNames...)},
		{name: "minified quoted keys", content: sourcestest.Minified(true, sourcestest.CoreNames...)},
		{name: "single quoted keys", content: `x={'chatHooks':{version:6},'findFiles2': { version: 2 }}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := sources.ExtractDeclarations([]byte(tc.content))
			assert.True(t, set.Contains("chatHooks"))
			assert.True(t, set.Contains("findFiles2"))
			for _, token := range []string{"version", "proposal", "value", "exports", "default"} {
				assert.False(t, set.Contains(capabilityName(token)), token)
			}
		})
	}
}

func TestExtractDeclarations_DenylistedKeyShapes(t *testing.T) {
	t.Parallel()

	set := sources.ExtractDeclarations([]byte(`a={version:{version:1},default:{ version: 2 },real:{version:3}}`))
	assert.Equal(t, []string{"real"}, set.Names())
}

func TestDeclarationReader(t *testing.T) {
	t.Parallel()

	r := sources.NewDeclarationReader()

	t.Run("formatted file", func(t *testing.T) {
		path := writeFile(t, "extensionApiProposals.js", sourcestest.Formatted(sourcestest.CoreNames...))
		set, err := r.Read(path)
		require.NoError(t, err)
		assert.Equal(t, len(sourcestest.CoreNames), set.Len())
		assert.True(t, set.Contains("chatHooks"))
	})

	t.Run("single declaration is enough", func(t *testing.T) {
		path := writeFile(t, "one.js", `const p = {chatHooks: {version: 6}}`)
		set, err := r.Read(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"chatHooks"}, set.Names())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.Read(filepath.Join(t.TempDir(), "missing.js"))
		assert.True(t, errors.Is(err, sources.ErrNotUsable))
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := r.Read(writeFile(t, "empty.js", ""))
		assert.True(t, errors.Is(err, sources.ErrNotUsable))
	})
}

func TestBundleReader(t *testing.T) {
	t.Parallel()

	r := sources.NewBundleReader(sources.DefaultNoiseThreshold)

	t.Run("at threshold", func(t *testing.T) {
		path := writeFile(t, "workbench.desktop.main.js", sourcestest.Minified(false, sourcestest.BundleNames(20)...))
		set, err := r.Read(path)
		require.NoError(t, err)
		assert.Equal(t, 20, set.Len())
	})

	t.Run("quoted keys above threshold", func(t *testing.T) {
		path := writeFile(t, "workbench.desktop.main.js", sourcestest.Minified(true, sourcestest.BundleNames(25)...))
		set, err := r.Read(path)
		require.NoError(t, err)
		assert.Equal(t, 25, set.Len())
		assert.True(t, set.Contains("chatHooks"))
	})

	t.Run("below threshold is noise", func(t *testing.T) {
		path := writeFile(t, "workbench.desktop.main.js", sourcestest.Minified(false, sourcestest.BundleNames(19)...))
		_, err := r.Read(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, sources.ErrNotUsable))

		var below *sources.BelowThresholdError
		require.True(t, errors.As(err, &below))
		assert.Equal(t, 19, below.Found)
		assert.Equal(t, 20, below.Threshold)
	})

	t.Run("duplicates do not count", func(t *testing.T) {
		names := append(sourcestest.BundleNames(10), sourcestest.BundleNames(10)...)
		path := writeFile(t, "dup.js", sourcestest.Minified(false, names...))
		_, err := r.Read(path)
		assert.True(t, errors.Is(err, sources.ErrNotUsable))
	})

	t.Run("overridable threshold", func(t *testing.T) {
		path := writeFile(t, "small.js", sourcestest.Minified(false, "chatHooks", "findFiles2"))
		set, err := sources.NewBundleReader(2).Read(path)
		require.NoError(t, err)
		assert.Equal(t, 2, set.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.Read(filepath.Join(t.TempDir(), "nope.js"))
		assert.True(t, errors.Is(err, sources.ErrNotUsable))
	})
}

func TestPermissionListReader(t *testing.T) {
	t.Parallel()

	r := sources.NewPermissionListReader()

	t.Run("unions base names", func(t *testing.T) {
		path := writeFile(t, "product.json", sourcestest.Product(map[string][]string{
			"ms-python.python":    {"terminalShellIntegration@1", "portsAttributes"},
			"GitHub.copilot-chat": {"chatProvider@2", "portsAttributes@3"},
		}))
		set, err := r.Read(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"chatProvider", "portsAttributes", "terminalShellIntegration"}, set.Names())
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := r.Read(writeFile(t, "product.json", "{"))
		assert.True(t, errors.Is(err, sources.ErrNotUsable))
	})

	t.Run("no allow-list", func(t *testing.T) {
		_, err := r.Read(writeFile(t, "product.json", `{"nameShort":"VSCodium"}`))
		assert.True(t, errors.Is(err, sources.ErrNotUsable))
	})
}

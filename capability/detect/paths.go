package detect

import (
	"path/filepath"
)

const (
	declarationRelPath = "out/vs/workbench/api/common/extensionApiProposals.js"
	bundleRelPath      = "out/vs/workbench/workbench.desktop.main.js"
	productRelPath     = "product.json"
)

// Discovery patterns applied beneath every install root.
var (
	DeclarationPatterns = []string{"**/extensionApiProposals.js"}
	BundlePatterns      = []string{"**/workbench.desktop.main.js", "**/workbench*.main.js"}
)

// Paths lists every candidate location the detector may read. It is
// resolved once at startup and injected, so tests substitute their own.
type Paths struct {
	// DeclarationFiles are standalone declaration tables, tried first.
	DeclarationFiles []string `json:"declaration_files,omitempty" yaml:"declaration_files,omitempty"`

	// BundleFiles are concatenated build artifacts that may embed the table.
	BundleFiles []string `json:"bundle_files,omitempty" yaml:"bundle_files,omitempty"`

	// InstallRoots are searched for declaration and bundle files when the
	// explicit lists do not yield a result.
	InstallRoots []string `json:"install_roots,omitempty" yaml:"install_roots,omitempty"`

	// PermissionLists are product configuration files carrying an allow-list.
	PermissionLists []string `json:"permission_lists,omitempty" yaml:"permission_lists,omitempty"`
}

// WithInstallRoots returns a copy of p with extra roots appended. Each root
// also contributes its well-known relative paths to the explicit lists.
func (p Paths) WithInstallRoots(roots ...string) Paths {
	out := Paths{
		DeclarationFiles: append([]string(nil), p.DeclarationFiles...),
		BundleFiles:      append([]string(nil), p.BundleFiles...),
		InstallRoots:     append([]string(nil), p.InstallRoots...),
		PermissionLists:  append([]string(nil), p.PermissionLists...),
	}
	for _, root := range roots {
		if root == "" {
			continue
		}
		out.InstallRoots = append(out.InstallRoots, root)
		out.DeclarationFiles = append(out.DeclarationFiles, filepath.Join(root, filepath.FromSlash(declarationRelPath)))
		out.BundleFiles = append(out.BundleFiles, filepath.Join(root, filepath.FromSlash(bundleRelPath)))
		out.PermissionLists = append(out.PermissionLists, filepath.Join(root, productRelPath))
	}
	return out
}

// DefaultPaths returns the well-known install locations for goos. getenv is
// consulted for per-user locations on Windows.
func DefaultPaths(goos string, getenv func(string) string) Paths {
	roots := []string{
		"/usr/share/codium/resources/app",
		"/opt/vscodium-bin/resources/app",
		"/opt/VSCodium/resources/app",
		"/snap/codium/current/usr/share/codium/resources/app",
	}

	switch goos {
	case "darwin":
		roots = append([]string{"/Applications/VSCodium.app/Contents/Resources/app"}, roots...)
	case "windows":
		var win []string
		if local := getenv("LOCALAPPDATA"); local != "" {
			win = append(win, filepath.Join(local, "Programs", "VSCodium", "resources", "app"))
		}
		if pf := getenv("ProgramFiles"); pf != "" {
			win = append(win, filepath.Join(pf, "VSCodium", "resources", "app"))
		}
		roots = append(win, roots...)
	}

	var p Paths
	for _, root := range roots {
		p.DeclarationFiles = append(p.DeclarationFiles, filepath.Join(root, filepath.FromSlash(declarationRelPath)))
		p.BundleFiles = append(p.BundleFiles, filepath.Join(root, filepath.FromSlash(bundleRelPath)))
		p.PermissionLists = append(p.PermissionLists, filepath.Join(root, productRelPath))
	}
	return p
}

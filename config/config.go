// Package config loads extcompat settings from layered YAML files.
//
// Settings are applied in order: built-in defaults, the user file
// (~/.config/extcompat/config.yaml), then an explicit file. Each file is
// checked against the reflected JSON schema before it is merged, so unknown
// keys and wrongly typed values are reported with their location.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/reglet-dev/extcompat/artifact/marketplace"
	"github.com/reglet-dev/extcompat/artifact/services"
	"github.com/reglet-dev/extcompat/capability/detect"
	"github.com/reglet-dev/extcompat/capability/sources"
	"github.com/reglet-dev/extcompat/host"
	"github.com/reglet-dev/extcompat/netutil"
)

// SchemaKind is the schema registry kind for configuration documents.
const SchemaKind = "config"

// ErrInvalidConfig is returned when a loaded configuration is unusable.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete settings tree.
type Config struct {
	Registry  RegistryConfig  `json:"registry" yaml:"registry"`
	Selector  SelectorConfig  `json:"selector" yaml:"selector"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Host      HostConfig      `json:"host" yaml:"host"`
	Lockfile  LockfileConfig  `json:"lockfile" yaml:"lockfile"`
}

// RegistryConfig configures the catalog client.
type RegistryConfig struct {
	URL                    string `json:"url" yaml:"url" jsonschema:"minLength=1"`
	UserAgent              string `json:"user_agent" yaml:"user_agent"`
	MetadataTimeoutSeconds int    `json:"metadata_timeout_seconds" yaml:"metadata_timeout_seconds" jsonschema:"minimum=1"`
	DownloadTimeoutSeconds int    `json:"download_timeout_seconds" yaml:"download_timeout_seconds" jsonschema:"minimum=1"`
	MaxPackageBytes        int64  `json:"max_package_bytes" yaml:"max_package_bytes" jsonschema:"minimum=1"`
	MaxRetries             int    `json:"max_retries" yaml:"max_retries" jsonschema:"minimum=0,maximum=10"`
	// CacheTTLSeconds of zero disables catalog caching. A one-shot CLI run
	// gains nothing from it, so it defaults to off.
	CacheTTLSeconds int `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds" jsonschema:"minimum=0"`
}

// SelectorConfig bounds the version scan.
type SelectorConfig struct {
	MaxVersions int `json:"max_versions" yaml:"max_versions" jsonschema:"minimum=1"`
}

// DetectionConfig controls where supported capabilities are read from.
type DetectionConfig struct {
	NoiseThreshold    int      `json:"noise_threshold" yaml:"noise_threshold" jsonschema:"minimum=1"`
	UsePermissionList bool     `json:"use_permission_list" yaml:"use_permission_list"`
	UseDefaultPaths   bool     `json:"use_default_paths" yaml:"use_default_paths"`
	InstallRoots      []string `json:"install_roots,omitempty" yaml:"install_roots,omitempty"`
	DeclarationFiles  []string `json:"declaration_files,omitempty" yaml:"declaration_files,omitempty"`
	BundleFiles       []string `json:"bundle_files,omitempty" yaml:"bundle_files,omitempty"`
	PermissionLists   []string `json:"permission_lists,omitempty" yaml:"permission_lists,omitempty"`
}

// HostConfig configures host version discovery.
type HostConfig struct {
	Binary         string `json:"binary" yaml:"binary" jsonschema:"minLength=1"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" jsonschema:"minimum=1"`
}

// LockfileConfig configures lockfile output.
type LockfileConfig struct {
	Path          string `json:"path" yaml:"path" jsonschema:"minLength=1"`
	SecurityLevel string `json:"security_level" yaml:"security_level" jsonschema:"enum=strict,enum=standard,enum=permissive"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{
			URL:                    marketplace.DefaultURL,
			UserAgent:              marketplace.DefaultUserAgent,
			MetadataTimeoutSeconds: int(marketplace.DefaultMetadataTimeout / time.Second),
			DownloadTimeoutSeconds: int(marketplace.DefaultDownloadTimeout / time.Second),
			MaxPackageBytes:        marketplace.DefaultMaxPackageBytes,
			MaxRetries:             marketplace.DefaultMaxRetries,
		},
		Selector: SelectorConfig{MaxVersions: services.DefaultMaxVersions},
		Detection: DetectionConfig{
			NoiseThreshold:    sources.DefaultNoiseThreshold,
			UsePermissionList: true,
			UseDefaultPaths:   true,
		},
		Host: HostConfig{
			Binary:         host.DefaultBinary,
			TimeoutSeconds: int(host.DefaultTimeout / time.Second),
		},
		Lockfile: LockfileConfig{
			Path:          "extcompat.lock",
			SecurityLevel: "standard",
		},
	}
}

// DefaultUserConfigPath returns ~/.config/extcompat/config.yaml or the
// platform equivalent.
func DefaultUserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "extcompat", "config.yaml")
}

// Validate checks semantic constraints the schema cannot express.
func (c *Config) Validate() error {
	if err := netutil.ValidateHTTPURL(c.Registry.URL); err != nil {
		return fmt.Errorf("%w: registry.url: %v", ErrInvalidConfig, err)
	}
	if !netutil.IsHTTPS(c.Registry.URL) && !isLoopback(netutil.ExtractHost(c.Registry.URL)) {
		return fmt.Errorf("%w: registry.url must use https", ErrInvalidConfig)
	}
	return nil
}

// DetectionPaths returns the candidate capability sources for this
// configuration on the running platform.
func (c *Config) DetectionPaths(extraRoots ...string) detect.Paths {
	var p detect.Paths
	if c.Detection.UseDefaultPaths {
		p = detect.DefaultPaths(runtime.GOOS, os.Getenv)
	}
	p.DeclarationFiles = append(append([]string(nil), c.Detection.DeclarationFiles...), p.DeclarationFiles...)
	p.BundleFiles = append(append([]string(nil), c.Detection.BundleFiles...), p.BundleFiles...)
	p.PermissionLists = append(append([]string(nil), c.Detection.PermissionLists...), p.PermissionLists...)

	roots := append(append([]string(nil), extraRoots...), c.Detection.InstallRoots...)
	return prependRoots(p, roots)
}

// prependRoots puts install-root candidates ahead of the rest so explicit
// roots win over well-known locations.
func prependRoots(p detect.Paths, roots []string) detect.Paths {
	if len(roots) == 0 {
		return p
	}
	r := detect.Paths{}.WithInstallRoots(roots...)
	return detect.Paths{
		DeclarationFiles: append(r.DeclarationFiles, p.DeclarationFiles...),
		BundleFiles:      append(r.BundleFiles, p.BundleFiles...),
		InstallRoots:     append(r.InstallRoots, p.InstallRoots...),
		PermissionLists:  append(r.PermissionLists, p.PermissionLists...),
	}
}

// DetectorOptions returns detector options for this configuration.
func (c *Config) DetectorOptions() []detect.Option {
	return []detect.Option{
		detect.WithNoiseThreshold(c.Detection.NoiseThreshold),
		detect.WithPermissionList(c.Detection.UsePermissionList),
	}
}

// ClientOptions returns marketplace client options for this configuration.
func (c *Config) ClientOptions() []marketplace.Option {
	return []marketplace.Option{
		marketplace.WithURL(c.Registry.URL),
		marketplace.WithUserAgent(c.Registry.UserAgent),
		marketplace.WithMetadataTimeout(seconds(c.Registry.MetadataTimeoutSeconds)),
		marketplace.WithDownloadTimeout(seconds(c.Registry.DownloadTimeoutSeconds)),
		marketplace.WithMaxPackageBytes(c.Registry.MaxPackageBytes),
		marketplace.WithMaxRetries(c.Registry.MaxRetries),
	}
}

// CacheTTL returns the catalog cache lifetime; zero disables caching.
func (c *Config) CacheTTL() time.Duration {
	return seconds(c.Registry.CacheTTLSeconds)
}

// HostOptions returns host prober options for this configuration.
func (c *Config) HostOptions(paths detect.Paths) []host.Option {
	return []host.Option{
		host.WithBinary(c.Host.Binary),
		host.WithTimeout(seconds(c.Host.TimeoutSeconds)),
		host.WithProductFiles(paths.PermissionLists...),
	}
}

func isLoopback(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/extcompat/artifact"
	"github.com/reglet-dev/extcompat/artifact/filesystem"
	"github.com/reglet-dev/extcompat/artifact/marketplace"
	"github.com/reglet-dev/extcompat/artifact/ports"
	"github.com/reglet-dev/extcompat/artifact/resolvers"
	"github.com/reglet-dev/extcompat/artifact/services"
	"github.com/reglet-dev/extcompat/artifact/vsix"
	"github.com/reglet-dev/extcompat/capability/detect"
	"github.com/reglet-dev/extcompat/config"
	"github.com/reglet-dev/extcompat/host"
	"github.com/reglet-dev/extcompat/schema"
)

// app is the component graph for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	schemas *schema.Registry
	paths   detect.Paths
	out     io.Writer
}

func newApp(cmd *cobra.Command, g *globals) (*app, error) {
	logger, err := newLogger(g.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	schemas := schema.NewRegistry()
	loader := config.NewLoader(
		config.WithSchemas(schemas),
		config.WithLogger(logger),
		config.WithUserConfigPath(g.userConfigPath),
	)
	cfg, err := loader.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		schemas: schemas,
		paths:   cfg.DetectionPaths(g.installRoots...),
		out:     cmd.OutOrStdout(),
	}, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "", "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func (a *app) detector() *detect.Detector {
	opts := append(a.cfg.DetectorOptions(), detect.WithLogger(a.logger))
	return detect.NewDetector(a.paths, opts...)
}

func (a *app) extractor() *vsix.Extractor {
	return vsix.NewExtractor(vsix.WithSchemas(a.schemas), vsix.WithLogger(a.logger))
}

func (a *app) prober(binary string) *host.Prober {
	opts := append(a.cfg.HostOptions(a.paths), host.WithLogger(a.logger), host.WithBinary(binary))
	return host.NewProber(opts...)
}

func (a *app) lockfiles() *filesystem.FileLockfileRepository {
	return filesystem.NewFileLockfileRepository()
}

func (a *app) resolveService() *artifact.ResolveService {
	client := marketplace.NewClient(append(a.cfg.ClientOptions(), marketplace.WithLogger(a.logger))...)

	var catalog ports.CatalogClient = client
	if ttl := a.cfg.CacheTTL(); ttl > 0 {
		catalog = resolvers.NewCachedCatalogClient(client, ttl, a.logger)
	}

	selector := services.NewSelector(
		client,
		a.extractor(),
		resolvers.NewEngineComparator(resolvers.WithComparatorLogger(a.logger)),
		services.WithMaxVersions(a.cfg.Selector.MaxVersions),
		services.WithSelectorLogger(a.logger),
	)

	return artifact.NewResolveService(catalog, selector, a.detector(),
		artifact.WithLogger(a.logger),
		artifact.WithLockfileRepository(a.lockfiles()),
	)
}

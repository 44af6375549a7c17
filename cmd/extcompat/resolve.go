package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/extcompat/artifact"
	"github.com/reglet-dev/extcompat/artifact/gatekeeper"
	"github.com/reglet-dev/extcompat/artifact/values"
)

type resolveOptions struct {
	hostVersion   string
	hostBinary    string
	lockfile      string
	securityLevel string
	approvals     string
	lock          bool
	yes           bool
	jsonOutput    bool
}

func newResolveCmd(g *globals) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <publisher.name>...",
		Short: "Find the newest compatible version of one or more extensions",
		Long: `Resolve scans each extension's published versions newest first and
selects the first stable version whose engine requirement the host meets
and whose proposed APIs the host implements.

Examples:
  # Use the installed host's version
  extcompat resolve GitHub.copilot-chat

  # Resolve against an explicit host version and pin the result
  extcompat resolve GitHub.copilot-chat --host-version 1.109.51242 --lock

  # Search a portable installation first
  extcompat resolve GitHub.copilot-chat --install-root ~/apps/VSCodium/resources/app`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.hostVersion, "host-version", "", "host version (default: ask the host binary)")
	cmd.Flags().StringVar(&opts.hostBinary, "host-binary", "", "host executable to query for its version")
	cmd.Flags().BoolVar(&opts.lock, "lock", false, "record the result in the configured lockfile")
	cmd.Flags().StringVar(&opts.lockfile, "lockfile", "", "record the result in this lockfile (implies --lock)")
	cmd.Flags().StringVar(&opts.securityLevel, "security-level", "",
		"how to lock versions accepted without capability evidence (strict, standard, permissive)")
	cmd.Flags().StringVar(&opts.approvals, "approvals", "", "approvals file (default: ~/.config/extcompat/approvals.yaml)")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not prompt; approve unverified versions and overwrite the lockfile")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	return cmd
}

func runResolve(cmd *cobra.Command, g *globals, opts *resolveOptions, args []string) error {
	ctx := cmd.Context()

	ids := make([]values.ArtifactID, 0, len(args))
	for _, arg := range args {
		id, err := values.ParseArtifactID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	a, err := newApp(cmd, g)
	if err != nil {
		return err
	}

	hostVersion := opts.hostVersion
	if hostVersion == "" {
		hostVersion, err = a.prober(opts.hostBinary).Version(ctx)
		if err != nil {
			return fmt.Errorf("detecting host version (use --host-version): %w", err)
		}
	}

	svc := a.resolveService()
	results, resolveErr := svc.ResolveAll(ctx, ids, hostVersion)

	reports := make([]resolutionReport, len(results))
	for i, res := range results {
		reports[i] = newResolutionReport(res)
	}
	if opts.jsonOutput {
		if err := writeJSON(a.out, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			writeResolutionText(a.out, r)
		}
	}
	if resolveErr != nil {
		return resolveErr
	}

	path := opts.lockfile
	if path == "" && opts.lock {
		path = a.cfg.Lockfile.Path
	}
	if path == "" {
		return nil
	}
	return lockResults(cmd, a, svc, opts, path, results)
}

func lockResults(
	cmd *cobra.Command,
	a *app,
	svc *artifact.ResolveService,
	opts *resolveOptions,
	path string,
	results []*artifact.Resolution,
) error {
	ctx := cmd.Context()

	levelName := opts.securityLevel
	if levelName == "" {
		levelName = a.cfg.Lockfile.SecurityLevel
	}
	level, err := gatekeeper.ParseSecurityLevel(levelName)
	if err != nil {
		return err
	}

	prompter := gatekeeper.NewTerminalPrompter()
	gk := gatekeeper.NewGatekeeper(
		gatekeeper.WithSecurityLevel(level),
		gatekeeper.WithPrompter(prompter),
		gatekeeper.WithStore(gatekeeper.NewFileStore(gatekeeper.WithPath(opts.approvals))),
		gatekeeper.WithLogger(a.logger),
	)
	approved, err := gk.Review(results, opts.yes)
	if err != nil {
		return err
	}

	if !opts.yes && prompter.IsInteractive() {
		exists, err := a.lockfiles().Exists(ctx, path)
		if err != nil {
			return err
		}
		if exists {
			ok, err := prompter.ConfirmWrite(path, len(approved))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("lockfile not written")
			}
		}
	}

	if err := svc.Lock(ctx, path, approved...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Locked %d artifact(s) in %s\n", len(approved), path)
	return nil
}

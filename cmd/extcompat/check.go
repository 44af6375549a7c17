package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/extcompat/capability"
)

type checkOptions struct {
	supported []string
	require   []string
	pkg       string
	detect    bool
}

func newCheckCmd(g *globals) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check capability requirements against a supported set",
		Long: `Check runs the compatibility gate. Requirements come from --require or
from a local package (--package); the supported set comes from --supported
or, with --detect, from the installed host. An empty supported set accepts
everything.

Examples:
  extcompat check --supported chatHooks,findFiles2 --require chatHooks@6,mcpServer@1
  extcompat check --detect --package ./copilot-chat-0.38.0.vsix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, g, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.supported, "supported", nil, "supported capability names")
	cmd.Flags().StringSliceVar(&opts.require, "require", nil, "required capabilities (name or name@revision)")
	cmd.Flags().StringVar(&opts.pkg, "package", "", "read requirements from a local package")
	cmd.Flags().BoolVar(&opts.detect, "detect", false, "use the installed host's capabilities")
	cmd.MarkFlagsMutuallyExclusive("supported", "detect")
	cmd.MarkFlagsMutuallyExclusive("require", "package")
	return cmd
}

func runCheck(cmd *cobra.Command, g *globals, opts *checkOptions) error {
	a, err := newApp(cmd, g)
	if err != nil {
		return err
	}

	var reqs []capability.Requirement
	if opts.pkg != "" {
		reqs, err = a.extractor().Extract(opts.pkg)
	} else {
		reqs, err = capability.ParseRequirements(opts.require)
	}
	if err != nil {
		return err
	}

	supported := capability.NewSet(opts.supported...)
	if opts.detect {
		supported = a.detector().Detect(cmd.Context()).Set
	}

	ok, unsupported := capability.Check(reqs, supported)
	switch {
	case supported.IsEmpty():
		fmt.Fprintf(a.out, "compatible (no supported set; %d requirement(s) unchecked)\n", len(reqs))
	case ok:
		fmt.Fprintf(a.out, "compatible (%d requirement(s))\n", len(reqs))
	default:
		fmt.Fprintf(a.out, "incompatible: %s\n", strings.Join(capability.Strings(unsupported), ", "))
		return errSilent
	}
	return nil
}

// Package main provides the extcompat binary, which picks the newest
// published version of an extension that a locally installed host can run.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/extcompat/config"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

const appName = "extcompat"

// errSilent marks failures that were already reported on stdout.
var errSilent = errors.New("failed")

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(defaultGlobals(), os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// globals holds the flags shared by every command.
type globals struct {
	configPath     string
	userConfigPath string
	logLevel       string
	installRoots   []string
}

func defaultGlobals() *globals {
	return &globals{userConfigPath: config.DefaultUserConfigPath()}
}

func newRootCmd(g *globals, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Resolve extension versions compatible with the installed host",
		Long: `extcompat selects, for a locally installed host, the newest published
version of an extension whose engine requirement and proposed-API
capabilities the host satisfies.

Capabilities are read from the host installation: the standalone
declaration table first, then the bundled workbench, then the product
permission list. When none is found every capability is accepted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "",
		"config file (default: ~/.config/extcompat/config.yaml)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringArrayVar(&g.installRoots, "install-root", nil,
		"host installation directory to search first (repeatable)")

	cmd.AddCommand(
		newResolveCmd(g),
		newDetectCmd(g),
		newCheckCmd(g),
		newVerifyCmd(g),
		newConfigCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

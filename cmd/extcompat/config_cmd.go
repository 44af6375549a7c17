package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/extcompat/config"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON schema for configuration files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), config.NewLoader(config.WithUserConfigPath("")).Schema())
				return err
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newApp(cmd, g)
				if err != nil {
					return err
				}
				out, err := config.Marshal(a.cfg)
				if err != nil {
					return err
				}
				_, err = a.out.Write(out)
				return err
			},
		},
	)
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/extcompat/artifact/marketplace"
	"github.com/reglet-dev/extcompat/artifact/services"
)

func newVerifyCmd(g *globals) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-download locked packages and check their digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}
			if path == "" {
				path = a.cfg.Lockfile.Path
			}

			lock, err := a.lockfiles().Load(cmd.Context(), path)
			if err != nil {
				return err
			}
			if lock == nil {
				return fmt.Errorf("no lockfile at %s", path)
			}

			client := marketplace.NewClient(append(a.cfg.ClientOptions(), marketplace.WithLogger(a.logger))...)
			failures := services.NewIntegrityService(client, a.logger).VerifyLockfile(cmd.Context(), lock)

			for _, key := range lock.IDs() {
				entry := lock.GetArtifact(key)
				if err, failed := failures[key]; failed {
					fmt.Fprintf(a.out, "FAIL %s %s: %v\n", key, entry.Resolved, err)
					continue
				}
				fmt.Fprintf(a.out, "ok   %s %s\n", key, entry.Resolved)
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d locked package(s) failed verification", len(failures), lock.ArtifactCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "lockfile", "", "lockfile to verify (default: configured lockfile)")
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const sampleSize = 10

func newDetectCmd(g *globals) *cobra.Command {
	var (
		jsonOutput bool
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show the capabilities the installed host supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, g)
			if err != nil {
				return err
			}

			result := a.detector().Detect(cmd.Context())
			names := result.Set.Sample(sampleSize)
			if all {
				names = result.Set.Names()
			}

			if jsonOutput {
				return writeJSON(a.out, struct {
					Source       string   `json:"source"`
					Path         string   `json:"path,omitempty"`
					Count        int      `json:"count"`
					Capabilities []string `json:"capabilities"`
				}{string(result.Source), result.Path, result.Set.Len(), names})
			}

			if result.Permissive() {
				fmt.Fprintln(a.out, "No capability evidence found; every capability will be accepted.")
				return nil
			}
			fmt.Fprintf(a.out, "source:       %s\n", result.Source)
			fmt.Fprintf(a.out, "path:         %s\n", result.Path)
			fmt.Fprintf(a.out, "capabilities: %d\n", result.Set.Len())
			suffix := ""
			if !all && result.Set.Len() > len(names) {
				suffix = ", ..."
			}
			fmt.Fprintf(a.out, "  %s%s\n", strings.Join(names, ", "), suffix)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "list every capability")
	return cmd
}

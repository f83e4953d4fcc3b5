package cmd

import (
	"fmt"

	"github.com/bnema/voxlate/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !verbose {
				_, err := fmt.Fprintln(out, version.Version)
				return err
			}

			info := version.Read()
			revision := info.Revision
			if revision == "" {
				revision = "unknown"
			} else if info.Modified {
				revision += "-dirty"
			}
			_, err := fmt.Fprintf(out, "version:  %s\ngo:       %s\nrevision: %s\n", info.Version, info.GoVersion, revision)
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include Go toolchain and VCS revision")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpuskit/pkg/version"
)

// newVersionCmd creates the version command. Unlike a typical CLI's
// version output, its default and --json forms surface the artifact schema
// version (and --json also the format version) alongside the binary
// version; --short prints the binary version alone. An artifact directory built by one
// corpuskit binary is only safe to query with another when those match,
// so that compatibility number belongs next to the binary version, not
// buried in the manifest.
func newVersionCmd() *cobra.Command {
	var jsonOutput bool
	var shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print corpuskit's binary version and the artifact schema/format
version it writes and expects. Pair with "corpuskit verify" when an
artifact built by an older or newer binary won't load.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if shortOutput {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Short())
				return err
			}
			if jsonOutput {
				info := version.GetInfo()
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output version info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "output only the version number")
	return cmd
}

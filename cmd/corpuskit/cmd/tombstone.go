package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corpuskit/corpuskit/internal/artifact"
	"github.com/corpuskit/corpuskit/internal/output"
)

func newTombstoneCmd() *cobra.Command {
	var artifactDir string
	var byDoc bool

	cmd := &cobra.Command{
		Use:   "tombstone <chunk-id-or-doc-uid>",
		Short: "Mark a chunk or, with --doc, an entire document as deleted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTombstone(cmd, artifactDir, args[0], byDoc)
		},
	}

	cmd.Flags().StringVarP(&artifactDir, "artifact", "a", ".corpuskit", "artifact directory")
	cmd.Flags().BoolVar(&byDoc, "doc", false, "treat the argument as a doc_uid and tombstone every live chunk of that document")
	return cmd
}

func runTombstone(cmd *cobra.Command, artifactDir, id string, byDoc bool) error {
	out := output.New(cmd.OutOrStdout())

	art, err := artifact.Load(artifactDir, artifact.LoadOptions{})
	if err != nil {
		out.Errorf("failed to load artifact: %v", err)
		return err
	}
	defer art.Close()

	if byDoc {
		n, err := art.Store.TombstoneDocument(id)
		if err != nil {
			out.Errorf("tombstone failed: %v", err)
			return err
		}
		out.Successf("tombstoned %d chunks for document %s", n, id)
		return nil
	}

	if err := art.Store.Tombstone(id); err != nil {
		out.Errorf("tombstone failed: %v", err)
		return err
	}
	out.Successf("tombstoned chunk %s", id)
	return nil
}

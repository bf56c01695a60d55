package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpuskit/internal/artifact"
	"github.com/corpuskit/corpuskit/internal/config"
	"github.com/corpuskit/corpuskit/internal/output"
)

func newBuildCmd() *cobra.Command {
	var artifactDir string

	cmd := &cobra.Command{
		Use:   "build <corpus-dir>",
		Short: "Build a retrieval artifact from a directory of .txt/.md files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], artifactDir)
		},
	}

	cmd.Flags().StringVarP(&artifactDir, "artifact", "a", ".corpuskit", "artifact output directory")
	return cmd
}

func runBuild(cmd *cobra.Command, corpusDir, artifactDir string) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := config.Load(corpusDir)
	if err != nil {
		out.Errorf("failed to load configuration: %v", err)
		return err
	}

	out.Statusf("🔨", "building artifact from %s", corpusDir)

	result, err := artifact.Build(cmd.Context(), corpusDir, artifactDir, cfg, time.Now().UTC(),
		artifact.WithProgress(func(current, total int) {
			out.Progress(current, total, "chunking documents")
		}))
	if err != nil {
		out.Errorf("build failed: %v", err)
		return err
	}

	out.Successf("built %d documents, %d chunks into %s", result.TotalDocs, result.TotalChunks, artifactDir)
	for _, skipped := range result.SkippedFiles {
		out.Warningf("skipped %s: %v", skipped.SourcePath, skipped.Err)
	}
	return nil
}

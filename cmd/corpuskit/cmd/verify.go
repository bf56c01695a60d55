package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corpuskit/corpuskit/internal/artifact"
	"github.com/corpuskit/corpuskit/internal/output"
)

func newVerifyCmd() *cobra.Command {
	var artifactDir string
	var strict bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an artifact's manifest checksums and index consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, artifactDir, strict)
		},
	}

	cmd.Flags().StringVarP(&artifactDir, "artifact", "a", ".corpuskit", "artifact directory")
	cmd.Flags().BoolVar(&strict, "strict", true, "fail the load on manifest checksum mismatch")
	return cmd
}

func runVerify(cmd *cobra.Command, artifactDir string, strict bool) error {
	out := output.New(cmd.OutOrStdout())

	art, err := artifact.Load(artifactDir, artifact.LoadOptions{Strict: strict})
	if err != nil {
		out.Errorf("manifest verification failed: %v", err)
		return err
	}
	defer art.Close()

	if strict {
		out.Success("manifest checksums OK")
	} else {
		out.Warning("manifest checksums not checked (--strict=false)")
	}

	issues := art.VerifyConsistency()
	if len(issues) == 0 {
		out.Success("chunks.idx and BM25 index agree")
		return nil
	}

	for _, issue := range issues {
		out.Errorf("%s: %s", issue.Kind, issue.ChunkID)
	}
	return art.Verify()
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpuskit/corpuskit/internal/artifact"
	"github.com/corpuskit/corpuskit/internal/chunk"
	"github.com/corpuskit/corpuskit/internal/output"
	"github.com/corpuskit/corpuskit/internal/retrieval"
)

type queryOptions struct {
	artifactDir string
	limit       int
	format      string // "text", "json", "context"
	verbose     bool
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <terms...>",
		Short: "Retrieve the best-matching chunks for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.artifactDir, "artifact", "a", ".corpuskit", "artifact directory")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum number of results")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text, json, context")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "print each match's full chunk text instead of a truncated snippet")

	return cmd
}

func runQuery(cmd *cobra.Command, query string, opts queryOptions) error {
	out := output.New(cmd.OutOrStdout())

	art, err := artifact.Load(opts.artifactDir, artifact.LoadOptions{})
	if err != nil {
		out.Errorf("failed to load artifact: %v", err)
		return err
	}
	defer art.Close()

	results, err := art.Pipeline.Retrieve(query, opts.limit)
	if err != nil {
		out.Errorf("query failed: %v", err)
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		out.Status("", "no matches")
		return nil
	}

	if opts.format == "context" {
		chunks, err := fetchResultChunks(art.Pipeline, results)
		if err != nil {
			out.Errorf("failed to fetch chunk text: %v", err)
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), retrieval.AssembleContext(chunks))
		return err
	}

	if !opts.verbose {
		for i, r := range results {
			out.Statusf("", "%d. [%.4f] %s (%s)", i+1, r.Score, r.Snippet, r.SourceRef.SourcePath)
		}
		return nil
	}

	chunks, err := fetchResultChunks(art.Pipeline, results)
	if err != nil {
		out.Errorf("failed to fetch chunk text: %v", err)
		return err
	}
	for i, r := range results {
		out.Statusf("", "%d. [%.4f] %s", i+1, r.Score, r.SourceRef.SourcePath)
		if i < len(chunks) {
			out.Snippet(chunks[i].Text)
		}
	}
	return nil
}

func fetchResultChunks(p *retrieval.Pipeline, results []retrieval.Result) ([]chunk.Chunk, error) {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	return p.FetchChunks(ids)
}

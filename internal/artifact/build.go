// Package artifact is the build orchestration and load façade tying the
// normalizer, chunker, chunk store, BM25 index, and manifest together into
// one artifact directory.
package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/corpuskit/corpuskit/internal/bm25"
	"github.com/corpuskit/corpuskit/internal/chunk"
	"github.com/corpuskit/corpuskit/internal/config"
	"github.com/corpuskit/corpuskit/internal/corpuserr"
	"github.com/corpuskit/corpuskit/internal/manifest"
	"github.com/corpuskit/corpuskit/internal/parsetxt"
	"github.com/corpuskit/corpuskit/internal/store"
)

// bm25IndexFilename is the on-disk name of the persisted BM25 blob; its
// extension is an implementation detail, not a configuration option.
const bm25IndexFilename = "bm25_index.bin"

const lockFilename = ".build.lock"

// BuildResult summarizes a completed build.
type BuildResult struct {
	TotalDocs    int
	TotalChunks  int
	SkippedFiles []SkippedFile
}

// SkippedFile records a document the build couldn't parse; the build
// continues past per-document parse failures (spec.md §7: ParseError is
// document-scoped, not fatal to the whole build).
type SkippedFile struct {
	SourcePath string
	Err        error
}

// parsedFile pairs a parsed document with its corpus-order position, so
// bounded-parallel parsing can be reassembled in deterministic order.
type parsedFile struct {
	index int
	doc   *chunk.Document
	err   error
}

// buildOptions holds the optional knobs Build accepts via BuildOption.
type buildOptions struct {
	onProgress func(current, total int)
}

// BuildOption configures an optional aspect of Build.
type BuildOption func(*buildOptions)

// WithProgress registers a callback invoked after each document is chunked
// and appended to the store, with current counting from 1 and total fixed
// at the corpus size. Builds over a handful of files never call it with a
// meaningfully different current/total pair fast enough to matter; it
// exists for corpora large enough that a CLI caller wants to show a bar.
func WithProgress(fn func(current, total int)) BuildOption {
	return func(o *buildOptions) { o.onProgress = fn }
}

// Build walks corpusRoot in deterministic (lexicographic, normalized
// relative path) order, parses every supported file, chunks it, appends
// the chunks to the store, accumulates BM25 postings, then finalizes the
// BM25 blob, docs.meta, and manifest. artifactDir is created if absent.
// now is the build timestamp (UTC); callers supply it since this package
// never reads the system clock directly, keeping the build otherwise
// deterministic given identical inputs.
func Build(ctx context.Context, corpusRoot, artifactDir string, cfg *config.Config, now time.Time, opts ...BuildOption) (*BuildResult, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(artifactDir, 0o755); err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOWriteFailed, "create artifact directory", err).WithFile(artifactDir)
	}

	lock := flock.New(filepath.Join(artifactDir, lockFilename))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOWriteFailed, "acquire artifact directory lock", err).WithFile(artifactDir)
	}
	if !locked {
		return nil, corpuserr.IOError(corpuserr.CodeIOWriteFailed, "artifact directory is locked by another build", nil).WithFile(artifactDir)
	}
	defer lock.Unlock()

	paths, err := walkCorpus(corpusRoot)
	if err != nil {
		return nil, err
	}

	docs, skipped := parseAll(ctx, corpusRoot, paths)

	st, err := store.Open(artifactDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	index := bm25.New(bm25.Params{
		K1:           cfg.BM25.K1,
		B:            cfg.BM25.B,
		UseStopwords: cfg.BM25.UseStopwords,
	})

	chunkOpts := chunk.Options{
		ChunkSizeWords: cfg.Chunking.ChunkSize,
		OverlapWords:   cfg.Chunking.ChunkOverlap,
	}

	state := NewBuildState(artifactDir)
	totalChunks := 0

	for i, doc := range docs {
		doc.ExtractedAt = now

		chunks, err := chunk.Chunk(doc, chunkOpts)
		if err != nil {
			return nil, err
		}

		for _, c := range chunks {
			if _, err := st.Append(c.ChunkID, c.DocUID, c.DocID, c.Text, c.Start, c.End, c.ChunkIndex, c.PageStart, c.PageEnd, cfg.Compression.ZstdLevel); err != nil {
				return nil, err
			}
			index.Add(c.ChunkID, c.Text)
		}
		totalChunks += len(chunks)

		st.DocsMeta().Put(store.DocMeta{
			DocUID:      doc.DocUID,
			DocID:       doc.DocID,
			SourcePath:  doc.SourcePath,
			Title:       doc.Title,
			ChunkCount:  len(chunks),
			ExtractedAt: doc.ExtractedAt,
		})

		if err := state.RecordProcessed(doc.SourcePath); err != nil {
			return nil, err
		}

		if o.onProgress != nil {
			o.onProgress(i+1, len(docs))
		}
	}

	if err := bm25.Save(index, filepath.Join(artifactDir, bm25IndexFilename)); err != nil {
		return nil, err
	}
	if err := st.FlushMeta(); err != nil {
		return nil, err
	}
	if err := st.Sync(); err != nil {
		return nil, err
	}

	m, err := manifest.Build(artifactDir, bm25IndexFilename, cfg.Versions.SchemaVersion, cfg.Versions.ArtifactVersion,
		now.UTC().Format(time.RFC3339), len(docs), totalChunks)
	if err != nil {
		return nil, err
	}
	if err := manifest.Write(artifactDir, m); err != nil {
		return nil, err
	}

	state.Clear()

	return &BuildResult{
		TotalDocs:    len(docs),
		TotalChunks:  totalChunks,
		SkippedFiles: skipped,
	}, nil
}

// walkCorpus returns every supported source file under root, as paths
// relative to root, sorted lexicographically by normalized relative path
// per spec.md §5's determinism requirement.
func walkCorpus(root string) ([]string, error) {
	var rels []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !parsetxt.Supports(filepath.Ext(path)) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "walk corpus root", err).WithFile(root)
	}

	sort.Strings(rels)
	return rels, nil
}

// parseAll parses every path in paths (relative to root), bounded-parallel
// via errgroup, preserving corpus traversal order in its return slice so
// downstream chunk_index/BM25-position assignment stays deterministic
// regardless of goroutine completion order. Per-file parse failures are
// collected as SkippedFile rather than aborting the whole build.
func parseAll(ctx context.Context, root string, paths []string) ([]*chunk.Document, []SkippedFile) {
	results := make([]parsedFile, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(parseConcurrency())

	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			doc, err := parsetxt.Parse(filepath.Join(root, rel), rel)
			results[i] = parsedFile{index: i, doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	docs := make([]*chunk.Document, 0, len(paths))
	var skipped []SkippedFile
	for _, r := range results {
		if r.err != nil {
			skipped = append(skipped, SkippedFile{SourcePath: paths[r.index], Err: r.err})
			continue
		}
		docs = append(docs, r.doc)
	}
	return docs, skipped
}

func parseConcurrency() int {
	return 8
}

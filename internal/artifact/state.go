package artifact

import (
	"os"
	"path/filepath"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

// stateFilename is the build checkpoint file's name within the artifact
// directory. It exists purely for operator diagnosis of an interrupted
// build; spec.md §5's "no mid-operation cancellation" invariant is
// unaffected — an interrupted build is still not a valid artifact until
// the manifest is written, checkpoint or no checkpoint.
const stateFilename = ".build_state"

// BuildState records the source path of the last fully-processed document,
// written after each document commits its chunks to the store so a build
// that dies partway through can report precisely how far it got.
type BuildState struct {
	path string
}

// NewBuildState returns a BuildState rooted at artifactDir.
func NewBuildState(artifactDir string) *BuildState {
	return &BuildState{path: filepath.Join(artifactDir, stateFilename)}
}

// RecordProcessed overwrites the checkpoint with sourcePath.
func (s *BuildState) RecordProcessed(sourcePath string) error {
	if err := os.WriteFile(s.path, []byte(sourcePath), 0o644); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write build checkpoint", err).WithFile(s.path)
	}
	return nil
}

// LastProcessed returns the last checkpointed source path, or "" if no
// checkpoint exists (either the build never started, or it finished and
// Clear removed it).
func (s *BuildState) LastProcessed() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", corpuserr.IOError(corpuserr.CodeIOReadFailed, "read build checkpoint", err).WithFile(s.path)
	}
	return string(data), nil
}

// Clear removes the checkpoint file; called once a build completes
// successfully, since a completed artifact has no "resume point" left to
// report.
func (s *BuildState) Clear() {
	_ = os.Remove(s.path)
}

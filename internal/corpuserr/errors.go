package corpuserr

import "fmt"

// CorpusError is the structured error type returned by the artifact
// subsystem. It carries enough context (Kind, the chunk/file involved) for
// a caller to branch on failure class without parsing message strings.
type CorpusError struct {
	Kind Kind
	Code string

	// Message is the human-readable description.
	Message string

	// ChunkID and Filename identify the object involved, when applicable.
	ChunkID  string
	Filename string

	// Retryable is true for errors local to one document/record that do
	// not require aborting the enclosing build or load.
	Retryable bool

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *CorpusError) Error() string {
	switch {
	case e.ChunkID != "" && e.Filename != "":
		return fmt.Sprintf("[%s] %s (chunk=%s file=%s)", e.Code, e.Message, e.ChunkID, e.Filename)
	case e.ChunkID != "":
		return fmt.Sprintf("[%s] %s (chunk=%s)", e.Code, e.Message, e.ChunkID)
	case e.Filename != "":
		return fmt.Sprintf("[%s] %s (file=%s)", e.Code, e.Message, e.Filename)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap supports errors.Is/errors.As against the underlying cause.
func (e *CorpusError) Unwrap() error {
	return e.Cause
}

// Is matches CorpusErrors by Kind, so callers can do
// errors.Is(err, corpuserr.New(corpuserr.KindCorruptStore, "", "", nil)).
func (e *CorpusError) Is(target error) bool {
	t, ok := target.(*CorpusError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a CorpusError of the given Kind with the caller-supplied code.
// Retryable is set only for KindParse.
func New(kind Kind, code, message string, cause error) *CorpusError {
	return &CorpusError{
		Kind:      kind,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: kind == KindParse,
	}
}

// WithChunk annotates the error with a chunk_id and returns it for chaining.
func (e *CorpusError) WithChunk(chunkID string) *CorpusError {
	e.ChunkID = chunkID
	return e
}

// WithFile annotates the error with a source filename and returns it for chaining.
func (e *CorpusError) WithFile(filename string) *CorpusError {
	e.Filename = filename
	return e
}

// IOError builds a KindIO error.
func IOError(code, message string, cause error) *CorpusError {
	return New(KindIO, code, message, cause)
}

// ParseError builds a KindParse error. Parse errors are recoverable:
// the offending document is skipped and the build continues.
func ParseError(message string, cause error) *CorpusError {
	return New(KindParse, CodeParseFailed, message, cause)
}

// ChunkerInvariantError builds a KindChunkerInvariant error.
func ChunkerInvariantError(code, message string) *CorpusError {
	return New(KindChunkerInvariant, code, message, nil)
}

// CorruptStoreError builds a KindCorruptStore error.
func CorruptStoreError(code, message string, cause error) *CorpusError {
	return New(KindCorruptStore, code, message, cause)
}

// DecompressionError builds a KindDecompression error.
func DecompressionError(message string, cause error) *CorpusError {
	return New(KindDecompression, CodeDecompressFailed, message, cause)
}

// IndexInconsistencyError builds a KindIndexInconsistency error.
func IndexInconsistencyError(code, message string) *CorpusError {
	return New(KindIndexInconsistency, code, message, nil)
}

// ManifestMismatchError builds a KindManifestMismatch error.
func ManifestMismatchError(code, message string) *CorpusError {
	return New(KindManifestMismatch, code, message, nil)
}

// ConfigError builds a KindConfig error.
func ConfigError(message string) *CorpusError {
	return New(KindConfig, CodeConfigRange, message, nil)
}

// IsRetryable reports whether err is a CorpusError with Retryable set —
// i.e. the per-document parse failures that the build skips and continues past.
func IsRetryable(err error) bool {
	ce, ok := err.(*CorpusError)
	return ok && ce.Retryable
}

// KindOf extracts the Kind from err, or "" if err is not a *CorpusError.
func KindOf(err error) Kind {
	ce, ok := err.(*CorpusError)
	if !ok {
		return ""
	}
	return ce.Kind
}

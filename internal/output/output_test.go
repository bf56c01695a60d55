package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status_PrintsIconAndMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Status("🔨", "building artifact from ./corpus")

	output := buf.String()
	assert.Contains(t, output, "🔨")
	assert.Contains(t, output, "building artifact from ./corpus")
}

func TestWriter_Success_PrintsCheckmark(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Success("built 12 documents, 340 chunks into .corpuskit")

	output := buf.String()
	assert.Contains(t, output, "✅")
	assert.Contains(t, output, "built 12 documents, 340 chunks into .corpuskit")
}

func TestWriter_Warning_PrintsWarningIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Warning("skipped notes.pdf: unsupported extension")

	output := buf.String()
	assert.Contains(t, output, "⚠️")
	assert.Contains(t, output, "skipped notes.pdf: unsupported extension")
}

func TestWriter_Error_PrintsErrorIcon(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Error("manifest checksum mismatch")

	output := buf.String()
	assert.Contains(t, output, "❌")
	assert.Contains(t, output, "manifest checksum mismatch")
}

func TestWriter_Snippet_PrintsIndentedChunkText(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Snippet("machine learning is a subset\nof artificial intelligence")

	output := buf.String()
	assert.Contains(t, output, "  machine learning is a subset")
	assert.Contains(t, output, "  of artificial intelligence")
}

func TestWriter_Progress_PrintsProgressBar(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(50, 100, "chunking documents")

	output := buf.String()
	assert.Contains(t, output, "50%")
	assert.Contains(t, output, "chunking documents")
}

func TestWriter_Progress_ZeroTotal_NoOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(0, 0, "chunking documents")

	assert.Empty(t, buf.String())
}

func TestWriter_Progress_CompletionAddsNewline(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Progress(10, 10, "chunking documents")

	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestWriter_Statusf_FormatsMessage(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Statusf("📂", "found %d source files under %s", 42, "./corpus")

	output := buf.String()
	assert.Contains(t, output, "📂")
	assert.Contains(t, output, "found 42 source files under ./corpus")
}

func TestProgressBar_Render(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		width    int
		wantFull int
	}{
		{name: "0 percent", current: 0, total: 100, width: 10, wantFull: 0},
		{name: "50 percent", current: 50, total: 100, width: 10, wantFull: 5},
		{name: "100 percent", current: 100, total: 100, width: 10, wantFull: 10},
		{name: "25 percent", current: 25, total: 100, width: 20, wantFull: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderProgressBar(tt.current, tt.total, tt.width)

			filled := strings.Count(bar, "█")
			assert.Equal(t, tt.wantFull, filled)
			assert.Equal(t, tt.width, len([]rune(bar)))
		})
	}
}

func TestWriter_Newline_PrintsEmptyLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	w.Newline()

	assert.Equal(t, "\n", buf.String())
}

func TestNew_DefaultsToNoColor(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)

	assert.NotNil(t, w)
}

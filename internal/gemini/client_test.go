package gemini

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"html fence", "```html\n<p>Hi</p>\n```", "<p>Hi</p>"},
		{"bare fence", "```\n<div>x</div>\n```", "<div>x</div>"},
		{"no fence", "<p>plain</p>", "<p>plain</p>"},
		{"surrounding whitespace", "  \n```html\n<b>a</b>\n```\n  ", "<b>a</b>"},
		{"fence mid-text untouched", "<p>uses ``` inline</p>", "<p>uses ``` inline</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, CleanHTML(tt.input))
		})
	}
}

func TestBuildResumeFilePDF(t *testing.T) {
	t.Parallel()

	data := []byte("%PDF-1.7 content")
	rf, err := BuildResumeFile("cv.pdf", data)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", rf.MIMEType)
	require.Equal(t, data, rf.Data)
}

func TestBuildResumeFileDocx(t *testing.T) {
	t.Parallel()

	docx := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Grace Hopper</w:t></w:r></w:p>
    <w:p><w:r><w:t>Compiler engineer</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	rf, err := BuildResumeFile("cv.docx", docx)
	require.NoError(t, err)
	require.Equal(t, "text/plain", rf.MIMEType)
	require.Equal(t, "Grace Hopper\nCompiler engineer", string(rf.Data))
}

func TestBuildResumeFilePlainText(t *testing.T) {
	t.Parallel()

	rf, err := BuildResumeFile("cv.txt", []byte("plain resume text"))
	require.NoError(t, err)
	require.Equal(t, "text/plain", rf.MIMEType)
}

func TestBuildResumeFileUnsupported(t *testing.T) {
	t.Parallel()

	// PNG magic bytes.
	_, err := BuildResumeFile("photo.png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedResume))
}

func TestBuildResumeFileEmpty(t *testing.T) {
	t.Parallel()

	_, err := BuildResumeFile("cv.pdf", nil)
	require.Error(t, err)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "report", TitleFromPath("/some/dir/report.pdf"))
	assert.Equal(t, "notes", TitleFromPath("notes.txt"))
	assert.Equal(t, "archive.tar", TitleFromPath("archive.tar.gz"))
}

func TestExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two"), 0o644))

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)
}

func TestExtractMarkdownStripsMarkup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	src := "# Heading\n\nSome *emphasized* text with a [link](https://example.com).\n\n- item one\n- item two\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	text, err := Extract(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "emphasized")
	assert.Contains(t, text, "item one")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
	assert.NotContains(t, text, "](")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract("slides.key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestExtractPPTXTextRuns(t *testing.T) {
	xml := `<p:sld><a:t>Hello</a:t><a:t>World</a:t></p:sld>`
	assert.Equal(t, "Hello World ", extractTextFromXML(xml))
}

package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatterAndBody(t *testing.T) {
	content := `---
model: anthropic/claude-sonnet-4
temperature: 0.7
---

You are a researcher.
`
	doc, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "anthropic/claude-sonnet-4", doc.Frontmatter["model"])
	assert.Equal(t, 0.7, doc.Frontmatter["temperature"])
	assert.Equal(t, "You are a researcher.", doc.Body)
}

func TestParseNoFrontmatter(t *testing.T) {
	doc, err := Parse([]byte("Just a body.\n"))
	require.NoError(t, err)

	assert.Empty(t, doc.Frontmatter)
	assert.Equal(t, "Just a body.", doc.Body)
}

func TestParseUnterminatedFence(t *testing.T) {
	content := "---\nmodel: m1\nno closing fence"

	doc, err := Parse([]byte(content))
	require.NoError(t, err)

	// Without a closing fence the whole file is body.
	assert.Empty(t, doc.Frontmatter)
	assert.Equal(t, strings.TrimSpace(content), doc.Body)
}

func TestParseCRLF(t *testing.T) {
	content := "---\r\nmodel: m1\r\n---\r\n\r\nbody text\r\n"

	doc, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, "m1", doc.Frontmatter["model"])
	assert.Equal(t, "body text", doc.Body)
}

func TestParseMalformedYAML(t *testing.T) {
	content := "---\nmodel: [unclosed\n---\n\nbody"

	_, err := Parse([]byte(content))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestReadNotFound(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "openchamber-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	_, err = Read(filepath.Join(tmpDir, "missing.md"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWriteStripsNilValues(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "openchamber-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "agent", "researcher.md")
	doc := &Document{
		Frontmatter: map[string]any{
			"model":       "m1",
			"description": nil,
		},
		Body: "You are a researcher.",
	}
	require.NoError(t, Write(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "description")
	assert.NotContains(t, string(data), "null")

	parsed, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"model": "m1"}, parsed.Frontmatter)
	assert.Equal(t, "You are a researcher.", parsed.Body)
}

func TestWriteTrimsTrailingWhitespace(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "openchamber-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "cmd.md")
	doc := &Document{
		Frontmatter: map[string]any{"description": "deploy"},
		Body:        "run deploy  \n\n",
	}
	require.NoError(t, Write(path, doc))

	parsed, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "run deploy", parsed.Body)
}

func TestWriteEmptyFrontmatterRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "openchamber-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "cmd.md")
	require.NoError(t, Write(path, &Document{Frontmatter: map[string]any{}, Body: "just a template"}))

	parsed, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, parsed.Frontmatter)
	assert.Equal(t, "just a template", parsed.Body)
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "openchamber-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "cmd.md")
	require.NoError(t, Write(path, &Document{Frontmatter: map[string]any{"a": "b"}, Body: "x"}))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cmd.md", entries[0].Name())
}

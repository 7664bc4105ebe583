// Package document reads and writes entity documents: a YAML frontmatter
// block fenced by --- lines, followed by a free-text body.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound indicates no document exists at the given path.
	ErrNotFound = errors.New("document: not found")
	// ErrMalformed indicates the frontmatter block could not be parsed.
	ErrMalformed = errors.New("document: malformed frontmatter")
)

// Document is one entity definition: scalar or structured metadata plus a
// free-text body.
type Document struct {
	Frontmatter map[string]any
	Body        string
}

// Read parses the document at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// Parse decodes frontmatter and body from raw document content. Content
// without an opening fence, or with an unterminated one, is treated as all
// body.
func Parse(data []byte) (*Document, error) {
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return &Document{
			Frontmatter: map[string]any{},
			Body:        strings.TrimSpace(string(normalized)),
		}, nil
	}

	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return &Document{
			Frontmatter: map[string]any{},
			Body:        strings.TrimSpace(string(normalized)),
		}, nil
	}

	frontmatter := map[string]any{}
	if err := yaml.Unmarshal(parts[0], &frontmatter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}

	return &Document{
		Frontmatter: frontmatter,
		Body:        strings.TrimSpace(string(parts[1])),
	}, nil
}

// Write serializes doc to path, creating parent directories as needed. The
// write goes through a temp file and rename so readers never observe a
// partial document.
func Write(path string, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	data, err := Encode(doc)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename document: %w", err)
	}
	return nil
}

// Encode renders frontmatter and body with --- fences. Nil frontmatter
// values are dropped rather than serialized; consumers expect absent keys,
// not nulls. Trailing body whitespace is trimmed.
func Encode(doc *Document) ([]byte, error) {
	cleaned := make(map[string]any, len(doc.Frontmatter))
	for k, v := range doc.Frontmatter {
		if v == nil {
			continue
		}
		cleaned[k] = v
	}

	meta, err := yaml.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimRight(doc.Body, " \t\r\n"))
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// Package report serializes hit lists to JSON, Markdown, or plain text.
// All serializers preserve the input order and never mutate hits, so the
// same hit list always produces byte-identical output.
package report

import (
	"bytes"
	"fmt"
	"os"

	"vaultsearch/internal/search"
)

// Format identifies an export serialization.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatMarkdown, FormatText:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q (use: json, md, txt)", s)
}

// Render serializes hits in the given format.
func Render(hits []search.Hit, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return renderJSON(hits)
	case FormatMarkdown:
		return renderMarkdown(hits), nil
	case FormatText:
		return renderText(hits), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// WriteFile renders hits and writes them to path.
func WriteFile(hits []search.Hit, path string, f Format) error {
	data, err := Render(hits, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func renderJSON(hits []search.Hit) ([]byte, error) {
	var buf bytes.Buffer
	enc := newJSONEncoder(&buf)
	if hits == nil {
		hits = []search.Hit{}
	}
	if err := enc.Encode(hits); err != nil {
		return nil, fmt.Errorf("encode hits: %w", err)
	}
	return buf.Bytes(), nil
}

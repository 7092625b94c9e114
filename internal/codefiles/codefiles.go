// Package codefiles writes the code blocks of a hit list out to individual
// files with names derived from conversation metadata.
package codefiles

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"vaultsearch/internal/search"
)

// maxTitleLen bounds the sanitized-title component of generated filenames.
const maxTitleLen = 90

// extByLanguage maps fence language tags to file extensions. Unknown tags
// fall back to "txt".
var extByLanguage = map[string]string{
	"python":     "py",
	"py":         "py",
	"javascript": "js",
	"js":         "js",
	"typescript": "ts",
	"ts":         "ts",
	"go":         "go",
	"golang":     "go",
	"json":       "json",
	"bash":       "sh",
	"sh":         "sh",
	"zsh":        "sh",
	"html":       "html",
	"css":        "css",
	"sql":        "sql",
	"yaml":       "yml",
	"yml":        "yml",
	"md":         "md",
	"markdown":   "md",
}

// Extract writes every code block of every hit into dir, creating it if
// needed, and returns the number of files written. Block content is
// written verbatim. Files already written are not removed when a later
// write fails.
func Extract(hits []search.Hit, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create code directory: %w", err)
	}

	count := 0
	seen := make(map[string]bool)

	for _, h := range hits {
		if len(h.CodeBlocks) == 0 {
			continue
		}
		base := sanitizeTitle(h.ConversationTitle) + "__" + prefix(h.ConversationID, "noconv")

		for idx, b := range h.CodeBlocks {
			ext := extByLanguage[strings.ToLower(strings.TrimSpace(b.Language))]
			if ext == "" {
				ext = "txt"
			}

			name := fmt.Sprintf("%s__msg_%s__%d", base, prefix(h.MessageID, "nomsg"), idx+1)
			// Identical name components can collide across hits; a content
			// hash keeps the derived path unique within a run.
			if seen[name+"."+ext] {
				name = fmt.Sprintf("%s__%08x", name, contentHash(b.Code))
			}
			filename := name + "." + ext
			seen[filename] = true

			if err := os.WriteFile(filepath.Join(dir, filename), []byte(b.Code), 0o644); err != nil {
				return count, fmt.Errorf("write %s: %w", filename, err)
			}
			count++
		}
	}
	return count, nil
}

var (
	unsafeChars   = regexp.MustCompile(`[^a-zA-Z0-9._ -]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// sanitizeTitle reduces a conversation title to a filesystem-safe base:
// path separators become underscores, remaining unsafe characters are
// stripped, whitespace collapses, and the result is length-bounded.
func sanitizeTitle(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_").Replace(strings.TrimSpace(s))
	s = unsafeChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return "untitled"
	}
	if len(s) > maxTitleLen {
		s = s[:maxTitleLen]
	}
	return s
}

// prefix returns the first 8 characters of an identifier, or the fallback
// when the identifier is empty.
func prefix(id, fallback string) string {
	if id == "" {
		return fallback
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func contentHash(code string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(code))
	return h.Sum32()
}

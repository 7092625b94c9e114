// Package content turns raw message payloads into searchable text and
// extracts fenced code blocks and bounded snippets from that text.
package content

import (
	"regexp"
	"strings"

	"vaultsearch/internal/vault"
)

// CodeBlock is a fenced code segment found inside message text.
type CodeBlock struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// DefaultSnippetLen bounds preview snippets unless overridden.
const DefaultSnippetLen = 240

// Text flattens a message's content parts into a single searchable string.
// Plain text parts are kept as-is, structured parts are stringified to
// compact JSON, parts are joined with newlines and the result is trimmed.
// Missing or malformed content yields "".
func Text(msg *vault.Message) string {
	if msg == nil || len(msg.Content.Parts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(msg.Content.Parts))
	for _, p := range msg.Content.Parts {
		parts = append(parts, p.String())
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// fenceOpen matches an opening code fence: three or more backticks at the
// start of a line with an optional language tag.
var fenceOpen = regexp.MustCompile("^(`{3,})([a-zA-Z0-9_+-]*)$")

// ExtractCodeBlocks scans text for fenced code blocks. A block opens with a
// fence of at least three backticks plus an optional language tag, and
// closes at the next line made of at least as many backticks. Shorter
// backtick runs inside the block stay part of the code. Blocks without a
// closing fence are ignored. A blank language tag defaults to "text".
func ExtractCodeBlocks(text string) []CodeBlock {
	lines := strings.Split(text, "\n")
	var blocks []CodeBlock

	for i := 0; i < len(lines); i++ {
		m := fenceOpen.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		fenceLen := len(m[1])

		for j := i + 1; j < len(lines); j++ {
			if !isClosingFence(lines[j], fenceLen) {
				continue
			}
			lang := m[2]
			if lang == "" {
				lang = "text"
			}
			blocks = append(blocks, CodeBlock{
				Language: lang,
				Code:     strings.Join(lines[i+1:j], "\n"),
			})
			i = j
			break
		}
	}
	return blocks
}

// isClosingFence reports whether the line consists solely of backticks and
// is long enough to close a fence of openLen backticks.
func isClosingFence(line string, openLen int) bool {
	if len(line) < openLen {
		return false
	}
	for _, r := range line {
		if r != '`' {
			return false
		}
	}
	return true
}

// WithoutCodeBlocks returns text with every fenced code block removed,
// fence lines included. Snippets built from the remainder preview the
// prose around the code instead of the code itself.
func WithoutCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		m := fenceOpen.FindStringSubmatch(lines[i])
		if m == nil {
			kept = append(kept, lines[i])
			continue
		}
		fenceLen := len(m[1])
		closed := false
		for j := i + 1; j < len(lines); j++ {
			if isClosingFence(lines[j], fenceLen) {
				i = j
				closed = true
				break
			}
		}
		if !closed {
			// Unterminated fence: keep the line, it is not a block.
			kept = append(kept, lines[i])
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Snippet collapses whitespace runs to single spaces and trims. Results
// longer than maxLen runes are cut to maxLen-1 and suffixed with a single
// ellipsis, so the returned string never exceeds maxLen runes.
func Snippet(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSnippetLen
	}
	one := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	runes := []rune(one)
	if len(runes) <= maxLen {
		return one
	}
	return string(runes[:maxLen-1]) + "…"
}

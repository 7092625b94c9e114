package report

import (
	"fmt"
	"strings"

	"vaultsearch/internal/search"
)

// renderMarkdown produces a numbered document: one section per hit with a
// metadata bullet list, the full matched text in a text fence, and each
// code block in a fence labeled with its language.
func renderMarkdown(hits []search.Hit) []byte {
	var sb strings.Builder
	sb.WriteString("# Vault Search Results\n\n")

	for i, h := range hits {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, h.ConversationTitle)
		fmt.Fprintf(&sb, "- **Conversation ID:** `%s`\n", h.ConversationID)
		if h.ConversationCreateTime != "" {
			fmt.Fprintf(&sb, "- **Conversation Created:** `%s`\n", h.ConversationCreateTime)
		}
		if h.MessageID != "" {
			fmt.Fprintf(&sb, "- **Message ID:** `%s`\n", h.MessageID)
			fmt.Fprintf(&sb, "- **Author Role:** `%s`\n", h.AuthorRole)
			if h.MessageTime != "" {
				fmt.Fprintf(&sb, "- **Message Time:** `%s`\n", h.MessageTime)
			}
		}
		sb.WriteString("\n")

		if h.FullText != "" {
			sb.WriteString("### Matched Message\n\n")
			sb.WriteString("```text\n")
			sb.WriteString(strings.TrimSpace(h.FullText))
			sb.WriteString("\n```\n\n")
		}

		if len(h.CodeBlocks) > 0 {
			sb.WriteString("### Code Blocks Found\n\n")
			for j, b := range h.CodeBlocks {
				fmt.Fprintf(&sb, "**Block %d** (%s)\n\n", j+1, b.Language)
				fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", b.Language, b.Code)
			}
		}
	}

	return []byte(sb.String())
}

// RenderHit produces the Markdown for a single hit, used by the TUI
// preview pane.
func RenderHit(h search.Hit) string {
	return string(renderMarkdown([]search.Hit{h}))
}

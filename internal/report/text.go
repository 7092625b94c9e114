package report

import (
	"fmt"
	"strings"

	"vaultsearch/internal/search"
)

// renderText produces a compact numbered listing: identifiers, an optional
// metadata line, and the snippet. The full text is never included.
func renderText(hits []search.Hit) []byte {
	var sb strings.Builder

	for i, h := range hits {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, h.ConversationTitle)
		fmt.Fprintf(&sb, "  conv_id: %s\n", h.ConversationID)
		if h.ConversationCreateTime != "" {
			fmt.Fprintf(&sb, "  conv_time: %s\n", h.ConversationCreateTime)
		}
		if h.MessageID != "" {
			fmt.Fprintf(&sb, "  msg_id: %s role=%s time=%s\n", h.MessageID, h.AuthorRole, h.MessageTime)
			fmt.Fprintf(&sb, "  snippet: %s\n", h.Snippet)
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

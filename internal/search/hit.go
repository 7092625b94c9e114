package search

import "vaultsearch/internal/content"

// Hit is one surfaced search result: a matched message or, in title-only
// mode, a matching conversation with empty message-scoped fields. Hits are
// built exactly once by Search and never mutated afterwards; field names
// are stable across exports.
type Hit struct {
	ConversationID         string              `json:"conversation_id"`
	ConversationTitle      string              `json:"conversation_title"`
	ConversationCreateTime string              `json:"conversation_create_time,omitempty"`
	MessageID              string              `json:"message_id"`
	AuthorRole             string              `json:"author_role"`
	MessageTime            string              `json:"message_time,omitempty"`
	Snippet                string              `json:"snippet"`
	FullText               string              `json:"full_text"`
	CodeBlocks             []content.CodeBlock `json:"code_blocks"`
}

// titleMatchSnippet marks synthetic hits produced in title-only mode.
const titleMatchSnippet = "(title match)"

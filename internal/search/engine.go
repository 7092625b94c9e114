package search

import (
	"regexp"
	"sort"
	"time"

	"vaultsearch/internal/content"
	"vaultsearch/internal/vault"
)

// Options configures one Search call. Every input is explicit: the engine
// keeps no process-wide state, so concurrent calls with separate Options
// never interfere.
type Options struct {
	// Query is the compiled search pattern (see Compile). Required.
	Query *regexp.Regexp
	// TitleFilter, when set, is a hard pre-filter: conversations whose
	// title does not match are skipped entirely, messages unscanned.
	TitleFilter *regexp.Regexp

	SearchTitles   bool
	SearchMessages bool
	// OnlyWithCode drops hits whose text contains no fenced code block.
	OnlyWithCode bool

	// Start and End bound message timestamps inclusively. Zero values are
	// open ends.
	Start time.Time
	End   time.Time

	// SnippetLen bounds hit snippets; 0 means content.DefaultSnippetLen.
	SnippetLen int

	// OnProgress, when non-nil, is called once per conversation scanned.
	OnProgress func(scanned, total int)
}

// Search scans the corpus and returns one hit per qualifying message, or
// one synthetic hit per matching conversation when message search is off.
// Malformed records are skipped silently; the scan never aborts part-way.
// The result order is the emission order; callers sort with SortHits.
//
// A title match intentionally surfaces every in-range message of that
// conversation, even messages the query itself does not match.
func Search(conversations []vault.Conversation, opts Options) []Hit {
	var hits []Hit

	for i, conv := range conversations {
		if opts.OnProgress != nil {
			opts.OnProgress(i+1, len(conversations))
		}

		title := conv.Title
		convTime := isoFromUnix(conv.CreateTime)

		if opts.TitleFilter != nil && !opts.TitleFilter.MatchString(title) {
			continue
		}

		titleMatched := opts.SearchTitles && opts.Query.MatchString(title)

		if !opts.SearchMessages {
			if titleMatched {
				hits = append(hits, Hit{
					ConversationID:         conv.ID,
					ConversationTitle:      title,
					ConversationCreateTime: convTime,
					Snippet:                titleMatchSnippet,
					CodeBlocks:             []content.CodeBlock{},
				})
			}
			continue
		}

		for rec := range vault.Records(conv) {
			msg := rec.Message

			id := msg.ID
			if id == "" {
				id = rec.NodeID
			}
			msgTime := isoFromUnix(msg.CreateTime)

			if !InDateRange(parseISO(msgTime), opts.Start, opts.End) {
				continue
			}

			text := content.Text(msg)
			if text == "" {
				continue
			}

			if !opts.Query.MatchString(text) && !titleMatched {
				continue
			}

			blocks := content.ExtractCodeBlocks(text)
			if opts.OnlyWithCode && len(blocks) == 0 {
				continue
			}
			if blocks == nil {
				blocks = []content.CodeBlock{}
			}

			// Preview the prose around the code; a message that is all
			// code previews the code itself.
			snippetSrc := text
			if len(blocks) > 0 {
				if prose := content.WithoutCodeBlocks(text); prose != "" {
					snippetSrc = prose
				}
			}

			hits = append(hits, Hit{
				ConversationID:         conv.ID,
				ConversationTitle:      title,
				ConversationCreateTime: convTime,
				MessageID:              id,
				AuthorRole:             msg.Author.Role,
				MessageTime:            msgTime,
				Snippet:                content.Snippet(snippetSrc, opts.SnippetLen),
				FullText:               text,
				CodeBlocks:             blocks,
			})
		}
	}

	return hits
}

// SortHits orders hits by descending message timestamp. Hits without a
// parseable timestamp sort as the earliest possible value, so they end up
// last. The sort is stable: ties keep their emission order.
func SortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return parseISO(hits[i].MessageTime).After(parseISO(hits[j].MessageTime))
	})
}

func parseISO(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

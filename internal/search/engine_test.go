package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsearch/internal/vault"
)

func mustConversation(t *testing.T, raw string) vault.Conversation {
	t.Helper()
	var conv vault.Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &conv))
	return conv
}

const budgetPlan = `{
	"id": "conv-budget",
	"title": "Budget Plan",
	"create_time": 1700000000,
	"mapping": {
		"node-1": {
			"message": {
				"id": "msg-1",
				"author": {"role": "assistant"},
				"create_time": 1700000100,
				"content": {"parts": ["the safe date program works\n` + "```" + `python\nprint('hi')\n` + "```" + `"]}
			}
		}
	}
}`

const groceryNotes = `{
	"id": "conv-grocery",
	"title": "Grocery Notes",
	"mapping": {
		"node-1": {
			"message": {
				"id": "msg-g1",
				"author": {"role": "user"},
				"create_time": 1700000200,
				"content": {"parts": ["buy milk and eggs"]}
			}
		},
		"node-2": {
			"message": {
				"id": "msg-g2",
				"author": {"role": "assistant"},
				"content": {"parts": [""]}
			}
		}
	}
}`

func defaultOptions(t *testing.T, query string) Options {
	t.Helper()
	re, err := Compile(query, false, false)
	require.NoError(t, err)
	return Options{
		Query:          re,
		SearchTitles:   true,
		SearchMessages: true,
	}
}

func TestSearch_MessageMatchWithCodeBlock(t *testing.T) {
	convs := []vault.Conversation{mustConversation(t, budgetPlan)}

	hits := Search(convs, defaultOptions(t, "safe date"))

	require.Len(t, hits, 1)
	h := hits[0]
	assert.Equal(t, "conv-budget", h.ConversationID)
	assert.Equal(t, "Budget Plan", h.ConversationTitle)
	assert.Equal(t, "msg-1", h.MessageID)
	assert.Equal(t, "assistant", h.AuthorRole)
	assert.Equal(t, "the safe date program works", h.Snippet)
	require.Len(t, h.CodeBlocks, 1)
	assert.Equal(t, "python", h.CodeBlocks[0].Language)
	assert.Equal(t, "print('hi')", h.CodeBlocks[0].Code)
}

func TestSearch_TitleMatchSurfacesAllMessages(t *testing.T) {
	convs := []vault.Conversation{mustConversation(t, budgetPlan)}

	// The query matches the title but no message text; the message still
	// comes back because its conversation matched.
	hits := Search(convs, defaultOptions(t, "budget"))

	require.Len(t, hits, 1)
	assert.Equal(t, "msg-1", hits[0].MessageID)
}

func TestSearch_TitleOnlyMode(t *testing.T) {
	convs := []vault.Conversation{mustConversation(t, budgetPlan)}

	opts := defaultOptions(t, "budget")
	opts.SearchMessages = false

	hits := Search(convs, opts)

	require.Len(t, hits, 1)
	h := hits[0]
	assert.Equal(t, "conv-budget", h.ConversationID)
	assert.Equal(t, "(title match)", h.Snippet)
	assert.Empty(t, h.MessageID)
	assert.Empty(t, h.FullText)
	assert.NotNil(t, h.CodeBlocks)
	assert.Empty(t, h.CodeBlocks)
}

func TestSearch_TitleFilterSkipsConversations(t *testing.T) {
	convs := []vault.Conversation{
		mustConversation(t, budgetPlan),
		mustConversation(t, groceryNotes),
	}

	opts := defaultOptions(t, ".")
	opts.Query, _ = Compile(".", true, false)
	opts.TitleFilter, _ = Compile("grocery", false, false)

	hits := Search(convs, opts)

	require.Len(t, hits, 1)
	assert.Equal(t, "conv-grocery", hits[0].ConversationID)
}

func TestSearch_OnlyWithCode(t *testing.T) {
	convs := []vault.Conversation{
		mustConversation(t, budgetPlan),
		mustConversation(t, groceryNotes),
	}

	opts := defaultOptions(t, "works|milk")
	opts.Query, _ = Compile("works|milk", true, false)
	opts.OnlyWithCode = true

	hits := Search(convs, opts)

	require.Len(t, hits, 1)
	assert.Equal(t, "conv-budget", hits[0].ConversationID)
}

func TestSearch_EmptyMessagesNeverHit(t *testing.T) {
	convs := []vault.Conversation{mustConversation(t, groceryNotes)}

	// Title matches, so every in-range message lights up. The empty one
	// still stays out.
	hits := Search(convs, defaultOptions(t, "grocery"))

	require.Len(t, hits, 1)
	assert.Equal(t, "msg-g1", hits[0].MessageID)
}

func TestSearch_DateRange(t *testing.T) {
	convs := []vault.Conversation{
		mustConversation(t, budgetPlan),
		mustConversation(t, groceryNotes),
	}

	opts := defaultOptions(t, "works|milk")
	opts.Query, _ = Compile("works|milk", true, false)

	t.Run("window admits only the earlier message", func(t *testing.T) {
		o := opts
		o.End = time.Unix(1700000150, 0).UTC()
		hits := Search(convs, o)
		require.Len(t, hits, 1)
		assert.Equal(t, "msg-1", hits[0].MessageID)
	})

	t.Run("inverted window yields nothing", func(t *testing.T) {
		o := opts
		o.Start = time.Unix(1700001000, 0).UTC()
		o.End = time.Unix(1700000000, 0).UTC()
		hits := Search(convs, o)
		assert.Empty(t, hits)
	})
}

func TestSearch_Progress(t *testing.T) {
	convs := []vault.Conversation{
		mustConversation(t, budgetPlan),
		mustConversation(t, groceryNotes),
	}

	var calls [][2]int
	opts := defaultOptions(t, "nothing matches this")
	opts.OnProgress = func(scanned, total int) {
		calls = append(calls, [2]int{scanned, total})
	}

	Search(convs, opts)

	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, calls)
}

func TestSortHits(t *testing.T) {
	hits := []Hit{
		{MessageID: "old", MessageTime: "2023-01-01T00:00:00Z"},
		{MessageID: "undated-a"},
		{MessageID: "new", MessageTime: "2024-06-01T00:00:00Z"},
		{MessageID: "undated-b"},
	}

	SortHits(hits)

	var order []string
	for _, h := range hits {
		order = append(order, h.MessageID)
	}
	// Newest first; undated hits sink to the bottom in emission order.
	assert.Equal(t, []string{"new", "old", "undated-a", "undated-b"}, order)
}

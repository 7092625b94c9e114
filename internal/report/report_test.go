package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsearch/internal/content"
	"vaultsearch/internal/search"
)

func sampleHits() []search.Hit {
	return []search.Hit{
		{
			ConversationID:    "conv-1",
			ConversationTitle: "Budget Plan",
			MessageID:         "msg-1",
			AuthorRole:        "assistant",
			MessageTime:       "2024-06-01T00:00:00Z",
			Snippet:           "the safe date program works",
			FullText:          "the safe date program works\n```python\nprint('hi')\n```",
			CodeBlocks: []content.CodeBlock{
				{Language: "python", Code: "print('hi')"},
			},
		},
		{
			ConversationID:    "conv-2",
			ConversationTitle: "Grocery Notes",
			MessageID:         "msg-2",
			AuthorRole:        "user",
			Snippet:           "buy milk <and> eggs",
			FullText:          "buy milk <and> eggs",
			CodeBlocks:        []content.CodeBlock{},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "md", "txt"} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), f)
	}

	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestRenderJSON(t *testing.T) {
	data, err := Render(sampleHits(), FormatJSON)
	require.NoError(t, err)

	var decoded []search.Hit
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	// Round-trip preserves order and every field.
	assert.Equal(t, "Budget Plan", decoded[0].ConversationTitle)
	require.Len(t, decoded[0].CodeBlocks, 1)
	assert.Equal(t, "python", decoded[0].CodeBlocks[0].Language)
	assert.Equal(t, "Grocery Notes", decoded[1].ConversationTitle)

	// HTML escaping is off: "<and>" survives literally.
	assert.Contains(t, string(data), "buy milk <and> eggs")
}

func TestRenderJSON_EmptyIsArray(t *testing.T) {
	data, err := Render(nil, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestRenderMarkdown(t *testing.T) {
	data, err := Render(sampleHits(), FormatMarkdown)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# Vault Search Results")
	assert.Contains(t, out, "## 1. Budget Plan")
	assert.Contains(t, out, "## 2. Grocery Notes")
	assert.Contains(t, out, "- **Message ID:** `msg-1`")
	assert.Contains(t, out, "### Matched Message")
	assert.Contains(t, out, "```python\nprint('hi')\n```")
}

func TestRenderText(t *testing.T) {
	data, err := Render(sampleHits(), FormatText)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "[1] Budget Plan")
	assert.Contains(t, out, "conv_id: conv-1")
	assert.Contains(t, out, "snippet: the safe date program works")
	// The compact listing never dumps full message text.
	assert.NotContains(t, out, "print('hi')")
}

func TestRenderHit(t *testing.T) {
	out := RenderHit(sampleHits()[0])
	assert.Contains(t, out, "## 1. Budget Plan")
	assert.Contains(t, out, "### Code Blocks Found")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteFile(sampleHits(), path, FormatJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []search.Hit
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}

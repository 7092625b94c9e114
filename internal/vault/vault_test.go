package vault

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `[
  {
    "id": "conv-1",
    "title": "Budget Plan",
    "create_time": 1700000000,
    "mapping": {
      "node-b": {
        "id": "node-b",
        "message": {
          "id": "msg-b",
          "author": {"role": "assistant"},
          "create_time": 1700000100.5,
          "content": {"parts": ["hello there"]}
        }
      },
      "node-a": {
        "id": "node-a",
        "message": null
      }
    }
  },
  {
    "id": "conv-2",
    "title": "Empty",
    "mapping": {}
  }
]`

func writeExport(t *testing.T, dir, rel string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o644))
	return path
}

func TestLoad_DirectFile(t *testing.T) {
	path := writeExport(t, t.TempDir(), "conversations.json")

	conversations, err := Load(path)
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "conv-1", conversations[0].ID)
	assert.Equal(t, "Budget Plan", conversations[0].Title)
	require.NotNil(t, conversations[0].CreateTime)
	assert.Equal(t, float64(1700000000), *conversations[0].CreateTime)
}

func TestLoad_Folder(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "conversations.json")

	conversations, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, conversations, 2)
}

func TestLoad_FolderNested(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, filepath.Join("export-2024", "conversations.json"))

	conversations, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, conversations, 2)
}

func TestLoad_Zip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "export.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	// A decoy deeper in the archive plus the real file near the root; the
	// shallower entry must win.
	deep, err := zw.Create("backup/old/conversations.json")
	require.NoError(t, err)
	_, err = deep.Write([]byte(`[]`))
	require.NoError(t, err)

	root, err := zw.Create("export/conversations.json")
	require.NoError(t, err)
	_, err = root.Write([]byte(sampleExport))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	conversations, err := Load(zipPath)
	require.NoError(t, err)
	assert.Len(t, conversations, 2)
}

func TestLoad_ZipWithoutConversations(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "export.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nothing here"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Load(zipPath)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestLoad_SourceNotFound(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("empty folder", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("wrong filename", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "other.json")
		require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})

	t.Run("top level not a list", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "conversations.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"oops": true}`), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrSourceNotFound)
	})
}

func TestLoad_SkipsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conversations.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not an object", {"id": "ok", "title": "T"}]`), 0o644))

	conversations, err := Load(path)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "ok", conversations[0].ID)
}

func TestConversation_LenientDecode(t *testing.T) {
	t.Run("non-object mapping keeps title", func(t *testing.T) {
		var conv Conversation
		require.NoError(t, json.Unmarshal([]byte(`{"id": "c", "title": "Still Here", "mapping": "bogus"}`), &conv))
		assert.Equal(t, "Still Here", conv.Title)
		assert.Zero(t, conv.NodeCount())
	})

	t.Run("numeric id", func(t *testing.T) {
		var conv Conversation
		require.NoError(t, json.Unmarshal([]byte(`{"id": 123, "title": "N"}`), &conv))
		assert.Equal(t, "123", conv.ID)
	})

	t.Run("non-numeric create_time", func(t *testing.T) {
		var conv Conversation
		require.NoError(t, json.Unmarshal([]byte(`{"id": "c", "create_time": "yesterday"}`), &conv))
		assert.Nil(t, conv.CreateTime)
	})
}

func TestRecords(t *testing.T) {
	var conversations []Conversation
	require.NoError(t, json.Unmarshal([]byte(sampleExport), &conversations))

	var records []Record
	for rec := range Records(conversations[0]) {
		records = append(records, rec)
	}

	// node-a has no message and must be skipped.
	require.Len(t, records, 1)
	assert.Equal(t, "node-b", records[0].NodeID)
	assert.Equal(t, "msg-b", records[0].Message.ID)
	assert.Equal(t, "assistant", records[0].Message.Author.Role)
	require.NotNil(t, records[0].Message.CreateTime)
}

func TestRecords_SortedOrder(t *testing.T) {
	raw := `{
      "id": "c",
      "mapping": {
        "z": {"message": {"id": "mz", "content": {"parts": ["z"]}}},
        "a": {"message": {"id": "ma", "content": {"parts": ["a"]}}},
        "m": {"message": {"id": "mm", "content": {"parts": ["m"]}}}
      }
    }`
	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &conv))

	var ids []string
	for rec := range Records(conv) {
		ids = append(ids, rec.NodeID)
	}
	assert.Equal(t, []string{"a", "m", "z"}, ids)
}

func TestRecords_SkipsMalformedNodes(t *testing.T) {
	raw := `{
      "id": "c",
      "mapping": {
        "good": {"message": {"id": "m1", "content": {"parts": ["hi"]}}},
        "scalar": 42,
        "string-message": {"message": "not an object"}
      }
    }`
	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(raw), &conv))

	var ids []string
	for rec := range Records(conv) {
		ids = append(ids, rec.NodeID)
	}
	assert.Equal(t, []string{"good"}, ids)
}

func TestPart_Variants(t *testing.T) {
	raw := `{"parts": ["plain text", {"b": 2, "a": 1}, 7]}`
	var c Content
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	require.Len(t, c.Parts, 3)

	assert.Equal(t, "plain text", c.Parts[0].String())
	// Structured parts stringify to compact JSON, key order preserved
	// from the source document.
	assert.Equal(t, `{"b":2,"a":1}`, c.Parts[1].String())
	assert.Equal(t, "7", c.Parts[2].String())
}

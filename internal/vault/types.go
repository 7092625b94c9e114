package vault

import (
	"bytes"
	"encoding/json"
)

// Conversation is one exported dialogue session: metadata plus a mapping
// from node ID to Node. The export does not guarantee any ordering among
// nodes, so the mapping is treated as an unordered bag.
type Conversation struct {
	ID         string
	Title      string
	CreateTime *float64 // unix seconds, nil when absent

	nodes map[string]json.RawMessage
}

// UnmarshalJSON decodes a conversation record leniently. Fields with an
// unexpected shape are left at their zero value rather than failing the
// whole record; a non-object mapping simply means no nodes.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		Title      json.RawMessage `json:"title"`
		CreateTime json.RawMessage `json:"create_time"`
		Mapping    json.RawMessage `json:"mapping"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID = lenientString(raw.ID)
	c.Title = lenientString(raw.Title)
	c.CreateTime = lenientUnix(raw.CreateTime)

	if len(raw.Mapping) > 0 {
		var nodes map[string]json.RawMessage
		if err := json.Unmarshal(raw.Mapping, &nodes); err == nil {
			c.nodes = nodes
		}
	}
	return nil
}

// Node is one entry in a conversation's message mapping. Parent/child links
// present in the export are ignored; only the carried message matters.
type Node struct {
	ID      string   `json:"id"`
	Message *Message `json:"message"`
}

// Message is one authored turn with role, timestamp, and content payload.
type Message struct {
	ID         string
	Author     Author
	CreateTime *float64 // unix seconds, nil when absent
	Content    Content
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		Author     json.RawMessage `json:"author"`
		CreateTime json.RawMessage `json:"create_time"`
		Content    json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.ID = lenientString(raw.ID)
	m.CreateTime = lenientUnix(raw.CreateTime)
	if len(raw.Author) > 0 {
		// A malformed author is the same as no author.
		_ = json.Unmarshal(raw.Author, &m.Author)
	}
	if len(raw.Content) > 0 {
		_ = json.Unmarshal(raw.Content, &m.Content)
	}
	return nil
}

// Author identifies who produced a message.
type Author struct {
	Role string `json:"role"`
}

// Content is a message's payload: a list of heterogeneous parts.
type Content struct {
	Parts []Part
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var raw struct {
		Parts json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		// Non-object content means an empty payload.
		return nil
	}
	if len(raw.Parts) > 0 {
		var parts []Part
		if err := json.Unmarshal(raw.Parts, &parts); err == nil {
			c.Parts = parts
		}
	}
	return nil
}

// Part is one element of a content payload. Exactly one branch is set:
// plain text, or a structured value retained as raw JSON.
type Part struct {
	Text       string
	Structured json.RawMessage
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text = s
		p.Structured = nil
		return nil
	}
	p.Structured = append(p.Structured[:0], data...)
	return nil
}

// String returns the searchable form of the part. Structured values are
// stringified to compact JSON so the result is deterministic.
func (p Part) String() string {
	if p.Structured == nil {
		return p.Text
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, p.Structured); err != nil {
		return string(p.Structured)
	}
	return buf.String()
}

// lenientString accepts a JSON string or number; anything else is "".
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// lenientUnix accepts a JSON number as unix seconds; anything else is nil.
func lenientUnix(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

package vault

import (
	"encoding/json"
	"sort"
)

// Record pairs a mapping node ID with the message it carries.
type Record struct {
	NodeID  string
	Message *Message
}

// Records walks the conversation's node mapping and sends every node that
// carries a well-formed message on the returned channel. Nodes without a
// message, and nodes that fail to decode, are skipped. A missing or
// malformed mapping yields an immediately closed channel.
//
// Node IDs are visited in sorted order so the same corpus always produces
// the same emission order. The channel is closed once all nodes have been
// visited; callers are expected to drain it.
func Records(conv Conversation) <-chan Record {
	out := make(chan Record, 16)

	go func() {
		defer close(out)

		ids := make([]string, 0, len(conv.nodes))
		for id := range conv.nodes {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			var node Node
			if err := json.Unmarshal(conv.nodes[id], &node); err != nil {
				continue
			}
			if node.Message == nil {
				continue
			}
			out <- Record{NodeID: id, Message: node.Message}
		}
	}()

	return out
}

// NodeCount reports how many nodes the conversation's mapping holds.
func (c Conversation) NodeCount() int { return len(c.nodes) }

package report

import (
	"encoding/json"
	"io"
)

// newJSONEncoder builds the encoder used for JSON exports: pretty-printed,
// UTF-8 kept as-is rather than HTML-escaped.
func newJSONEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc
}

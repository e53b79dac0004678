package schema

import "encoding/json"

// Attachment is an artifact that rides alongside a payload: a chart
// specification, a spreadsheet export, a structured article list. Exactly
// one of Data and JSON is set; MIME describes whichever one it is.
type Attachment struct {
	// Name is a human-readable label, usable as a download filename.
	Name string `json:"name,omitempty"`
	// MIME is the content type of the artifact.
	MIME string `json:"mime,omitempty"`
	// Data holds binary artifacts such as spreadsheet exports.
	Data []byte `json:"data,omitempty"`
	// JSON holds structured artifacts such as chart specs or article lists.
	JSON json.RawMessage `json:"json,omitempty"`
}

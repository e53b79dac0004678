package schema

import "encoding/json"

// Schema is the contract shared by every structured payload in the system:
// tool arguments, tool outputs, and model decision responses.
type Schema interface {
	// Attachments returns artifacts carried alongside the payload, nil for
	// plain payloads.
	Attachments() []Attachment
}

// Stringify renders a payload for a chat transcript or a tool result.
func Stringify(s Schema) string {
	if v, ok := s.(String); ok {
		return string(v)
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes renders a payload as raw bytes.
func ToBytes(s Schema) []byte {
	if v, ok := s.(String); ok {
		return []byte(v)
	}
	bs, _ := json.Marshal(s)
	return bs
}

package schema

// Base is embedded by structured payloads to satisfy Schema.
type Base struct {
	attachments []Attachment `json:"-"`
}

// Attachments returns the payload attachments.
func (r Base) Attachments() []Attachment {
	return r.attachments
}

// Attach appends artifacts to the payload.
func (r *Base) Attach(items ...Attachment) {
	r.attachments = append(r.attachments, items...)
}

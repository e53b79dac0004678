package schema

// String is a plain-text payload.
type String string

func (s String) Attachments() []Attachment {
	return nil
}

func (s String) String() string {
	return string(s)
}

func (s *String) Unmarshal(bs []byte) error {
	*s = String(bs)
	return nil
}

package document

import (
	"bytes"
	"context"
	"io"
)

// TextParser copies plain text and markdown bodies through unchanged.
type TextParser struct{}

var _ Parser = (*TextParser)(nil)

func (TextParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	_, err := io.Copy(writer, reader)
	return err
}

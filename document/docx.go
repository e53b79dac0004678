package document

import (
	"bytes"
	"context"
	"io"

	"github.com/fumiama/go-docx"
)

// DocxParser flattens Word documents to text, one block per paragraph or
// table.
type DocxParser struct{}

var _ Parser = (*DocxParser)(nil)

func (DocxParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	doc, err := docx.Parse(reader, reader.Size())
	if err != nil {
		return err
	}

	first := true
	for _, item := range doc.Document.Body.Items {
		var block string
		switch t := item.(type) {
		case *docx.Paragraph:
			block = t.String()
		case *docx.Table:
			block = t.String()
		default:
			continue
		}
		if !first {
			if _, err := writer.Write([]byte("\n\n")); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, block); err != nil {
			return err
		}
		first = false
	}
	return nil
}

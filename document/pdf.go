package document

import (
	"bytes"
	"context"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts text from PDF bodies, one line per text row.
type PDFParser struct {
	password string
}

var _ Parser = (*PDFParser)(nil)

// PDFOption customizes a PDFParser.
type PDFOption func(*PDFParser)

// WithPDFPassword opens encrypted documents.
func WithPDFPassword(password string) PDFOption {
	return func(p *PDFParser) {
		p.password = password
	}
}

func NewPDFParser(opts ...PDFOption) *PDFParser {
	ret := new(PDFParser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *PDFParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	var (
		r   *pdf.Reader
		err error
	)
	if p.password != "" {
		r, err = pdf.NewReaderEncrypted(reader, reader.Size(), func() string { return p.password })
	} else {
		r, err = pdf.NewReader(reader, reader.Size())
	}
	if err != nil {
		return err
	}

	for pageIdx := 1; pageIdx <= r.NumPage(); pageIdx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := r.Page(pageIdx)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				if _, err := io.WriteString(writer, word.S); err != nil {
					return err
				}
			}
			if _, err := writer.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
	}
	return nil
}

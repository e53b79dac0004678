package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// Parser renders a document body into plain text or markdown.
type Parser interface {
	Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error
}

// ParserFor matches a parser to the document's detected content type.
func ParserFor(doc *Document) (Parser, error) {
	m := doc.MIME()
	switch {
	case m.Is("application/pdf"):
		return NewPDFParser(), nil
	case m.Is("text/html"):
		return NewHTMLParser(), nil
	case m.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return new(DocxParser), nil
	case m.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return NewXLSXParser(), nil
	}
	// Anything in the text/plain family, markdown included, passes through.
	for p := m; p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return new(TextParser), nil
		}
	}
	return nil, fmt.Errorf("unsupported document type %s for %s", m, doc.Name())
}

// Text renders doc using the parser matched to its content type.
func Text(ctx context.Context, doc *Document) (string, error) {
	parser, err := ParserFor(doc)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := parser.Parse(ctx, doc.Reader(), &sb); err != nil {
		return "", fmt.Errorf("parse %s: %w", doc.Name(), err)
	}
	return sb.String(), nil
}

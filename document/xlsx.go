package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser renders workbook sheets as markdown tables, one heading per
// non-empty sheet. Bold, strikethrough and italic cell styles carry over,
// as do hyperlinks.
type XLSXParser struct {
	password string
}

var _ Parser = (*XLSXParser)(nil)

// XLSXOption customizes an XLSXParser.
type XLSXOption func(*XLSXParser)

// WithXLSXPassword opens encrypted workbooks.
func WithXLSXPassword(password string) XLSXOption {
	return func(p *XLSXParser) {
		p.password = password
	}
}

func NewXLSXParser(opts ...XLSXOption) *XLSXParser {
	ret := new(XLSXParser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *XLSXParser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	opts := make([]excelize.Options, 0, 1)
	if p.password != "" {
		opts = append(opts, excelize.Options{Password: p.password})
	}
	book, err := excelize.OpenReader(reader, opts...)
	if err != nil {
		return err
	}
	defer book.Close()

	wroteSheet := false
	for _, sheet := range book.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := book.Rows(sheet)
		if err != nil {
			return err
		}
		for rowIdx := 0; rows.Next(); rowIdx++ {
			if rowIdx == 0 {
				if wroteSheet {
					if _, err := writer.Write([]byte{'\n'}); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(writer, "# %s\n\n", sheet); err != nil {
					return err
				}
				wroteSheet = true
			}
			cells, err := rows.Columns()
			if err != nil {
				return err
			}
			line := make([]string, len(cells))
			for colIdx, cell := range cells {
				line[colIdx] = p.renderCell(book, sheet, rowIdx, colIdx, cell)
			}
			if _, err := fmt.Fprintf(writer, "| %s |\n", strings.Join(line, " | ")); err != nil {
				return err
			}
			if rowIdx == 0 {
				if _, err := fmt.Fprintf(writer, "|%s\n", strings.Repeat(" --- |", len(cells))); err != nil {
					return err
				}
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (p *XLSXParser) renderCell(book *excelize.File, sheet string, rowIdx, colIdx int, value string) string {
	value = strings.TrimSpace(EscapeMarkdown(StripUnprintable(value)))
	cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err != nil {
		return value
	}
	if styleID, err := book.GetCellStyle(sheet, cell); err == nil {
		if style, err := book.GetStyle(styleID); err == nil && style.Font != nil {
			switch {
			case style.Font.Bold:
				value = "**" + value + "**"
			case style.Font.Strike:
				value = "~~" + value + "~~"
			case style.Font.Italic:
				value = "*" + value + "*"
			}
		}
	}
	if _, target, _ := book.GetCellHyperLink(sheet, cell); target != "" {
		value = fmt.Sprintf("[%s](%s)", value, target)
	}
	return value
}

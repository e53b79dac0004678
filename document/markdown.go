package document

import (
	"strings"
	"unicode"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`|`, `\|`,
	`[`, `\[`,
	`]`, `\]`,
	`#`, `\#`,
)

// EscapeMarkdown backslash-escapes characters that would otherwise be read
// as markdown syntax inside a table cell.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// StripUnprintable collapses control characters and exotic whitespace into
// plain spaces and drops anything unprintable.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return r
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsPrint(r):
			return r
		}
		return -1
	}, s)
}

package lex

import (
	"fmt"
	"strings"
	"unicode"
)

// Dialect selects the grammar variant used after the Version section.
type Dialect int

const (
	// Legacy covers LAS 1.2 and 2.0.
	Legacy Dialect = iota
	V3
)

func (d Dialect) String() string {
	if d == V3 {
		return "3.0"
	}
	return "2.0"
}

// Delimiter separates data-section fields.
type Delimiter int

const (
	DelimSpace Delimiter = iota
	DelimComma
	DelimTab
)

func (d Delimiter) String() string {
	switch d {
	case DelimComma:
		return "COMMA"
	case DelimTab:
		return "TAB"
	default:
		return "SPACE"
	}
}

// Char is the byte written between fields.
func (d Delimiter) Char() byte {
	switch d {
	case DelimComma:
		return ','
	case DelimTab:
		return '\t'
	default:
		return ' '
	}
}

// ParseDelimiter accepts the DLM keywords SPACE, COMMA and TAB.
func ParseDelimiter(raw string) (Delimiter, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SPACE":
		return DelimSpace, nil
	case "COMMA":
		return DelimComma, nil
	case "TAB":
		return DelimTab, nil
	default:
		return DelimSpace, fmt.Errorf("lex: unknown delimiter %q", raw)
	}
}

// SplitFields splits one data line on d. Runs of whitespace collapse for
// DelimSpace; for DelimComma and DelimTab every delimiter ends a field, so
// consecutive delimiters yield empty fields. A double-quoted run is one
// field and its enclosing quotes are removed; inside it a doubled quote
// stands for one literal quote.
func SplitFields(text string, d Delimiter) []string {
	if d == DelimSpace {
		return splitSpace(text)
	}
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	sep := rune(d.Char())
	fields := make([]string, 0, 8)
	var cur strings.Builder
	inQuote := false
	for _, r := range text {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == sep && !inQuote:
			fields = append(fields, unquote(strings.TrimSpace(cur.String())))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, unquote(strings.TrimSpace(cur.String())))
	return fields
}

func splitSpace(text string) []string {
	fields := make([]string, 0, 8)
	var cur strings.Builder
	inQuote := false
	pending := false
	for _, r := range text {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
			pending = true
		case unicode.IsSpace(r) && !inQuote:
			if pending {
				fields = append(fields, unquote(cur.String()))
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if pending {
		fields = append(fields, unquote(cur.String()))
	}
	return fields
}

func unquote(field string) string {
	if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
		return strings.ReplaceAll(field[1:len(field)-1], `""`, `"`)
	}
	return field
}

// Quote wraps a string field so SplitFields reads it back as one field.
// Embedded quotes are doubled.
func Quote(field string, d Delimiter) string {
	needs := field == "" || strings.ContainsRune(field, '"')
	if d == DelimSpace {
		needs = needs || strings.IndexFunc(field, unicode.IsSpace) >= 0
	} else {
		needs = needs || strings.IndexByte(field, d.Char()) >= 0 || field != strings.TrimSpace(field)
	}
	if !needs {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

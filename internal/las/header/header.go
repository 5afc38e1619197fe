package header

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/danmuck/lasdev/internal/las/lex"
)

var (
	ErrMalformedLine   = errors.New("header: malformed header line")
	ErrMalformedFormat = fmt.Errorf("%w: bad format specifier", ErrMalformedLine)
)

const escape = '\\'

// Entry is one parsed header line:
//
//	MNEM[n].UNIT  VALUE : DESCRIPTION {FORMAT} | ASSOC1, ASSOC2
//
// ArrayIndex is 0 when the mnemonic carries no [n] suffix.
type Entry struct {
	Mnemonic     string
	ArrayIndex   int
	Unit         string
	Value        string
	Description  string
	Format       string
	Associations []string
}

// Parse decodes one content line of a header section. In the Legacy
// dialect "|" has no meaning and a trailing {...} is only split off when
// it is a valid format specifier.
func Parse(text string, dialect lex.Dialect) (Entry, error) {
	dot := indexUnescaped(text, '.', 0)
	if dot < 0 {
		return Entry{}, fmt.Errorf("%w: missing '.' after mnemonic", ErrMalformedLine)
	}

	var e Entry
	mnem, idx, err := splitArrayIndex(strings.TrimSpace(text[:dot]))
	if err != nil {
		return Entry{}, err
	}
	if mnem == "" {
		return Entry{}, fmt.Errorf("%w: empty mnemonic", ErrMalformedLine)
	}
	e.Mnemonic, e.ArrayIndex = Unescape(mnem), idx

	rest := text[dot+1:]
	unitEnd := strings.IndexFunc(rest, unicode.IsSpace)
	if unitEnd < 0 {
		unitEnd = len(rest)
	}
	e.Unit = rest[:unitEnd]
	rest = rest[unitEnd:]

	// The association list and format trail the description and may hold
	// colons of their own ({hh:mm}), so they come off before the colon search.
	rest, e.Associations = splitAssociations(rest, dialect)
	rest, e.Format, err = splitFormat(rest, dialect)
	if err != nil {
		return Entry{}, err
	}

	// A colon glued to the unit ("DEPT.M: Depth") still separates the
	// value from the description.
	if colon := lastIndexUnescaped(e.Unit, ':'); colon >= 0 && lastIndexUnescaped(rest, ':') < 0 {
		rest = e.Unit[colon:] + rest
		e.Unit = e.Unit[:colon]
	}

	if colon := lastIndexUnescaped(rest, ':'); colon >= 0 {
		e.Value = Unescape(strings.TrimSpace(rest[:colon]))
		e.Description = Unescape(strings.TrimSpace(rest[colon+1:]))
	} else {
		e.Value = Unescape(strings.TrimSpace(rest))
	}
	return e, nil
}

// Escape puts a backslash before every character of s found in special.
func Escape(s, special string) string {
	if !strings.ContainsAny(s, special+string(escape)) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == escape || strings.ContainsRune(special, r) {
			b.WriteRune(escape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unescape removes the backslash from escaped characters.
func Unescape(s string) string {
	if strings.IndexByte(s, escape) < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == escape && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// BaseName strips an [n] suffix from a mnemonic.
func BaseName(mnemonic string) string {
	base, _, err := splitArrayIndex(mnemonic)
	if err != nil {
		return mnemonic
	}
	return base
}

func splitArrayIndex(mnem string) (string, int, error) {
	if !strings.HasSuffix(mnem, "]") {
		return mnem, 0, nil
	}
	open := strings.LastIndexByte(mnem, '[')
	if open < 0 {
		return "", 0, fmt.Errorf("%w: unbalanced array index in %q", ErrMalformedLine, mnem)
	}
	n, err := strconv.Atoi(mnem[open+1 : len(mnem)-1])
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("%w: invalid array index in %q", ErrMalformedLine, mnem)
	}
	return strings.TrimSpace(mnem[:open]), n, nil
}

// splitAssociations cuts the last unescaped "|" outside braces.
func splitAssociations(rest string, dialect lex.Dialect) (string, []string) {
	if dialect != lex.V3 {
		return rest, nil
	}
	bar, depth := -1, 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case escape:
			i++
		case '{':
			depth++
		case '}':
			depth--
		case '|':
			if depth <= 0 {
				bar = i
			}
		}
	}
	if bar < 0 {
		return rest, nil
	}
	var assocs []string
	for _, tok := range strings.Split(rest[bar+1:], ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			assocs = append(assocs, tok)
		}
	}
	return rest[:bar], assocs
}

// splitFormat cuts a trailing balanced {...}. Escaped braces are text.
func splitFormat(rest string, dialect lex.Dialect) (string, string, error) {
	trimmed := strings.TrimRightFunc(rest, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, "}") {
		return rest, "", nil
	}
	last := len(trimmed) - 1
	var opens []int
	open, closed := -1, false
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case escape:
			i++
		case '{':
			opens = append(opens, i)
		case '}':
			if i == last {
				closed = true
			}
			if len(opens) == 0 {
				continue
			}
			o := opens[len(opens)-1]
			opens = opens[:len(opens)-1]
			if i == last {
				open = o
			}
		}
	}
	if !closed {
		return rest, "", nil
	}
	if open < 0 {
		if dialect == lex.V3 {
			return "", "", fmt.Errorf("%w: unbalanced braces", ErrMalformedFormat)
		}
		return rest, "", nil
	}
	raw := strings.TrimSpace(trimmed[open+1 : last])
	if _, err := ParseFormat(raw); err != nil {
		if dialect == lex.V3 {
			return "", "", err
		}
		return rest, "", nil
	}
	return trimmed[:open], raw, nil
}

func indexUnescaped(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == escape {
			i++
			continue
		}
		if s[i] == c {
			return i
		}
	}
	return -1
}

func lastIndexUnescaped(s string, c byte) int {
	last := -1
	for i := 0; i < len(s); i++ {
		if s[i] == escape {
			i++
			continue
		}
		if s[i] == c {
			last = i
		}
	}
	return last
}

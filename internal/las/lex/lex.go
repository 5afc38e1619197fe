package lex

import (
	"strings"
	"unicode"
)

const (
	SectionMarker = '~'
	CommentMarker = '#'
)

// Kind is the classification of one physical line.
type Kind int

const (
	KindBlank Kind = iota
	KindComment
	KindSection
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindComment:
		return "comment"
	case KindSection:
		return "section"
	case KindContent:
		return "content"
	default:
		return "unknown"
	}
}

// Line is one classified physical line. Num is 1-based.
type Line struct {
	Num    int
	Kind   Kind
	Text   string
	Header SectionHeader
}

// Classify returns the kind of a single physical line. Header is only
// populated for KindSection lines.
func Classify(num int, text string) Line {
	text = strings.TrimRight(text, "\r\n")
	line := Line{Num: num, Text: text}
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	switch {
	case strings.TrimSpace(trimmed) == "":
		line.Kind = KindBlank
	case trimmed[0] == CommentMarker:
		line.Kind = KindComment
	case trimmed[0] == SectionMarker:
		line.Kind = KindSection
		line.Header = ParseTitle(trimmed[1:])
	default:
		line.Kind = KindContent
	}
	return line
}

// Scan splits text into classified lines, numbering from 1. A trailing
// newline does not produce an extra blank line.
func Scan(text string) []Line {
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	lines := make([]Line, 0, len(raw))
	for i, r := range raw {
		lines = append(lines, Classify(i+1, r))
	}
	return lines
}

// Significant reports whether the line carries content for a section,
// i.e. it is neither blank nor a comment.
func (l Line) Significant() bool {
	return l.Kind == KindContent || l.Kind == KindSection
}

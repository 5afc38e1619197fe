package las

import (
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/lasdev/internal/las/header"
	"github.com/danmuck/lasdev/internal/las/lex"
)

// Target selects the dialect Encode writes.
type Target int

const (
	// TargetKeep writes the document's own dialect.
	TargetKeep Target = iota
	TargetLegacy
	TargetV3
)

func (t Target) String() string {
	switch t {
	case TargetLegacy:
		return "2.0"
	case TargetV3:
		return "3.0"
	default:
		return "keep"
	}
}

// ParseTarget accepts "", "keep", "1.2", "2.0" and "3.0".
func ParseTarget(raw string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "keep":
		return TargetKeep, nil
	case "1.2", "2", "2.0", "legacy":
		return TargetLegacy, nil
	case "3", "3.0":
		return TargetV3, nil
	default:
		return TargetKeep, fmt.Errorf("las: unknown output dialect %q", raw)
	}
}

// WriteOptions controls Encode. Zero values keep the document's own
// dialect and delimiter.
type WriteOptions struct {
	Target    Target
	Delimiter string
}

// Marshal renders doc as LAS text.
func Marshal(doc *Document, opts WriteOptions) (string, error) {
	var b strings.Builder
	if err := render(&b, doc, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode writes doc to w. Rows are always written one per line with
// WRAP NO; units, descriptions and format specifiers are written as read.
func Encode(w io.Writer, doc *Document, opts WriteOptions) error {
	text, err := Marshal(doc, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

type writer struct {
	b       *strings.Builder
	dialect lex.Dialect
	delim   lex.Delimiter
}

func render(b *strings.Builder, doc *Document, opts WriteOptions) error {
	w := &writer{b: b, dialect: doc.Version.Dialect, delim: doc.Version.Delimiter}
	switch opts.Target {
	case TargetLegacy:
		if doc.Version.Dialect == lex.V3 {
			return fmt.Errorf("%w: VERS %s", ErrDialectDowngrade, doc.Version.Vers)
		}
		w.dialect = lex.Legacy
	case TargetV3:
		w.dialect = lex.V3
	}
	if opts.Delimiter != "" {
		d, err := lex.ParseDelimiter(opts.Delimiter)
		if err != nil {
			return err
		}
		w.delim = d
	}
	if w.dialect == lex.Legacy {
		w.delim = lex.DelimSpace
		for _, s := range doc.Sets {
			if s.Name != lex.LogSet || s.Index != 0 {
				return fmt.Errorf("%w: set ~%s", ErrDialectDowngrade, s.Title(lex.CategoryData))
			}
		}
	}

	w.version(doc)
	w.well(doc)
	for _, s := range doc.Sets {
		if w.dialect == lex.Legacy {
			w.definition(s)
			w.parameters(s)
		} else {
			w.parameters(s)
			w.definition(s)
		}
	}
	if doc.Other != "" {
		w.title("~OTHER", "~Other")
		w.b.WriteString(strings.TrimRight(doc.Other, "\n"))
		w.b.WriteString("\n\n")
	}
	for _, s := range doc.Sets {
		w.data(s)
	}
	return nil
}

func (w *writer) title(legacy, v3 string) {
	if w.dialect == lex.Legacy {
		w.b.WriteString(legacy)
	} else {
		w.b.WriteString(v3)
	}
	w.b.WriteByte('\n')
}

// sectionTitle is the V3 title of a section; the primary log set keeps the
// short keywords.
func sectionTitle(h lex.SectionHeader) string {
	if h.Set == lex.LogSet && h.Index == 0 {
		switch h.Category {
		case lex.CategoryParameter:
			return "Parameter"
		case lex.CategoryDefinition:
			return "Curve"
		case lex.CategoryData:
			return "ASCII"
		}
	}
	return h.Name()
}

func (w *writer) line(mnemonic, unit, value, description, format string, assocs []string) {
	fmt.Fprintf(w.b, " %s.%s  %s : %s", header.Escape(mnemonic, "."), unit, w.escapeValue(value), w.escapeDescription(description))
	if format != "" {
		fmt.Fprintf(w.b, " {%s}", format)
	}
	if w.dialect == lex.V3 && len(assocs) > 0 {
		fmt.Fprintf(w.b, " | %s", strings.Join(assocs, ", "))
	}
	w.b.WriteByte('\n')
}

// Braces are escaped in both dialects so text is never read back as a
// format specifier.
func (w *writer) escapeDescription(s string) string {
	if w.dialect == lex.V3 {
		return header.Escape(s, ":|{}")
	}
	return header.Escape(s, ":{}")
}

func (w *writer) escapeValue(s string) string {
	if w.dialect == lex.V3 {
		return header.Escape(s, "|{}")
	}
	return header.Escape(s, "")
}

func (w *writer) version(doc *Document) {
	vers := doc.Version.Vers
	if w.dialect == lex.V3 && doc.Version.Dialect != lex.V3 {
		vers = "3.0"
	}
	if vers == "" {
		vers = w.dialect.String()
	}
	w.title("~VERSION INFORMATION", "~Version")
	w.line("VERS", "", vers, "CWLS LOG ASCII STANDARD - VERSION "+vers, "", nil)
	w.line("WRAP", "", "NO", "ONE LINE PER DEPTH STEP", "", nil)
	if w.dialect == lex.V3 {
		w.line("DLM", "", w.delim.String(), "DELIMITING CHARACTER BETWEEN DATA COLUMNS", "", nil)
	}
	for _, e := range doc.Version.Extra {
		w.line(e.Mnemonic, e.Unit, e.Value, e.Description, e.Format, nil)
	}
	w.b.WriteByte('\n')
}

func (w *writer) well(doc *Document) {
	w.title("~WELL INFORMATION", "~Well")
	for _, e := range doc.Well.Entries() {
		w.line(e.Mnemonic, e.Unit, e.Value, e.Description, e.Format, nil)
	}
	w.b.WriteByte('\n')
}

func (w *writer) parameters(s *DataSet) {
	if len(s.Parameters) == 0 {
		return
	}
	w.title("~PARAMETER INFORMATION", "~"+sectionTitle(s.header(lex.CategoryParameter)))
	for _, p := range s.Parameters {
		w.line(p.Name(), p.Unit, p.Value, p.Description, p.Format, p.Associations)
	}
	w.b.WriteByte('\n')
}

func (w *writer) definition(s *DataSet) {
	if !s.HasDefinition {
		return
	}
	w.title("~CURVE INFORMATION", "~"+sectionTitle(s.header(lex.CategoryDefinition)))
	for _, c := range s.Curves {
		w.line(c.Name(), c.Unit, c.Value, c.Description, c.Format, c.Associations)
	}
	w.b.WriteByte('\n')
}

func (w *writer) data(s *DataSet) {
	if !s.HasData {
		return
	}
	if w.dialect == lex.Legacy {
		names := make([]string, 0, len(s.Columns))
		for _, c := range s.Columns {
			names = append(names, c.Name)
		}
		w.b.WriteString("~A  " + strings.Join(names, "  ") + "\n")
	} else {
		binding := lex.ParseReference(s.Binding)
		fmt.Fprintf(w.b, "~%s | %s\n", sectionTitle(s.header(lex.CategoryData)), sectionTitle(binding))
	}

	sep := string(w.delim.Char())
	fields := make([]string, 0, len(s.Columns))
	for row := 0; row < s.Rows; row++ {
		fields = fields[:0]
		for _, c := range s.Columns {
			for comp := 0; comp < c.Arity; comp++ {
				if c.IsString() {
					fields = append(fields, lex.Quote(c.Text(row, comp), w.delim))
				} else {
					fields = append(fields, c.Text(row, comp))
				}
			}
		}
		w.b.WriteString(strings.Join(fields, sep))
		w.b.WriteByte('\n')
	}
	w.b.WriteByte('\n')
}

package dev

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/las/ascii"
	"github.com/danmuck/lasdev/internal/las/lex"
)

var (
	ErrNoHeader        = errors.New("dev: no column header line")
	ErrDuplicateColumn = errors.New("dev: duplicate column name")
	ErrWrite           = errors.New("dev: write failed")
)

// Options configures Parse. Default replaces tokens that are not numbers
// and fills missing trailing fields; the zero value gives 0.0.
type Options struct {
	Default float64
}

// Document is a decoded survey. Columns keeps the header order.
type Document struct {
	Columns []string
	Values  map[string][]float64
}

// Rows is the number of data rows.
func (d *Document) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Values[d.Columns[0]])
}

// Column returns the values of name.
func (d *Document) Column(name string) ([]float64, bool) {
	v, ok := d.Values[name]
	return v, ok
}

// Decode reads all of r and parses it.
func Decode(r io.Reader, opts Options) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dev: read: %w", err)
	}
	return Parse(string(b), opts)
}

// Parse decodes DEV text. Blank lines and # comments are skipped anywhere.
func Parse(text string, opts Options) (*Document, error) {
	doc := &Document{Values: make(map[string][]float64)}
	for _, l := range lex.Scan(text) {
		if l.Kind != lex.KindContent {
			continue
		}
		fields := lex.SplitFields(l.Text, lex.DelimSpace)
		if doc.Columns == nil {
			for _, name := range fields {
				if _, dup := doc.Values[name]; dup {
					return nil, fmt.Errorf("%w: %q on line %d", ErrDuplicateColumn, name, l.Num)
				}
				doc.Values[name] = make([]float64, 0, 256)
			}
			doc.Columns = fields
			continue
		}
		if len(fields) > len(doc.Columns) {
			log.Debug().Int("line", l.Num).Int("extra", len(fields)-len(doc.Columns)).Msg("dev row has extra fields")
		}
		for i, name := range doc.Columns {
			v := opts.Default
			if i < len(fields) {
				if f, err := strconv.ParseFloat(fields[i], 64); err == nil {
					v = f
				}
			}
			doc.Values[name] = append(doc.Values[name], v)
		}
	}
	if doc.Columns == nil {
		return nil, ErrNoHeader
	}
	return doc, nil
}

// Encode writes the header line and one whitespace-delimited line per row.
func Encode(w io.Writer, doc *Document) error {
	var b strings.Builder
	b.WriteString(strings.Join(doc.Columns, " "))
	b.WriteByte('\n')
	fields := make([]string, len(doc.Columns))
	for row := 0; row < doc.Rows(); row++ {
		for i, name := range doc.Columns {
			fields[i] = ascii.FormatValue(doc.Values[name][row])
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

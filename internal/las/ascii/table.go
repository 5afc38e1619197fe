package ascii

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/danmuck/lasdev/internal/las/lex"
)

// Channel is one logical column of a data section. Arity is the number of
// components stored per row (1 for plain curves). String channels keep their
// raw text instead of a number.
type Channel struct {
	Name   string
	Arity  int
	String bool
}

func (c Channel) arity() int {
	if c.Arity < 1 {
		return 1
	}
	return c.Arity
}

// Layout is everything the reader needs to know about a data section. The
// first channel is the index channel.
type Layout struct {
	Channels  []Channel
	Delimiter lex.Delimiter
	Wrap      bool
	Null      float64
}

// Width is the number of fields in one complete row.
func (l Layout) Width() int {
	n := 0
	for _, c := range l.Channels {
		n += c.arity()
	}
	return n
}

// Column holds one logical channel's values in row-major order: component j
// of row i is at i*Arity+j. Numeric channels fill Values, string channels
// fill Strings.
type Column struct {
	Name    string
	Arity   int
	Values  []float64
	Strings []string
}

// IsString reports whether the column stores text.
func (c Column) IsString() bool {
	return c.Strings != nil
}

// At returns component comp of row. String columns yield NaN.
func (c Column) At(row, comp int) float64 {
	if c.IsString() {
		return math.NaN()
	}
	return c.Values[row*c.Arity+comp]
}

// Text returns component comp of row as written in a data line.
func (c Column) Text(row, comp int) string {
	if c.IsString() {
		return c.Strings[row*c.Arity+comp]
	}
	return FormatValue(c.Values[row*c.Arity+comp])
}

// Row returns the components of one row.
func (c Column) Row(row int) []float64 {
	if c.IsString() {
		return nil
	}
	return c.Values[row*c.Arity : (row+1)*c.Arity]
}

// Table is a decoded data section.
type Table struct {
	Rows    int
	Columns []Column
}

// Index returns the index channel's values.
func (t *Table) Index() []float64 {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}
	return t.Columns[0].Values
}

// FormatValue renders a number with the fewest digits that parse back to
// the same float64.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RowSink receives the fields of a data section one at a time. Both reading
// protocols drive the same sink; only the way they find row boundaries
// differs.
type RowSink interface {
	AppendField(line int, raw string) error
	EndRow(line int) error
}

type slot struct {
	col  int
	comp int
}

// columnSink accumulates fields into per-channel slices. Appends are
// amortized O(1), so a section costs O(total values) however it is wrapped.
type columnSink struct {
	layout  Layout
	slots   []slot
	columns []Column
	pos     int
	rows    int

	last      float64
	direction int
}

func newColumnSink(layout Layout) *columnSink {
	s := &columnSink{layout: layout}
	for i, ch := range layout.Channels {
		col := Column{Name: ch.Name, Arity: ch.arity()}
		if ch.String {
			col.Strings = make([]string, 0, 64*col.Arity)
		} else {
			col.Values = make([]float64, 0, 64*col.Arity)
		}
		s.columns = append(s.columns, col)
		for comp := 0; comp < col.Arity; comp++ {
			s.slots = append(s.slots, slot{col: i, comp: comp})
		}
	}
	return s
}

func (s *columnSink) AppendField(line int, raw string) error {
	raw = strings.TrimSpace(raw)
	if s.pos >= len(s.slots) {
		if raw == "" {
			return nil
		}
		return lineErr(line, fmt.Errorf("%w: expected %d", ErrRowWidth, len(s.slots)))
	}
	at := s.slots[s.pos]
	col := &s.columns[at.col]
	switch {
	case s.pos == 0:
		v, err := s.index(raw)
		if err != nil {
			return lineErr(line, err)
		}
		col.Values = append(col.Values, v)
	case col.Strings != nil:
		col.Strings = append(col.Strings, raw)
	default:
		col.Values = append(col.Values, s.number(raw))
	}
	s.pos++
	return nil
}

func (s *columnSink) EndRow(line int) error {
	if s.pos == 0 {
		return nil
	}
	for s.pos < len(s.slots) {
		if err := s.AppendField(line, ""); err != nil {
			return err
		}
	}
	s.pos = 0
	s.rows++
	return nil
}

// pending reports how many fields of the current row have been appended.
func (s *columnSink) pending() int {
	return s.pos
}

func (s *columnSink) table() *Table {
	for i := range s.columns {
		s.columns[i].Values = slices.Clip(s.columns[i].Values)
		s.columns[i].Strings = slices.Clip(s.columns[i].Strings)
	}
	return &Table{Rows: s.rows, Columns: s.columns}
}

func (s *columnSink) number(raw string) float64 {
	if raw == "" {
		return s.layout.Null
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return s.layout.Null
	}
	return v
}

func (s *columnSink) index(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidIndexValue)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndexValue, raw)
	}
	if v == s.layout.Null {
		return 0, fmt.Errorf("%w: NULL %q", ErrInvalidIndexValue, raw)
	}
	if s.rows > 0 {
		var dir int
		switch {
		case v > s.last:
			dir = 1
		case v < s.last:
			dir = -1
		}
		if dir != 0 && s.direction != 0 && dir != s.direction {
			return 0, fmt.Errorf("%w: %s after %s", ErrNonMonotonicIndex, FormatValue(v), FormatValue(s.last))
		}
		if s.direction == 0 {
			s.direction = dir
		}
	}
	s.last = v
	return v, nil
}

package ascii

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/las/lex"
)

// Read decodes the content lines of one data section. Blank and comment
// lines are skipped; lines of any other kind are not expected here.
func Read(lines []lex.Line, layout Layout) (*Table, error) {
	if len(layout.Channels) == 0 {
		return nil, ErrEmptyLayout
	}
	if layout.Channels[0].String {
		return nil, fmt.Errorf("%w: index channel %s has a string format", ErrInvalidIndexValue, layout.Channels[0].Name)
	}
	sink := newColumnSink(layout)
	rows := contentLines(lines)

	wrap := layout.Wrap
	if wrap && len(rows) > 0 && len(lex.SplitFields(rows[0].Text, layout.Delimiter)) >= layout.Width() {
		log.Warn().
			Int("line", rows[0].Num).
			Int("width", layout.Width()).
			Msg("data section declared WRAP YES but rows are not wrapped; reading one row per line")
		wrap = false
	}

	var err error
	if wrap {
		err = readWrapped(rows, layout, sink)
	} else {
		err = readFlat(rows, layout, sink)
	}
	if err != nil {
		return nil, err
	}
	return sink.table(), nil
}

func contentLines(lines []lex.Line) []lex.Line {
	out := make([]lex.Line, 0, len(lines))
	for _, l := range lines {
		if l.Kind == lex.KindContent {
			out = append(out, l)
		}
	}
	return out
}

// readFlat treats every line as one row. Short rows are padded with NULL.
func readFlat(rows []lex.Line, layout Layout, sink RowSink) error {
	for _, l := range rows {
		for _, field := range lex.SplitFields(l.Text, layout.Delimiter) {
			if err := sink.AppendField(l.Num, field); err != nil {
				return err
			}
		}
		if err := sink.EndRow(l.Num); err != nil {
			return err
		}
	}
	return nil
}

type wrapState int

const (
	expectIndexLine wrapState = iota
	expectContinuation
)

// readWrapped runs the index-line / continuation state machine. An index
// line carries only the index value; continuation lines fill the remaining
// channels, and the row ends when every channel has a field, however many
// lines that took.
func readWrapped(rows []lex.Line, layout Layout, sink *columnSink) error {
	width := layout.Width()
	state := expectIndexLine
	last := 0
	for _, l := range rows {
		last = l.Num
		fields := lex.SplitFields(l.Text, layout.Delimiter)
		if len(fields) == 0 {
			continue
		}
		switch state {
		case expectIndexLine:
			if n := nonBlank(fields[1:]); n > 0 {
				return lineErr(l.Num, fmt.Errorf("%w: index line has %d fields after the index value", ErrRowWidth, n))
			}
			if err := sink.AppendField(l.Num, fields[0]); err != nil {
				return err
			}
			if width == 1 {
				if err := sink.EndRow(l.Num); err != nil {
					return err
				}
				continue
			}
			state = expectContinuation
		case expectContinuation:
			for i, field := range fields {
				if err := sink.AppendField(l.Num, field); err != nil {
					return err
				}
				if sink.pending() < width {
					continue
				}
				if n := nonBlank(fields[i+1:]); n > 0 {
					return lineErr(l.Num, fmt.Errorf("%w: %d fields left over after a complete row", ErrRowWidth, n))
				}
				if err := sink.EndRow(l.Num); err != nil {
					return err
				}
				state = expectIndexLine
				break
			}
		}
	}
	if filled := sink.pending(); filled > 0 {
		return lineErr(last, fmt.Errorf("%w: %d of %d fields", ErrTruncatedWrappedRow, filled, width))
	}
	return nil
}

func nonBlank(fields []string) int {
	n := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return n
}

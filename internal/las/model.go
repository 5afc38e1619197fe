package las

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/lasdev/internal/las/ascii"
	"github.com/danmuck/lasdev/internal/las/header"
	"github.com/danmuck/lasdev/internal/las/lex"
)

// HeaderEntry is a Version or Well line. Values stay as written; numeric
// interpretation happens where a value is used.
type HeaderEntry struct {
	Mnemonic    string
	Unit        string
	Value       string
	Description string
	Format      string
}

// VersionInfo is the resolved ~Version section.
type VersionInfo struct {
	Vers      string
	Number    float64
	Wrap      bool
	Delimiter lex.Delimiter
	Dialect   lex.Dialect
	// Extra holds Version lines other than VERS, WRAP and DLM.
	Extra []HeaderEntry
}

// Well is the ordered ~Well section with case-insensitive lookup.
type Well struct {
	entries []HeaderEntry
	index   map[string]int
}

// Set adds e, replacing an earlier entry with the same mnemonic in place.
// It reports whether an entry was replaced.
func (w *Well) Set(e HeaderEntry) bool {
	if w.index == nil {
		w.index = make(map[string]int)
	}
	key := strings.ToUpper(e.Mnemonic)
	if i, ok := w.index[key]; ok {
		w.entries[i] = e
		return true
	}
	w.index[key] = len(w.entries)
	w.entries = append(w.entries, e)
	return false
}

// Get looks up a mnemonic case-insensitively.
func (w *Well) Get(mnemonic string) (HeaderEntry, bool) {
	i, ok := w.index[strings.ToUpper(mnemonic)]
	if !ok {
		return HeaderEntry{}, false
	}
	return w.entries[i], true
}

// Value returns the raw value of mnemonic, or "" when absent.
func (w *Well) Value(mnemonic string) string {
	e, _ := w.Get(mnemonic)
	return e.Value
}

// Float parses the value of mnemonic.
func (w *Well) Float(mnemonic string) (float64, error) {
	e, ok := w.Get(mnemonic)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingRequiredField, mnemonic)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(e.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("well %s: %w", mnemonic, err)
	}
	return v, nil
}

// Null is the numeric NULL marker, -999.25 when NULL is absent or unparsable.
func (w *Well) Null() float64 {
	v, err := w.Float("NULL")
	if err != nil {
		return DefaultNull
	}
	return v
}

// Entries returns the entries in file order.
func (w *Well) Entries() []HeaderEntry {
	return w.entries
}

// Len is the number of entries.
func (w *Well) Len() int {
	return len(w.entries)
}

// DefaultNull is the conventional LAS NULL value.
const DefaultNull = -999.25

// CurveDefinition is one line of a definition section. Mnemonic is the
// canonical base name; Original is the mnemonic as written, before alias
// resolution and duplicate renaming.
type CurveDefinition struct {
	Mnemonic     string
	Original     string
	ArrayIndex   int
	Unit         string
	Value        string
	Description  string
	Format       string
	Associations []string
}

// Name is the mnemonic with its [n] suffix, as it appears in a header line.
func (c CurveDefinition) Name() string {
	if c.ArrayIndex > 0 {
		return fmt.Sprintf("%s[%d]", c.Mnemonic, c.ArrayIndex)
	}
	return c.Mnemonic
}

// IsString reports whether the curve's format keeps values as text.
func (c CurveDefinition) IsString() bool {
	if c.Format == "" {
		return false
	}
	f, err := header.ParseFormat(c.Format)
	return err == nil && f.IsString()
}

// Channel is one logical data column. Plain curves have Arity 1; array
// channels group the BASE[1..n] definitions under one name.
type Channel struct {
	Name   string
	Arity  int
	String bool
	// Curves indexes the set's Curves slice, one entry per component.
	Curves []int
}

// ParameterEntry is one parameter line. Identity is the mnemonic, array
// index and association list together, so zoned values sharing a mnemonic
// are separate entries.
type ParameterEntry struct {
	Mnemonic     string
	ArrayIndex   int
	Unit         string
	Value        string
	Description  string
	Format       string
	Associations []string
}

// Identity is the key under which duplicate parameters replace each other.
func (p ParameterEntry) Identity() string {
	assocs := make([]string, len(p.Associations))
	for i, a := range p.Associations {
		assocs[i] = strings.ToUpper(a)
	}
	return fmt.Sprintf("%s[%d]|%s", strings.ToUpper(p.Mnemonic), p.ArrayIndex, strings.Join(assocs, ","))
}

// Name is the mnemonic with its [n] suffix.
func (p ParameterEntry) Name() string {
	if p.ArrayIndex > 0 {
		return fmt.Sprintf("%s[%d]", p.Mnemonic, p.ArrayIndex)
	}
	return p.Mnemonic
}

// DataSet groups the Parameter, Definition and Data sections sharing a set
// name and [n] index. Channels are derived from the set's own Curves.
// Binding is the title of the definition the data section was read against,
// which may belong to another set; Columns follow that definition's channels.
type DataSet struct {
	Name  string
	Index int

	Parameters    []ParameterEntry
	Curves        []CurveDefinition
	HasDefinition bool

	Binding  string
	Channels []Channel
	Columns  []ascii.Column
	Rows     int
	HasData  bool
}

func (s *DataSet) header(c lex.Category) lex.SectionHeader {
	return lex.SectionHeader{Set: s.Name, Category: c, Index: s.Index}
}

// Title is the canonical V3 section name for category c of this set.
func (s *DataSet) Title(c lex.Category) string {
	return s.header(c).Name()
}

// Key identifies the set case-insensitively.
func (s *DataSet) Key() string {
	return s.header(lex.CategoryData).SetKey()
}

// Column returns the data column of a logical channel.
func (s *DataSet) Column(name string) (ascii.Column, bool) {
	for _, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ascii.Column{}, false
}

// Document is one decoded LAS file.
type Document struct {
	Version  VersionInfo
	Well     Well
	Sets     []*DataSet
	Encoding string
	Other    string
}

// Set finds a data set by name and index.
func (d *Document) Set(name string, index int) (*DataSet, bool) {
	key := (&DataSet{Name: name, Index: index}).Key()
	for _, s := range d.Sets {
		if s.Key() == key {
			return s, true
		}
	}
	return nil, false
}

// Log returns the primary log data set.
func (d *Document) Log() (*DataSet, bool) {
	return d.Set(lex.LogSet, 0)
}

// Curve finds a curve definition in any set. An [n] suffix selects one
// component of an array channel; a bare base name matches its first
// component.
func (d *Document) Curve(mnemonic string) (CurveDefinition, bool) {
	base := header.BaseName(mnemonic)
	for _, s := range d.Sets {
		for _, c := range s.Curves {
			if strings.EqualFold(c.Name(), mnemonic) || (base == mnemonic && strings.EqualFold(c.Mnemonic, base)) {
				return c, true
			}
		}
	}
	return CurveDefinition{}, false
}

// ArrayCurves returns the components of the array channel base in index
// order.
func (d *Document) ArrayCurves(base string) []CurveDefinition {
	var out []CurveDefinition
	for _, s := range d.Sets {
		for _, ch := range s.Channels {
			if !strings.EqualFold(ch.Name, base) || ch.Arity < 2 {
				continue
			}
			for _, i := range ch.Curves {
				out = append(out, s.Curves[i])
			}
			return out
		}
		for _, c := range s.Curves {
			if c.ArrayIndex > 0 && strings.EqualFold(c.Mnemonic, base) {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// ParametersByAssociation returns every parameter, across sets, that
// carries association name.
func (d *Document) ParametersByAssociation(name string) []ParameterEntry {
	var out []ParameterEntry
	for _, s := range d.Sets {
		for _, p := range s.Parameters {
			for _, a := range p.Associations {
				if strings.EqualFold(a, name) {
					out = append(out, p)
					break
				}
			}
		}
	}
	return out
}

package las

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/las/ascii"
	"github.com/danmuck/lasdev/internal/las/header"
	"github.com/danmuck/lasdev/internal/las/lex"
)

// ParseOptions configures one parse call.
type ParseOptions struct {
	// Canonical maps a raw curve mnemonic to its canonical name. Nil means
	// identity.
	Canonical func(string) string
	// Encoding is recorded on the Document as the source encoding.
	Encoding string
}

func DefaultParseOptions() ParseOptions {
	return ParseOptions{Encoding: "utf-8"}
}

// Decode reads all of r and parses it.
func Decode(r io.Reader, opts ParseOptions) (*Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("las: read: %w", err)
	}
	return Parse(string(b), opts)
}

// Parse decodes LAS text. All state lives in the parser value created here,
// so concurrent calls share nothing.
func Parse(text string, opts ParseOptions) (*Document, error) {
	p := newParser(opts)
	return p.run(lex.Scan(text))
}

type stage int

const (
	expectVersion stage = iota
	expectWell
	inBody
)

type section struct {
	head lex.Line
	body []lex.Line
}

type parser struct {
	opts  ParseOptions
	doc   *Document
	stage stage

	seen map[string]int
	sets map[string]*DataSet
	// defs maps a definition section key to the set holding its curves.
	defs map[string]*DataSet
	// arity records the component count of every array channel in the file.
	arity  map[string]int
	params map[string]map[string]int
	other  []string
}

func newParser(opts ParseOptions) *parser {
	if opts.Canonical == nil {
		opts.Canonical = func(s string) string { return s }
	}
	return &parser{
		opts:   opts,
		doc:    &Document{Encoding: opts.Encoding},
		seen:   make(map[string]int),
		sets:   make(map[string]*DataSet),
		defs:   make(map[string]*DataSet),
		arity:  make(map[string]int),
		params: make(map[string]map[string]int),
	}
}

func (p *parser) run(lines []lex.Line) (*Document, error) {
	var cur *section
	for _, l := range lines {
		switch l.Kind {
		case lex.KindSection:
			if cur != nil {
				if err := p.section(cur); err != nil {
					return nil, err
				}
			}
			cur = &section{head: l}
		case lex.KindContent:
			if cur == nil {
				return nil, &ParseError{Line: l.Num, Err: fmt.Errorf("%w: content before the first section", ErrSectionOrder)}
			}
			cur.body = append(cur.body, l)
		default:
			if cur != nil {
				cur.body = append(cur.body, l)
			}
		}
	}
	if cur != nil {
		if err := p.section(cur); err != nil {
			return nil, err
		}
	}

	end := 0
	if len(lines) > 0 {
		end = lines[len(lines)-1].Num
	}
	switch p.stage {
	case expectVersion:
		return nil, &ParseError{Line: end, Err: fmt.Errorf("%w: %w: no ~Version section", ErrVersion, ErrMissingRequiredField)}
	case expectWell:
		return nil, &ParseError{Line: end, Err: fmt.Errorf("%w: no ~Well section", ErrSectionOrder)}
	}
	hasData := false
	for _, s := range p.doc.Sets {
		hasData = hasData || s.HasData
	}
	if !hasData {
		return nil, &ParseError{Line: end, Err: ErrNoDataSection}
	}
	p.doc.Other = strings.Join(p.other, "\n")
	return p.doc, nil
}

func (p *parser) section(s *section) error {
	h := s.head.Header
	switch p.stage {
	case expectVersion:
		if h.Category != lex.CategoryVersion {
			return p.fail(s.head.Num, h, fmt.Errorf("%w: first section must be ~Version, got ~%s", ErrSectionOrder, h.Title))
		}
		p.stage = expectWell
		return p.version(s)
	case expectWell:
		if h.Category != lex.CategoryWell {
			return p.fail(s.head.Num, h, fmt.Errorf("%w: second section must be ~Well, got ~%s", ErrSectionOrder, h.Title))
		}
		p.stage = inBody
		return p.well(s)
	}

	switch h.Category {
	case lex.CategoryVersion, lex.CategoryWell:
		return p.fail(s.head.Num, h, fmt.Errorf("%w: ~%s", ErrDuplicateSection, h.Category))
	case lex.CategoryOther:
		p.otherText(s)
		return nil
	case lex.CategoryUnknown:
		log.Warn().Int("line", s.head.Num).Str("title", h.Title).Msg("skipping unrecognised section")
		return nil
	}

	if prev, ok := p.seen[h.Key()]; ok {
		return p.fail(s.head.Num, h, fmt.Errorf("%w: ~%s already declared on line %d", ErrDuplicateSection, h.Name(), prev))
	}
	p.seen[h.Key()] = s.head.Num

	switch h.Category {
	case lex.CategoryParameter:
		return p.parameters(s)
	case lex.CategoryDefinition:
		return p.definition(s)
	default:
		return p.data(s)
	}
}

func (p *parser) fail(line int, h lex.SectionHeader, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Line: line, Section: h.Name(), Err: err}
}

func (p *parser) entries(s *section, dialect lex.Dialect) ([]numberedEntry, error) {
	out := make([]numberedEntry, 0, len(s.body))
	for _, l := range s.body {
		if l.Kind != lex.KindContent {
			continue
		}
		e, err := header.Parse(l.Text, dialect)
		if err != nil {
			return nil, p.fail(l.Num, s.head.Header, err)
		}
		out = append(out, numberedEntry{line: l.Num, entry: e})
	}
	return out, nil
}

func (p *parser) version(s *section) error {
	entries, err := p.entries(s, lex.Legacy)
	if err != nil {
		return err
	}
	info, err := resolveVersion(entries, s.head.Num)
	if err != nil {
		return err
	}
	p.doc.Version = info
	log.Debug().Str("vers", info.Vers).Bool("wrap", info.Wrap).Stringer("dlm", info.Delimiter).Msg("version resolved")
	return nil
}

func (p *parser) well(s *section) error {
	entries, err := p.entries(s, p.doc.Version.Dialect)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if p.doc.Well.Set(toHeaderEntry(e.entry)) {
			log.Warn().Int("line", e.line).Str("mnemonic", e.entry.Mnemonic).Msg("duplicate well entry replaces earlier value")
		}
	}
	if err := validateWell(&p.doc.Well); err != nil {
		line := s.head.Num
		var ve ValidationError
		if errors.As(err, &ve) {
			for _, e := range entries {
				if strings.EqualFold(e.entry.Mnemonic, ve.Mnemonic) {
					line = e.line
				}
			}
		}
		return p.fail(line, s.head.Header, err)
	}
	return nil
}

func (p *parser) otherText(s *section) {
	var lines []string
	for _, l := range s.body {
		lines = append(lines, l.Text)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		p.other = append(p.other, strings.Join(lines, "\n"))
	}
}

// set returns the data set a section belongs to, creating it in file order.
func (p *parser) set(h lex.SectionHeader) *DataSet {
	key := h.SetKey()
	if ds, ok := p.sets[key]; ok {
		return ds
	}
	ds := &DataSet{Name: h.Set, Index: h.Index}
	p.sets[key] = ds
	p.doc.Sets = append(p.doc.Sets, ds)
	return ds
}

func (p *parser) parameters(s *section) error {
	entries, err := p.entries(s, p.doc.Version.Dialect)
	if err != nil {
		return err
	}
	ds := p.set(s.head.Header)
	ids := p.params[ds.Key()]
	if ids == nil {
		ids = make(map[string]int)
		p.params[ds.Key()] = ids
	}
	for _, e := range entries {
		pe := ParameterEntry{
			Mnemonic:     e.entry.Mnemonic,
			ArrayIndex:   e.entry.ArrayIndex,
			Unit:         e.entry.Unit,
			Value:        e.entry.Value,
			Description:  e.entry.Description,
			Format:       e.entry.Format,
			Associations: e.entry.Associations,
		}
		id := pe.Identity()
		if i, ok := ids[id]; ok {
			log.Warn().Int("line", e.line).Str("parameter", pe.Name()).Msg("duplicate parameter replaces earlier entry")
			ds.Parameters[i] = pe
			continue
		}
		ids[id] = len(ds.Parameters)
		ds.Parameters = append(ds.Parameters, pe)
	}
	return nil
}

func (p *parser) definition(s *section) error {
	entries, err := p.entries(s, p.doc.Version.Dialect)
	if err != nil {
		return err
	}
	h := s.head.Header
	ds := p.set(h)
	ds.HasDefinition = true

	counts := make(map[string]int)
	for _, e := range entries {
		c := CurveDefinition{
			Mnemonic:     p.opts.Canonical(e.entry.Mnemonic),
			Original:     e.entry.Mnemonic,
			ArrayIndex:   e.entry.ArrayIndex,
			Unit:         e.entry.Unit,
			Value:        e.entry.Value,
			Description:  e.entry.Description,
			Format:       e.entry.Format,
			Associations: e.entry.Associations,
		}
		if c.ArrayIndex == 0 {
			key := strings.ToUpper(c.Mnemonic)
			counts[key]++
			if n := counts[key]; n > 1 {
				renamed := fmt.Sprintf("%s_%d", c.Mnemonic, n)
				log.Warn().Int("line", e.line).Str("mnemonic", c.Mnemonic).Str("renamed", renamed).Msg("duplicate curve mnemonic renamed")
				c.Mnemonic = renamed
			}
		}
		ds.Curves = append(ds.Curves, c)
	}

	channels, err := p.channels(ds.Curves)
	if err != nil {
		return p.fail(s.head.Num, h, err)
	}
	ds.Channels = channels
	p.defs[lex.SectionHeader{Set: h.Set, Category: lex.CategoryDefinition, Index: h.Index}.Key()] = ds
	return nil
}

// channels groups curves into logical channels. BASE[1..n] declarations
// form one array channel whose components must be numbered 1..n in order.
func (p *parser) channels(curves []CurveDefinition) ([]Channel, error) {
	var out []Channel
	byName := make(map[string]int)
	for i, c := range curves {
		key := strings.ToUpper(c.Mnemonic)
		at, exists := byName[key]
		if c.ArrayIndex == 0 {
			if exists {
				return nil, fmt.Errorf("%w: %s is declared as both a plain curve and an array", ErrArityMismatch, c.Mnemonic)
			}
			byName[key] = len(out)
			out = append(out, Channel{Name: c.Mnemonic, Arity: 1, String: c.IsString(), Curves: []int{i}})
			continue
		}
		if !exists {
			if c.ArrayIndex != 1 {
				return nil, fmt.Errorf("%w: %s starts at index %d", ErrArityMismatch, c.Mnemonic, c.ArrayIndex)
			}
			byName[key] = len(out)
			out = append(out, Channel{Name: c.Mnemonic, Arity: 1, String: c.IsString(), Curves: []int{i}})
			continue
		}
		ch := &out[at]
		if curves[ch.Curves[0]].ArrayIndex == 0 {
			return nil, fmt.Errorf("%w: %s is declared as both a plain curve and an array", ErrArityMismatch, c.Mnemonic)
		}
		if c.ArrayIndex != ch.Arity+1 {
			return nil, fmt.Errorf("%w: %s[%d] follows %s[%d]", ErrArityMismatch, c.Mnemonic, c.ArrayIndex, c.Mnemonic, ch.Arity)
		}
		ch.Arity++
		ch.Curves = append(ch.Curves, i)
	}
	if len(out) > 0 && out[0].String {
		return nil, fmt.Errorf("%w: index curve %s has string format {%s}", ErrInvalidIndexValue, out[0].Name, curves[0].Format)
	}
	for _, ch := range out {
		if curves[ch.Curves[0]].ArrayIndex == 0 {
			continue
		}
		key := strings.ToUpper(ch.Name)
		if n, ok := p.arity[key]; ok && n != ch.Arity {
			return nil, fmt.Errorf("%w: %s has %d components here and %d elsewhere", ErrArityMismatch, ch.Name, ch.Arity, n)
		}
		p.arity[key] = ch.Arity
	}
	return out, nil
}

func (p *parser) data(s *section) error {
	h := s.head.Header
	ref := lex.SectionHeader{Set: h.Set, Category: lex.CategoryDefinition, Index: h.Index}
	if h.Association != "" {
		ref = lex.ParseReference(h.Association)
	}
	def, ok := p.defs[ref.Key()]
	if !ok || ref.Category != lex.CategoryDefinition {
		return p.fail(s.head.Num, h, fmt.Errorf("%w: ~%s", ErrUnresolvedDefinitionReference, ref.Name()))
	}

	layout := ascii.Layout{
		Delimiter: p.doc.Version.Delimiter,
		Wrap:      p.doc.Version.Wrap,
		Null:      p.doc.Well.Null(),
	}
	for _, ch := range def.Channels {
		layout.Channels = append(layout.Channels, ascii.Channel{Name: ch.Name, Arity: ch.Arity, String: ch.String})
	}
	tbl, err := ascii.Read(s.body, layout)
	if err != nil {
		var le *ascii.LineError
		if errors.As(err, &le) {
			return p.fail(le.Line, h, le.Err)
		}
		return p.fail(s.head.Num, h, err)
	}

	ds := p.set(h)
	ds.HasData = true
	ds.Binding = def.Title(lex.CategoryDefinition)
	ds.Columns = tbl.Columns
	ds.Rows = tbl.Rows
	if ds.Name == lex.LogSet && ds.Index == 0 {
		checkStep(&p.doc.Well, tbl)
	}
	log.Debug().Str("section", h.Name()).Str("binding", ds.Binding).Int("rows", tbl.Rows).Msg("data section decoded")
	return nil
}

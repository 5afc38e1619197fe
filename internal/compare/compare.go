package compare

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/dev"
	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/las/ascii"
)

var ErrMismatch = errors.New("compare: documents differ")

// Options are the numeric tolerances: a and b are close when
// |a-b| <= ATol + RTol*|b|. NaN equals NaN when EqualNaN is set.
type Options struct {
	RTol     float64
	ATol     float64
	EqualNaN bool
}

func DefaultOptions() Options {
	return Options{RTol: 1e-6, ATol: 0, EqualNaN: true}
}

// Mismatch locates the first difference found.
type Mismatch struct {
	Path  string
	Left  any
	Right any
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%v at %s: %v vs %v", ErrMismatch, m.Path, m.Left, m.Right)
}

func (m *Mismatch) Unwrap() error {
	return ErrMismatch
}

// Close reports whether a and b are equal within opts.
func Close(a, b float64, opts Options) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return opts.EqualNaN && math.IsNaN(a) && math.IsNaN(b)
	}
	if a == b {
		return true
	}
	return math.Abs(a-b) <= opts.ATol+opts.RTol*math.Abs(b)
}

// Values returns the index of the first element pair that is not close,
// or -1. Slices of different length differ at the shorter length.
func Values(a, b []float64, opts Options) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if !Close(a[i], b[i], opts) {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

type walker struct {
	opts Options
	err  *Mismatch
}

func (w *walker) fail(path string, left, right any) bool {
	if w.err == nil {
		w.err = &Mismatch{Path: path, Left: left, Right: right}
	}
	return false
}

func (w *walker) same(path string, left, right any) bool {
	if w.err != nil {
		return false
	}
	if !reflect.DeepEqual(left, right) {
		return w.fail(path, left, right)
	}
	return true
}

// Documents compares two LAS documents. The wrap flag and source encoding
// are not compared: written documents are never wrapped and may be
// re-encoded. Curves are compared by their canonical mnemonic.
func Documents(a, b *las.Document, opts Options) error {
	w := &walker{opts: opts}
	w.same("version.vers", a.Version.Number, b.Version.Number)
	w.same("version.dialect", a.Version.Dialect, b.Version.Dialect)
	w.same("version.delimiter", a.Version.Delimiter, b.Version.Delimiter)
	w.same("version.extra", a.Version.Extra, b.Version.Extra)
	w.same("well", a.Well.Entries(), b.Well.Entries())
	w.same("other", a.Other, b.Other)
	if w.same("sets", len(a.Sets), len(b.Sets)) {
		for i := range a.Sets {
			w.set(fmt.Sprintf("sets[%d]", i), a.Sets[i], b.Sets[i])
		}
	}
	if w.err != nil {
		log.Warn().Str("path", w.err.Path).Msg("documents differ")
		return w.err
	}
	return nil
}

func (w *walker) set(path string, a, b *las.DataSet) {
	w.same(path+".name", a.Name, b.Name)
	w.same(path+".index", a.Index, b.Index)
	w.same(path+".parameters", a.Parameters, b.Parameters)
	w.same(path+".definition", a.HasDefinition, b.HasDefinition)
	if w.same(path+".curves", len(a.Curves), len(b.Curves)) {
		for i := range a.Curves {
			ca, cb := a.Curves[i], b.Curves[i]
			ca.Original, cb.Original = "", ""
			w.same(fmt.Sprintf("%s.curves[%d]", path, i), ca, cb)
		}
	}
	w.same(path+".channels", a.Channels, b.Channels)
	w.same(path+".data", a.HasData, b.HasData)
	w.same(path+".binding", a.Binding, b.Binding)
	w.same(path+".rows", a.Rows, b.Rows)
	if w.same(path+".columns", len(a.Columns), len(b.Columns)) {
		for i := range a.Columns {
			w.column(path+".columns."+a.Columns[i].Name, a.Columns[i], b.Columns[i])
		}
	}
}

func (w *walker) column(path string, a, b ascii.Column) {
	w.same(path+".name", a.Name, b.Name)
	w.same(path+".arity", a.Arity, b.Arity)
	if a.IsString() || b.IsString() {
		w.same(path+".strings", a.Strings, b.Strings)
		return
	}
	if i := Values(a.Values, b.Values, w.opts); i >= 0 && w.err == nil {
		w.fail(fmt.Sprintf("%s[%d]", path, i), at(a.Values, i), at(b.Values, i))
	}
}

func at(v []float64, i int) any {
	if i < len(v) {
		return v[i]
	}
	return "<missing>"
}

// Dev compares two DEV documents column by column.
func Dev(a, b *dev.Document, opts Options) error {
	w := &walker{opts: opts}
	if w.same("columns", a.Columns, b.Columns) {
		for _, name := range a.Columns {
			va, vb := a.Values[name], b.Values[name]
			if i := Values(va, vb, opts); i >= 0 {
				w.fail(fmt.Sprintf("%s[%d]", name, i), at(va, i), at(vb, i))
				break
			}
		}
	}
	if w.err != nil {
		log.Warn().Str("path", w.err.Path).Msg("dev documents differ")
		return w.err
	}
	return nil
}

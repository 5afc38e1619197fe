package las

import (
	"errors"
	"math"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/lasdev/internal/las/lex"
	"github.com/danmuck/lasdev/internal/testutil/testlog"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return string(b)
}

func mustParse(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := Parse(text, DefaultParseOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func expectParseError(t *testing.T, text string, target error) *ParseError {
	t.Helper()
	_, err := Parse(text, DefaultParseOptions())
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	return pe
}

const minimalHeader = `~Version
VERS. 2.0 : CWLS
WRAP. NO  : one line per step
~Well
STRT.M 1.0 :
STOP.M 3.0 :
STEP.M 1.0 :
NULL.  -999.25 :
`

const v3Header = `~Version
VERS. 3.0 :
WRAP. NO :
DLM . SPACE :
~Well
STRT.M 1.0 :
STOP.M 1.0 :
STEP.M 0 :
NULL.  -999.25 :
`

func TestParseLegacy20(t *testing.T) {
	testlog.Start(t)
	doc := mustParse(t, readFixture(t, "sample20.las"))

	if doc.Version.Dialect != lex.Legacy || doc.Version.Wrap || doc.Version.Vers != "2.0" {
		t.Fatalf("unexpected version: %+v", doc.Version)
	}
	if got := doc.Well.Value("comp"); got != "ANY OIL COMPANY INC." {
		t.Fatalf("unexpected COMP: %q", got)
	}
	if doc.Well.Null() != -999.25 {
		t.Fatalf("unexpected NULL: %v", doc.Well.Null())
	}
	log, ok := doc.Log()
	if !ok {
		t.Fatalf("expected log set")
	}
	if len(log.Curves) != 4 || log.Curves[1].Mnemonic != "DT" || log.Curves[1].Unit != "US/M" {
		t.Fatalf("unexpected curves: %+v", log.Curves)
	}
	if log.Curves[0].Description != "1  DEPTH" {
		t.Fatalf("unexpected description: %q", log.Curves[0].Description)
	}
	if len(log.Parameters) != 2 || log.Parameters[0].Value != "35.5000" {
		t.Fatalf("unexpected parameters: %+v", log.Parameters)
	}
	if log.Rows != 3 || log.Binding != "Log_Definition" {
		t.Fatalf("unexpected data set: rows=%d binding=%q", log.Rows, log.Binding)
	}
	rhob, _ := log.Column("RHOB")
	if rhob.At(2, 0) != -999.25 {
		t.Fatalf("unexpected RHOB: %v", rhob.Values)
	}
	if !strings.Contains(doc.Other, "logging tools became stuck") {
		t.Fatalf("unexpected other text: %q", doc.Other)
	}
}

func TestParseWrapped12(t *testing.T) {
	testlog.Start(t)
	doc := mustParse(t, readFixture(t, "wrapped12.las"))
	if !doc.Version.Wrap || doc.Version.Number != 1.2 {
		t.Fatalf("unexpected version: %+v", doc.Version)
	}
	log, _ := doc.Log()
	if log.Rows != 2 {
		t.Fatalf("expected 2 rows, got %d", log.Rows)
	}
	want := []float64{1669.875, 123.45, 2550, 0.45, 123.45, 123.45, 110.2, 105.6}
	for i, c := range log.Columns {
		if c.At(1, 0) != want[i] {
			t.Fatalf("column %s row 1: got %v want %v", c.Name, c.At(1, 0), want[i])
		}
	}
}

func TestParseV30(t *testing.T) {
	testlog.Start(t)
	doc := mustParse(t, readFixture(t, "sample30.las"))
	if doc.Version.Dialect != lex.V3 || doc.Version.Delimiter != lex.DelimComma {
		t.Fatalf("unexpected version: %+v", doc.Version)
	}
	if len(doc.Sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(doc.Sets))
	}

	log, _ := doc.Log()
	if len(log.Channels) != 4 {
		t.Fatalf("expected 4 logical channels, got %+v", log.Channels)
	}
	nmr, ok := log.Column("NMR")
	if !ok || nmr.Arity != 5 {
		t.Fatalf("unexpected NMR column: %+v", nmr)
	}
	if got := nmr.Row(1); !reflect.DeepEqual(got, []float64{1.1, 2.1, 3.1, 4.1, 5.1}) {
		t.Fatalf("unexpected NMR row: %v", got)
	}
	gr, _ := log.Column("GR")
	if gr.At(1, 0) != -999.25 {
		t.Fatalf("expected NULL substitution, got %v", gr.At(1, 0))
	}
	lith, _ := log.Column("LITH")
	if lith.Text(0, 0) != "fine sand" || lith.Text(1, 0) != "shale" || lith.Text(2, 0) != "" {
		t.Fatalf("unexpected LITH: %q", lith.Strings)
	}

	core, ok := doc.Set("core", 1)
	if !ok || core.Rows != 1 || core.Binding != "Core_Definition[1]" {
		t.Fatalf("unexpected core set: %+v", core)
	}
	if len(core.Parameters) != 1 || core.Parameters[0].Value != "CONV" {
		t.Fatalf("unexpected core parameters: %+v", core.Parameters)
	}
	if e, _ := doc.Well.Get("DATE"); e.Value != "13/12/1986 12:00" || e.Format != "DD/MM/YYYY hh:mm" {
		t.Fatalf("unexpected DATE: %+v", e)
	}
}

func TestZonedParametersKeptApart(t *testing.T) {
	testlog.Start(t)
	doc := mustParse(t, readFixture(t, "sample30.las"))
	log, _ := doc.Log()
	var matr []ParameterEntry
	for _, p := range log.Parameters {
		if p.Mnemonic == "MATR" {
			matr = append(matr, p)
		}
	}
	if len(matr) != 2 || matr[0].Value != "SAND" || matr[1].Value != "LIME" {
		t.Fatalf("unexpected MATR entries: %+v", matr)
	}
	zone := doc.ParametersByAssociation("nmat_depth[2]")
	if len(zone) != 1 || zone[0].Value != "LIME" {
		t.Fatalf("unexpected zone lookup: %+v", zone)
	}
}

func TestDuplicateParameterReplaced(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + `~Parameter
BHT.DEGC 35 :
BHT.DEGC 36 :
~Curve
DEPT.M :
~A
1
`
	doc := mustParse(t, text)
	log, _ := doc.Log()
	if len(log.Parameters) != 1 || log.Parameters[0].Value != "36" {
		t.Fatalf("unexpected parameters: %+v", log.Parameters)
	}
}

func TestArrayChannelLookups(t *testing.T) {
	testlog.Start(t)
	doc := mustParse(t, readFixture(t, "sample30.las"))
	comps := doc.ArrayCurves("NMR")
	if len(comps) != 5 || comps[4].Name() != "NMR[5]" {
		t.Fatalf("unexpected components: %+v", comps)
	}
	if c, ok := doc.Curve("NMR[3]"); !ok || c.ArrayIndex != 3 {
		t.Fatalf("unexpected curve lookup: %+v", c)
	}
	if c, ok := doc.Curve("corebot"); !ok || c.Mnemonic != "COREBOT" {
		t.Fatalf("unexpected curve lookup: %+v", c)
	}
}

func TestDialectGate(t *testing.T) {
	testlog.Start(t)
	text := `~Version
VERS. 3.0 :
WRAP. YES :
DLM . SPACE :
`
	pe := expectParseError(t, text, ErrVersion)
	if pe.Line != 3 || pe.Section != "Version" {
		t.Fatalf("unexpected location: %+v", pe)
	}
}

func TestVersionErrors(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name   string
		text   string
		target error
	}{
		{"missing VERS", "~V\nWRAP. NO :\n", ErrVersion},
		{"missing VERS is a missing field", "~V\nWRAP. NO :\n", ErrMissingRequiredField},
		{"non-numeric VERS", "~V\nVERS. two :\nWRAP. NO :\n", ErrVersion},
		{"VERS below 1", "~V\nVERS. 0.5 :\nWRAP. NO :\n", ErrVersion},
		{"missing WRAP", "~V\nVERS. 2.0 :\n", ErrMissingRequiredField},
		{"missing DLM", "~V\nVERS. 3.0 :\nWRAP. NO :\n", ErrMissingRequiredField},
		{"bad WRAP", "~V\nVERS. 2.0 :\nWRAP. MAYBE :\n", ErrMalformedHeaderLine},
		{"empty input", "", ErrVersion},
	}
	for _, tc := range cases {
		if _, err := Parse(tc.text, DefaultParseOptions()); !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
	}
}

func TestNewerVersionReadsAsV3(t *testing.T) {
	testlog.Start(t)
	text := strings.Replace(readFixture(t, "sample30.las"), "VERS.  3.0", "VERS.  4.0", 1)
	doc := mustParse(t, text)
	if doc.Version.Dialect != lex.V3 || doc.Version.Number != 4.0 {
		t.Fatalf("unexpected version: %+v", doc.Version)
	}
}

func TestSectionOrder(t *testing.T) {
	testlog.Start(t)
	expectParseError(t, "~Well\nSTRT.M 1 :\n", ErrSectionOrder)
	expectParseError(t, "~Version\nVERS. 2.0 :\nWRAP. NO :\n~Curve\nDEPT.M :\n", ErrSectionOrder)
	expectParseError(t, "VERS. 2.0 :\n~Version\n", ErrSectionOrder)
}

func TestDuplicateSection(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + "~Curve\nDEPT.M :\n~C\nDEPT.M :\n~A\n1\n"
	pe := expectParseError(t, text, ErrDuplicateSection)
	if pe.Line != 11 {
		t.Fatalf("expected line 11, got %d", pe.Line)
	}
	expectParseError(t, minimalHeader+"~Well\nX. 1 :\n", ErrDuplicateSection)
}

func TestNoDataSection(t *testing.T) {
	testlog.Start(t)
	expectParseError(t, minimalHeader+"~Curve\nDEPT.M :\n", ErrNoDataSection)
}

func TestWellRequirements(t *testing.T) {
	testlog.Start(t)
	text := `~Version
VERS. 2.0 :
WRAP. NO :
~Well
STRT.M 1.0 :
STOP.M 3.0 :
STEP.M 1.0 :
~Curve
DEPT.M :
~A
1
`
	pe := expectParseError(t, text, ErrMissingRequiredField)
	var ve ValidationError
	if !errors.As(pe, &ve) || ve.Mnemonic != "NULL" {
		t.Fatalf("expected NULL validation error, got %v", pe)
	}

	bad := strings.Replace(minimalHeader, "STEP.M 1.0", "STEP.M abc", 1)
	pe = expectParseError(t, bad+"~Curve\nDEPT.M :\n~A\n1\n", ErrMalformedHeaderLine)
	if pe.Line != 7 {
		t.Fatalf("expected line 7, got %d", pe.Line)
	}
}

func TestForwardReferenceRejected(t *testing.T) {
	testlog.Start(t)
	text := v3Header + `~Curve
DEPT.M :
~ASCII | Curve
1
~Core_Data | Core_Definition
1 2
~Core_Definition
TOP.M :
BOT.M :
`
	pe := expectParseError(t, text, ErrUnresolvedDefinitionReference)
	if pe.Line != 14 || pe.Section != "Core_Data" {
		t.Fatalf("unexpected location: %+v", pe)
	}
}

func TestMonotonicIndex(t *testing.T) {
	testlog.Start(t)
	decreasing := strings.Replace(minimalHeader, "STEP.M 1.0", "STEP.M -1.0", 1) + "~Curve\nDEPT.M :\nGR.GAPI :\n~A\n3 1\n2 1\n1 1\n"
	doc := mustParse(t, decreasing)
	log, _ := doc.Log()
	if !reflect.DeepEqual(log.Columns[0].Values, []float64{3, 2, 1}) {
		t.Fatalf("unexpected index: %v", log.Columns[0].Values)
	}

	mixed := minimalHeader + "~Curve\nDEPT.M :\nGR.GAPI :\n~A\n1 1\n2 1\n1.5 1\n"
	pe := expectParseError(t, mixed, ErrNonMonotonicIndex)
	if pe.Line != 15 {
		t.Fatalf("expected line 15, got %d", pe.Line)
	}
}

func TestInvalidIndexValue(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + "~Curve\nDEPT.M :\nGR.GAPI :\n~A\n1 1\n-999.25 1\n"
	pe := expectParseError(t, text, ErrInvalidIndexValue)
	if pe.Line != 14 || pe.Section != "Log_Data" {
		t.Fatalf("unexpected location: %+v", pe)
	}
}

func TestStringIndexRejected(t *testing.T) {
	testlog.Start(t)
	text := v3Header + "~Curve\nDEPT.M : Depth {S}\nGR.GAPI : Gamma\n~ASCII | Curve\nA 1\n"
	pe := expectParseError(t, text, ErrInvalidIndexValue)
	if pe.Line != 10 || pe.Section != "Log_Definition" {
		t.Fatalf("unexpected location: %+v", pe)
	}
}

func TestTruncatedWrappedRow(t *testing.T) {
	testlog.Start(t)
	text := strings.Replace(minimalHeader, "WRAP. NO ", "WRAP. YES", 1) + "~Curve\nDEPT.M :\nA. :\nB. :\nC. :\n~A\n1\n10 11\n"
	expectParseError(t, text, ErrTruncatedWrappedRow)
}

func TestDuplicateCurveRenamed(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + "~Curve\nDEPT.M :\nGR.GAPI :\nGR.GAPI :\nGR.GAPI :\n~A\n1 10 20 30\n"
	doc := mustParse(t, text)
	log, _ := doc.Log()
	names := []string{log.Curves[2].Mnemonic, log.Curves[3].Mnemonic}
	if !reflect.DeepEqual(names, []string{"GR_2", "GR_3"}) || log.Curves[3].Original != "GR" {
		t.Fatalf("unexpected curves: %+v", log.Curves)
	}
	col, ok := log.Column("GR_3")
	if !ok || col.At(0, 0) != 30 {
		t.Fatalf("unexpected GR_3 column: %+v", col)
	}
}

func TestArityMismatch(t *testing.T) {
	testlog.Start(t)
	gap := v3Header + "~Curve\nDEPT.M :\nNMR[1].ms :\nNMR[3].ms :\n~ASCII\n1 1 2\n"
	expectParseError(t, gap, ErrArityMismatch)

	across := v3Header + "~Curve\nDEPT.M :\nNMR[1].ms :\nNMR[2].ms :\n" +
		"~Core_Definition\nTOP.M :\nNMR[1].ms :\nNMR[2].ms :\nNMR[3].ms :\n~ASCII\n1 1 2\n"
	expectParseError(t, across, ErrArityMismatch)
}

func TestCanonicalMnemonics(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + "~Curve\nDEPT.M :\nAK.US/M :\n~A\n1 100\n"
	opts := DefaultParseOptions()
	opts.Canonical = func(s string) string {
		if strings.EqualFold(s, "AK") {
			return "DT"
		}
		return s
	}
	doc, err := Parse(text, opts)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, ok := doc.Curve("DT")
	if !ok || c.Original != "AK" {
		t.Fatalf("unexpected curve: %+v", c)
	}
	log, _ := doc.Log()
	if _, ok := log.Column("DT"); !ok {
		t.Fatalf("expected DT column")
	}
}

func TestUnknownSectionSkipped(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + "~Xyz stuff\nwhatever : here\n~Curve\nDEPT.M :\n~A\n1\n"
	doc := mustParse(t, text)
	if len(doc.Sets) != 1 {
		t.Fatalf("unexpected sets: %d", len(doc.Sets))
	}
}

func TestStepDisagreementAccepted(t *testing.T) {
	testlog.Start(t)
	text := minimalHeader + "~Curve\nDEPT.M :\n~A\n1\n1.5\n2\n"
	doc := mustParse(t, text)
	log, _ := doc.Log()
	if log.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", log.Rows)
	}
}

func TestWellFloat(t *testing.T) {
	testlog.Start(t)
	doc := mustParse(t, readFixture(t, "sample20.las"))
	step, err := doc.Well.Float("step")
	if err != nil || math.Abs(step+0.125) > 1e-12 {
		t.Fatalf("unexpected STEP: %v %v", step, err)
	}
	if _, err := doc.Well.Float("NOPE"); !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
}

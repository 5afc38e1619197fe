package las_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/danmuck/lasdev/internal/compare"
	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/las/lex"
	"github.com/danmuck/lasdev/internal/testutil/testlog"
)

func parseFixture(t *testing.T, name string) *las.Document {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc, err := las.Parse(string(b), las.DefaultParseOptions())
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return doc
}

func roundTrip(t *testing.T, doc *las.Document, opts las.WriteOptions) (*las.Document, string) {
	t.Helper()
	var buf bytes.Buffer
	if err := las.Encode(&buf, doc, opts); err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := buf.String()
	again, err := las.Parse(text, las.DefaultParseOptions())
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, text)
	}
	return again, text
}

func TestRoundTripFixtures(t *testing.T) {
	testlog.Start(t)
	for _, name := range []string{"sample20.las", "wrapped12.las", "sample30.las"} {
		doc := parseFixture(t, name)
		again, text := roundTrip(t, doc, las.WriteOptions{})
		if err := compare.Documents(doc, again, compare.DefaultOptions()); err != nil {
			t.Fatalf("%s: %v\n%s", name, err, text)
		}
		if again.Version.Wrap {
			t.Fatalf("%s: writer must emit WRAP NO", name)
		}
	}
}

func TestWriterPreservesMetadata(t *testing.T) {
	testlog.Start(t)
	doc := parseFixture(t, "sample30.las")
	text, err := las.Marshal(doc, las.WriteOptions{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{
		"~Version\n",
		" DLM.  COMMA : ",
		" GR.GAPI   : Gamma ray {F}\n",
		" NMR[5].ms   : NMR echo array {F}\n",
		" MATR.  LIME : Neutron porosity matrix {S} | NMAT_Depth[2]\n",
		"~ASCII | Curve\n",
		"~Core_Data[1] | Core_Definition[1]\n",
		`1500,45.2,fine sand,1,2,3,4,5`,
		`1499,47,"",1.2,2.2,3.2,4.2,5.2`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestWriteLegacyTitles(t *testing.T) {
	testlog.Start(t)
	doc := parseFixture(t, "wrapped12.las")
	text, err := las.Marshal(doc, las.WriteOptions{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{
		"~VERSION INFORMATION\n",
		" WRAP.  NO : ONE LINE PER DEPTH STEP\n",
		"~CURVE INFORMATION\n",
		"~A  DEPT  DT  RHOB  NPHI  SFLU  SFLA  ILM  ILD\n",
		"1670 123.45 2550 0.45 123.45 123.45 110.2 105.6\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "DLM") {
		t.Fatalf("legacy output must not carry DLM:\n%s", text)
	}
}

func TestUpgradeToV3(t *testing.T) {
	testlog.Start(t)
	doc := parseFixture(t, "sample20.las")
	again, text := roundTrip(t, doc, las.WriteOptions{Target: las.TargetV3, Delimiter: "TAB"})
	if again.Version.Dialect != lex.V3 || again.Version.Delimiter != lex.DelimTab {
		t.Fatalf("unexpected version: %+v\n%s", again.Version, text)
	}
	a, _ := doc.Log()
	b, _ := again.Log()
	if compare.Values(a.Columns[1].Values, b.Columns[1].Values, compare.DefaultOptions()) != -1 {
		t.Fatalf("values changed on upgrade")
	}
}

const bracedLegacy = `~Version
VERS. 2.0 :
WRAP. NO :
~Well
STRT.M 1.0 :
STOP.M 2.0 :
STEP.M 1.0 :
NULL.  -999.25 :
COMP.  ACME | SONS {LTD} : COMPANY
~Curve
DEPT.M : Depth
GR.GAPI : Gamma {see note}
~A
1.0 45.0
2.0 46.0
`

func TestUpgradeEscapesBracesAndBars(t *testing.T) {
	testlog.Start(t)
	doc, err := las.Parse(bracedLegacy, las.DefaultParseOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, target := range []las.Target{las.TargetV3, las.TargetKeep} {
		again, text := roundTrip(t, doc, las.WriteOptions{Target: target})
		gr, ok := again.Curve("GR")
		if !ok || gr.Description != "Gamma {see note}" || gr.Format != "" {
			t.Fatalf("target %v: unexpected GR: %+v\n%s", target, gr, text)
		}
		if got := again.Well.Value("COMP"); got != "ACME | SONS {LTD}" {
			t.Fatalf("target %v: unexpected COMP %q\n%s", target, got, text)
		}
	}
}

const quotedV3 = `~Version
VERS. 3.0 :
WRAP. NO :
DLM . COMMA :
~Well
STRT.M 1.0 :
STOP.M 2.0 :
STEP.M 1.0 :
NULL.  -999.25 :
~Curve
DEPT.M : Depth
NOTE. : Remark {S}
~ASCII | Curve
1.0,"6"" casing, set"
2.0,"said ""tight"""
`

func TestStringFieldsWithQuotesRoundTrip(t *testing.T) {
	testlog.Start(t)
	doc, err := las.Parse(quotedV3, las.DefaultParseOptions())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, delim := range []string{"", "SPACE", "TAB"} {
		again, text := roundTrip(t, doc, las.WriteOptions{Delimiter: delim})
		log, _ := again.Log()
		note, ok := log.Column("NOTE")
		if !ok || note.Text(0, 0) != `6" casing, set` || note.Text(1, 0) != `said "tight"` {
			t.Fatalf("delimiter %q: unexpected NOTE %q\n%s", delim, note.Strings, text)
		}
	}
}

func TestDialectDowngradeRejected(t *testing.T) {
	testlog.Start(t)
	doc := parseFixture(t, "sample30.las")
	if _, err := las.Marshal(doc, las.WriteOptions{Target: las.TargetLegacy}); !errors.Is(err, las.ErrDialectDowngrade) {
		t.Fatalf("expected ErrDialectDowngrade, got %v", err)
	}
}

func TestEncodeWriteError(t *testing.T) {
	testlog.Start(t)
	doc := parseFixture(t, "sample20.las")
	if err := las.Encode(failingWriter{}, doc, las.WriteOptions{}); !errors.Is(err, las.ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestParseTarget(t *testing.T) {
	for raw, want := range map[string]las.Target{"": las.TargetKeep, "2.0": las.TargetLegacy, "1.2": las.TargetLegacy, "3.0": las.TargetV3} {
		got, err := las.ParseTarget(raw)
		if err != nil || got != want {
			t.Fatalf("parse %q: got %v err %v", raw, got, err)
		}
	}
	if _, err := las.ParseTarget("4.0"); err == nil {
		t.Fatalf("expected error for 4.0")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

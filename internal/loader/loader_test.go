package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/lasdev/internal/config"
	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/testutil/testlog"
	"github.com/danmuck/lasdev/internal/textio"
)

const cyrillic = `~Version
VERS. 2.0 : CWLS
WRAP. NO  :
~Well
STRT.M 100.0 :
STOP.M 101.0 :
STEP.M 1.0 :
NULL.  -999.25 :
FLD .  Самотлор : Месторождение
~Curve
DEPT.M : Глубина
AK  .US/M : Акустика
~A
100.0 310.5
101.0 -999.25
`

func newLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := New(config.Default())
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	return l
}

func writeEncoded(t *testing.T, dir, name, text, enc string) string {
	t.Helper()
	b, err := textio.Encode(text, enc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestReadLASDetectsEncodingAndAliases(t *testing.T) {
	testlog.Start(t)
	l := newLoader(t)
	path := writeEncoded(t, t.TempDir(), "well.las", cyrillic, "cp1251")

	doc, err := l.ReadLAS(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.Encoding != "cp1251" {
		t.Fatalf("unexpected encoding: %q", doc.Encoding)
	}
	if doc.Well.Value("FLD") != "Самотлор" {
		t.Fatalf("unexpected FLD: %q", doc.Well.Value("FLD"))
	}
	dt, ok := doc.Curve("DT")
	if !ok || dt.Original != "AK" {
		t.Fatalf("AK not canonicalised: %+v %v", dt, ok)
	}
}

func TestWriteLASKeepsEncoding(t *testing.T) {
	testlog.Start(t)
	l := newLoader(t)
	dir := t.TempDir()
	doc, err := l.ReadLAS(writeEncoded(t, dir, "in.las", cyrillic, "cp1251"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := filepath.Join(dir, "out.las")
	if err := l.WriteLAS(out, doc, las.WriteOptions{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	enc, _, err := textio.Decode(raw, textio.Options{Fallbacks: []string{"utf-8", "cp1251"}})
	if err != nil || enc != "cp1251" {
		t.Fatalf("expected cp1251 output, got %q (%v)", enc, err)
	}
	again, err := l.ReadLAS(out)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if again.Well.Value("FLD") != "Самотлор" {
		t.Fatalf("text changed across write: %q", again.Well.Value("FLD"))
	}
}

func TestReadDevAndWrite(t *testing.T) {
	testlog.Start(t)
	l := newLoader(t)
	dir := t.TempDir()
	path := writeEncoded(t, dir, "well.dev", "MD X\n0 1\n10 2\n", "utf-8")
	doc, err := l.ReadDev(path)
	if err != nil {
		t.Fatalf("read dev: %v", err)
	}
	out := filepath.Join(dir, "copy.dev")
	if err := l.WriteDev(out, doc); err != nil {
		t.Fatalf("write dev: %v", err)
	}
	again, err := l.ReadDev(out)
	if err != nil {
		t.Fatalf("re-read dev: %v", err)
	}
	if again.Rows() != 2 {
		t.Fatalf("unexpected rows: %d", again.Rows())
	}
}

func TestReadAllKeepsOrderAndErrors(t *testing.T) {
	testlog.Start(t)
	l := newLoader(t)
	dir := t.TempDir()
	var paths []string
	for i, name := range []string{"a.las", "b.las", "c.las", "d.las", "e.las"} {
		text := cyrillic
		if i == 2 {
			text = "~Well\nSTRT.M 1 :\n"
		}
		paths = append(paths, writeEncoded(t, dir, name, text, "utf-8"))
	}
	paths = append(paths, filepath.Join(dir, "missing.las"))

	results := l.ReadAll(context.Background(), paths, 3)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d out of order: %s", i, r.Path)
		}
		switch i {
		case 2:
			var pe *las.ParseError
			if !errors.As(r.Err, &pe) {
				t.Fatalf("expected parse error for %s, got %v", r.Path, r.Err)
			}
		case 5:
			if !errors.Is(r.Err, textio.ErrRead) {
				t.Fatalf("expected read error, got %v", r.Err)
			}
		default:
			if r.Err != nil || r.Doc == nil {
				t.Fatalf("%s: %v", r.Path, r.Err)
			}
		}
	}
}

func TestReadAllCancelled(t *testing.T) {
	testlog.Start(t)
	l := newLoader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := l.ReadAll(ctx, []string{"x.las", "y.las"}, 0)
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("expected cancellation for %s, got %v", r.Path, r.Err)
		}
	}
}

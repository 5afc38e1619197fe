package loader

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/config"
	"github.com/danmuck/lasdev/internal/dev"
	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/mnemonic"
	"github.com/danmuck/lasdev/internal/textio"
)

// Loader is safe for concurrent use: its options are read-only after New
// and the alias table guards itself.
type Loader struct {
	text    textio.Options
	aliases *mnemonic.Table
	dev     dev.Options
	write   las.WriteOptions
}

func New(cfg config.Config) (*Loader, error) {
	tab, err := cfg.AliasTable()
	if err != nil {
		return nil, err
	}
	return &Loader{
		text:    cfg.TextOptions(),
		aliases: tab,
		dev:     cfg.DevOptions(),
		write:   cfg.WriteOptions(),
	}, nil
}

// WriteOptions are the configured output options.
func (l *Loader) WriteOptions() las.WriteOptions {
	return l.write
}

func (l *Loader) parseOptions(encoding string) las.ParseOptions {
	return las.ParseOptions{Canonical: l.aliases.Canonical, Encoding: encoding}
}

// ReadLAS decodes and parses the LAS file at path. The detected encoding is
// recorded on the Document.
func (l *Loader) ReadLAS(path string) (*las.Document, error) {
	enc, text, err := textio.ReadFile(path, l.text)
	if err != nil {
		return nil, err
	}
	doc, err := las.Parse(text, l.parseOptions(enc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("path", path).Str("encoding", enc).Int("sets", len(doc.Sets)).Msg("las loaded")
	return doc, nil
}

// ParseLAS parses raw bytes as if read from a file.
func (l *Loader) ParseLAS(b []byte) (*las.Document, error) {
	enc, text, err := textio.Decode(b, l.text)
	if err != nil {
		return nil, err
	}
	return las.Parse(text, l.parseOptions(enc))
}

func (l *Loader) ReadDev(path string) (*dev.Document, error) {
	_, text, err := textio.ReadFile(path, l.text)
	if err != nil {
		return nil, err
	}
	doc, err := dev.Parse(text, l.dev)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteLAS writes doc to path in doc.Encoding, or UTF-8 when unset.
func (l *Loader) WriteLAS(path string, doc *las.Document, opts las.WriteOptions) error {
	text, err := las.Marshal(doc, opts)
	if err != nil {
		return err
	}
	enc := doc.Encoding
	if enc == "" {
		enc = "utf-8"
	}
	return textio.WriteFile(path, text, enc)
}

func (l *Loader) WriteDev(path string, doc *dev.Document) error {
	var buf bytes.Buffer
	if err := dev.Encode(&buf, doc); err != nil {
		return err
	}
	return textio.WriteFile(path, buf.String(), "utf-8")
}

// Result is the outcome for one path of a batch.
type Result struct {
	Path string
	Doc  *las.Document
	Err  error
}

// ReadAll loads paths with at most workers concurrent parses. Results keep
// the order of paths. Paths not started before ctx is done get ctx's error.
func (l *Loader) ReadAll(ctx context.Context, paths []string, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, len(paths))
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i].Path = p
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				continue
			}
			results[i].Doc, results[i].Err = l.ReadLAS(paths[i])
		}
	}
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go worker()
	}

feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j].Err = ctx.Err()
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Debug().Int("files", len(paths)).Int("failed", failed).Int("workers", workers).Msg("batch loaded")
	return results
}

package textio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrRead            = errors.New("textio: read failed")
	ErrEncoding        = errors.New("textio: no candidate encoding decoded the input")
	ErrTooLarge        = errors.New("textio: input exceeds maximum size")
	ErrUnknownEncoding = errors.New("textio: unknown encoding")
)

// DefaultFallbacks is tried in order when no hint is given.
var DefaultFallbacks = []string{"utf-8", "cp1251", "cp1252", "cp866", "latin-1"}

var encodings = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"cp1251":       charmap.Windows1251,
	"windows-1251": charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp866":        charmap.CodePage866,
	"ibm866":       charmap.CodePage866,
	"koi8-r":       charmap.KOI8R,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
}

var (
	utf8BOM     = []byte{0xef, 0xbb, 0xbf}
	replacement = []byte(string(utf8.RuneError))
)

// Options configures decoding. A non-empty Hint is the only encoding tried.
// MaxFileSize of 0 means unlimited.
type Options struct {
	Hint        string
	Fallbacks   []string
	MaxFileSize int64
}

func DefaultOptions() Options {
	return Options{Fallbacks: DefaultFallbacks}
}

// Lookup resolves an encoding name case-insensitively.
func Lookup(name string) (encoding.Encoding, error) {
	enc, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decode returns the name of the first encoding that decodes b cleanly and
// the decoded text.
func Decode(b []byte, opts Options) (string, string, error) {
	if opts.MaxFileSize > 0 && int64(len(b)) > opts.MaxFileSize {
		return "", "", fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, len(b), opts.MaxFileSize)
	}
	candidates := opts.Fallbacks
	if opts.Hint != "" {
		candidates = []string{opts.Hint}
	} else if len(candidates) == 0 {
		candidates = DefaultFallbacks
	}
	for _, name := range candidates {
		enc, err := Lookup(name)
		if err != nil {
			return "", "", err
		}
		text, ok := decodeWith(enc, b)
		if ok {
			log.Debug().Str("encoding", name).Int("bytes", len(b)).Msg("input decoded")
			return name, text, nil
		}
		log.Debug().Str("encoding", name).Msg("encoding rejected")
	}
	return "", "", fmt.Errorf("%w: tried %s", ErrEncoding, strings.Join(candidates, ", "))
}

func decodeWith(enc encoding.Encoding, b []byte) (string, bool) {
	if enc == unicode.UTF8 {
		b = bytes.TrimPrefix(b, utf8BOM)
		if !utf8.Valid(b) {
			return "", false
		}
		return string(b), true
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	// Single-byte tables map undefined bytes to U+FFFD instead of failing.
	if bytes.Count(out, replacement) > bytes.Count(b, replacement) {
		return "", false
	}
	return string(out), true
}

// ReadFile reads and decodes path.
func ReadFile(path string, opts Options) (string, string, error) {
	if opts.MaxFileSize > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrRead, err)
		}
		if info.Size() > opts.MaxFileSize {
			return "", "", fmt.Errorf("%w: %s is %d bytes > %d", ErrTooLarge, path, info.Size(), opts.MaxFileSize)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	return Decode(b, opts)
}

// Encode converts text to bytes in the named encoding.
func Encode(text, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoding, name, err)
	}
	return out, nil
}

// WriteFile encodes text with the named encoding and writes it to path.
func WriteFile(path, text, name string) error {
	enc, err := Lookup(name)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := transform.NewWriter(f, enc.NewEncoder())
	if _, err := w.Write([]byte(text)); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrEncoding, name, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrEncoding, name, err)
	}
	return f.Close()
}

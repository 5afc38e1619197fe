package mnemonic

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var builtinYAML []byte

var ErrTable = errors.New("mnemonic: invalid alias table")

// Table is a concurrency-safe alias dictionary. Lookups take a read lock,
// so one table can serve any number of concurrent parses.
type Table struct {
	mu      sync.RWMutex
	aliases map[string]string
}

func New() *Table {
	return &Table{aliases: make(map[string]string)}
}

// Builtin returns a table holding the shipped dictionary.
func Builtin() *Table {
	t := New()
	if err := t.load(builtinYAML, "builtin"); err != nil {
		// The embedded file is part of the build.
		panic(err)
	}
	return t
}

// Register maps alias to canonical, replacing any earlier mapping.
func (t *Table) Register(alias, canonical string) {
	key := strings.ToUpper(strings.TrimSpace(alias))
	canonical = strings.TrimSpace(canonical)
	if key == "" || canonical == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.aliases[key]; ok && prev != canonical {
		log.Debug().Str("alias", alias).Str("was", prev).Str("now", canonical).Msg("alias remapped")
	}
	t.aliases[key] = canonical
}

// Canonical returns the canonical name of raw, or raw when it has none.
func (t *Table) Canonical(raw string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.aliases[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return c
	}
	return raw
}

// Len is the number of aliases.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.aliases)
}

// Load merges a YAML table. Two entry shapes are accepted:
//
//	AK: DT              # alias: canonical
//	DT: [AK, AKDT]      # canonical: [aliases]
//
// Entries are applied in document order, so a repeated key resolves to its
// last occurrence.
func (t *Table) Load(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("mnemonic: read: %w", err)
	}
	return t.load(b, "reader")
}

// LoadFile merges the YAML table at path.
func (t *Table) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("mnemonic: read %s: %w", path, err)
	}
	return t.load(b, path)
}

func (t *Table) load(b []byte, source string) error {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTable, source, err)
	}
	if len(root.Content) == 0 {
		return nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s: top level must be a mapping", ErrTable, source)
	}
	n := 0
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			t.Register(key.Value, val.Value)
			n++
		case yaml.SequenceNode:
			t.Register(key.Value, key.Value)
			for _, alias := range val.Content {
				if alias.Kind != yaml.ScalarNode {
					return fmt.Errorf("%w: %s line %d: alias must be a string", ErrTable, source, alias.Line)
				}
				t.Register(alias.Value, key.Value)
				n++
			}
		default:
			return fmt.Errorf("%w: %s line %d: value of %q must be a name or a list", ErrTable, source, val.Line, key.Value)
		}
	}
	log.Debug().Str("source", source).Int("aliases", n).Msg("alias table loaded")
	return nil
}

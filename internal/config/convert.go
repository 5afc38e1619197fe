package config

import (
	"github.com/danmuck/lasdev/internal/dev"
	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/mnemonic"
	"github.com/danmuck/lasdev/internal/textio"
)

func (c Config) TextOptions() textio.Options {
	return textio.Options{
		Hint:        c.Encoding.Hint,
		Fallbacks:   c.Encoding.Fallbacks,
		MaxFileSize: c.Encoding.MaxFileSize,
	}
}

func (c Config) DevOptions() dev.Options {
	return dev.Options{Default: c.Dev.Default}
}

// WriteOptions assumes c passed Validate.
func (c Config) WriteOptions() las.WriteOptions {
	target, _ := las.ParseTarget(c.Output.Dialect)
	return las.WriteOptions{Target: target, Delimiter: c.Output.Delimiter}
}

// AliasTable builds the mnemonic table: the builtin dictionary when
// enabled, then the user table on top.
func (c Config) AliasTable() (*mnemonic.Table, error) {
	tab := mnemonic.New()
	if c.Mnemonics.Builtin {
		tab = mnemonic.Builtin()
	}
	if c.Mnemonics.Table != "" {
		if err := tab.LoadFile(c.Mnemonics.Table); err != nil {
			return nil, err
		}
	}
	return tab, nil
}

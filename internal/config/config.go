package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/lasdev/internal/las"
	"github.com/danmuck/lasdev/internal/las/lex"
	"github.com/danmuck/lasdev/internal/logging"
	"github.com/danmuck/lasdev/internal/textio"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	// Workers bounds concurrent parses in batch commands. 0 means one per CPU.
	Workers   int
	Encoding  EncodingConfig
	Mnemonics MnemonicConfig
	Dev       DevConfig
	Output    OutputConfig
	Log       LogConfig
}

type EncodingConfig struct {
	Hint        string
	Fallbacks   []string
	MaxFileSize int64
}

type MnemonicConfig struct {
	Builtin bool
	// Table is an optional YAML alias file merged over the builtin table.
	Table string
}

type DevConfig struct {
	Default float64
}

type OutputConfig struct {
	Dialect   string
	Delimiter string
}

type LogConfig struct {
	Level   string
	NoColor bool
}

func Default() Config {
	return Config{
		Encoding:  EncodingConfig{Fallbacks: append([]string(nil), textio.DefaultFallbacks...)},
		Mnemonics: MnemonicConfig{Builtin: true},
		Output:    OutputConfig{Dialect: "keep"},
		Log:       LogConfig{Level: "info"},
	}
}

type fileConfig struct {
	Workers  int `toml:"workers"`
	Encoding struct {
		Hint        string   `toml:"hint"`
		Fallbacks   []string `toml:"fallbacks"`
		MaxFileSize int64    `toml:"max_file_size"`
	} `toml:"encoding"`
	Mnemonics struct {
		Builtin bool   `toml:"builtin"`
		Table   string `toml:"table"`
	} `toml:"mnemonics"`
	Dev struct {
		Default float64 `toml:"default"`
	} `toml:"dev"`
	Output struct {
		Dialect   string `toml:"dialect"`
		Delimiter string `toml:"delimiter"`
	} `toml:"output"`
	Log struct {
		Level   string `toml:"level"`
		NoColor bool   `toml:"no_color"`
	} `toml:"log"`
}

// Load reads path over Default. Keys absent from the file keep their
// defaults; the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("encoding", "hint") {
		cfg.Encoding.Hint = strings.TrimSpace(raw.Encoding.Hint)
	}
	if meta.IsDefined("encoding", "fallbacks") {
		cfg.Encoding.Fallbacks = normalizeNames(raw.Encoding.Fallbacks)
	}
	if meta.IsDefined("encoding", "max_file_size") {
		cfg.Encoding.MaxFileSize = raw.Encoding.MaxFileSize
	}
	if meta.IsDefined("mnemonics", "builtin") {
		cfg.Mnemonics.Builtin = raw.Mnemonics.Builtin
	}
	if meta.IsDefined("mnemonics", "table") {
		cfg.Mnemonics.Table = strings.TrimSpace(raw.Mnemonics.Table)
	}
	if meta.IsDefined("dev", "default") {
		cfg.Dev.Default = raw.Dev.Default
	}
	if meta.IsDefined("output", "dialect") {
		cfg.Output.Dialect = strings.TrimSpace(raw.Output.Dialect)
	}
	if meta.IsDefined("output", "delimiter") {
		cfg.Output.Delimiter = strings.TrimSpace(raw.Output.Delimiter)
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalid, cfg.Workers)
	}
	if cfg.Encoding.Hint != "" {
		if _, err := textio.Lookup(cfg.Encoding.Hint); err != nil {
			return fmt.Errorf("%w: encoding.hint: %w", ErrInvalid, err)
		}
	}
	if len(cfg.Encoding.Fallbacks) == 0 {
		return fmt.Errorf("%w: encoding.fallbacks is empty", ErrInvalid)
	}
	for i, name := range cfg.Encoding.Fallbacks {
		if _, err := textio.Lookup(name); err != nil {
			return fmt.Errorf("%w: encoding.fallbacks[%d]: %w", ErrInvalid, i, err)
		}
	}
	if cfg.Encoding.MaxFileSize < 0 {
		return fmt.Errorf("%w: encoding.max_file_size must be >= 0", ErrInvalid)
	}
	if _, err := las.ParseTarget(cfg.Output.Dialect); err != nil {
		return fmt.Errorf("%w: output.dialect: %w", ErrInvalid, err)
	}
	if cfg.Output.Delimiter != "" {
		if _, err := lex.ParseDelimiter(cfg.Output.Delimiter); err != nil {
			return fmt.Errorf("%w: output.delimiter: %w", ErrInvalid, err)
		}
	}
	if cfg.Log.Level != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("%w: log.level %q", ErrInvalid, cfg.Log.Level)
		}
	}
	return nil
}

// EffectiveWorkers resolves Workers, mapping 0 to the CPU count.
func (c Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, name := range in {
		v := strings.TrimSpace(name)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// exists reports whether path is present; errors other than not-exist count
// as present so callers never overwrite what they cannot inspect.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

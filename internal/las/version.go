package las

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/las/header"
	"github.com/danmuck/lasdev/internal/las/lex"
)

// numberedEntry is a parsed header line and where it came from.
type numberedEntry struct {
	line  int
	entry header.Entry
}

// resolveVersion fixes VERS, WRAP and DLM once; every later stage reads the
// returned dialect instead of looking at VERS again.
func resolveVersion(entries []numberedEntry, sectionLine int) (VersionInfo, error) {
	var info VersionInfo
	var vers, wrap, dlm *numberedEntry
	for i := range entries {
		e := &entries[i]
		switch strings.ToUpper(e.entry.Mnemonic) {
		case "VERS":
			vers = e
		case "WRAP":
			wrap = e
		case "DLM":
			dlm = e
		default:
			info.Extra = append(info.Extra, toHeaderEntry(e.entry))
		}
	}

	if vers == nil {
		return info, versionErr(sectionLine, fmt.Errorf("%w: %w: VERS", ErrVersion, ErrMissingRequiredField))
	}
	info.Vers = strings.TrimSpace(vers.entry.Value)
	fields := strings.Fields(info.Vers)
	if len(fields) == 0 {
		return info, versionErr(vers.line, fmt.Errorf("%w: %w: VERS is empty", ErrVersion, ErrMissingRequiredField))
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return info, versionErr(vers.line, fmt.Errorf("%w: VERS %q is not a number", ErrVersion, info.Vers))
	}
	if n < 1.0 {
		return info, versionErr(vers.line, fmt.Errorf("%w: VERS %s", ErrVersion, info.Vers))
	}
	info.Number = n
	info.Dialect = lex.Legacy
	if n >= 3.0 {
		info.Dialect = lex.V3
	}
	if n >= 4.0 {
		log.Warn().Str("vers", info.Vers).Msg("VERS is newer than 3.0; reading with the 3.0 grammar")
	}

	if wrap == nil {
		return info, versionErr(sectionLine, fmt.Errorf("%w: WRAP", ErrMissingRequiredField))
	}
	switch strings.ToUpper(firstWord(wrap.entry.Value)) {
	case "YES":
		info.Wrap = true
	case "NO":
		info.Wrap = false
	default:
		return info, versionErr(wrap.line, fmt.Errorf("%w: WRAP %q", ErrMalformedHeaderLine, wrap.entry.Value))
	}
	if info.Wrap && info.Dialect == lex.V3 {
		return info, versionErr(wrap.line, fmt.Errorf("%w: WRAP YES is not allowed with VERS %s", ErrVersion, info.Vers))
	}

	if info.Dialect != lex.V3 {
		if dlm != nil {
			log.Debug().Str("dlm", dlm.entry.Value).Msg("DLM ignored before VERS 3.0")
		}
		return info, nil
	}
	if dlm == nil {
		return info, versionErr(sectionLine, fmt.Errorf("%w: DLM", ErrMissingRequiredField))
	}
	d, err := lex.ParseDelimiter(firstWord(dlm.entry.Value))
	if err != nil {
		return info, versionErr(dlm.line, fmt.Errorf("%w: %w", ErrMalformedHeaderLine, err))
	}
	info.Delimiter = d
	return info, nil
}

func versionErr(line int, err error) error {
	return &ParseError{Line: line, Section: lex.CategoryVersion.String(), Err: err}
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func toHeaderEntry(e header.Entry) HeaderEntry {
	return HeaderEntry{
		Mnemonic:    e.Mnemonic,
		Unit:        e.Unit,
		Value:       e.Value,
		Description: e.Description,
		Format:      e.Format,
	}
}

package header

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatKind is the leading letter class of a {...} format specifier.
type FormatKind int

const (
	FormatNone FormatKind = iota
	FormatFloat
	FormatInteger
	FormatString
	FormatExponent
	FormatDateTime
	FormatArray
)

func (k FormatKind) String() string {
	switch k {
	case FormatFloat:
		return "F"
	case FormatInteger:
		return "I"
	case FormatString:
		return "S"
	case FormatExponent:
		return "E"
	case FormatDateTime:
		return "D"
	case FormatArray:
		return "A"
	default:
		return ""
	}
}

// Format is a decoded format specifier. Width and Precision are 0 when
// not given. Element and Spacing are only set for array formats.
type Format struct {
	Kind      FormatKind
	Raw       string
	Width     int
	Precision int
	Pattern   string
	Element   *Format
	Spacing   []float64
}

// IsString reports whether values under this format are kept as text.
func (f Format) IsString() bool {
	switch f.Kind {
	case FormatString, FormatDateTime:
		return true
	case FormatArray:
		return f.Element != nil && f.Element.IsString()
	default:
		return false
	}
}

var dateTokens = map[string]bool{
	"D": true, "DD": true,
	"M": true, "MM": true, "MMM": true, "MMMM": true,
	"YY": true, "YYYY": true,
}

var timeTokens = map[string]bool{
	"h": true, "hh": true, "H": true, "HH": true,
	"m": true, "mm": true,
	"s": true, "ss": true,
}

// ParseFormat decodes the text between the braces of a format specifier:
// F[w[.p]], I[w], S[w], E<pattern>, a date/time pattern, or
// A[format][;spacing...] (A:offset is accepted as the spacing-only form).
func ParseFormat(raw string) (Format, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Format{}, fmt.Errorf("%w: empty", ErrMalformedFormat)
	}
	f := Format{Raw: raw}
	rest := raw[1:]
	switch raw[0] {
	case 'F':
		f.Kind = FormatFloat
		w, p, err := widthPrecision(rest, true)
		if err != nil {
			return Format{}, fmt.Errorf("%w: %q", ErrMalformedFormat, raw)
		}
		f.Width, f.Precision = w, p
	case 'I', 'S':
		f.Kind = FormatInteger
		if raw[0] == 'S' {
			f.Kind = FormatString
		}
		w, _, err := widthPrecision(rest, false)
		if err != nil {
			return Format{}, fmt.Errorf("%w: %q", ErrMalformedFormat, raw)
		}
		f.Width = w
	case 'E':
		f.Kind = FormatExponent
		if strings.Trim(rest, "0123456789.#Ee+-") != "" {
			return Format{}, fmt.Errorf("%w: %q", ErrMalformedFormat, raw)
		}
		f.Pattern = rest
	case 'A':
		f.Kind = FormatArray
		if err := parseArray(&f, rest); err != nil {
			return Format{}, err
		}
	case 'D', 'M', 'Y', 'h', 'H':
		f.Kind = FormatDateTime
		if !validDateTime(raw) {
			return Format{}, fmt.Errorf("%w: %q", ErrMalformedFormat, raw)
		}
		f.Pattern = raw
	default:
		return Format{}, fmt.Errorf("%w: %q", ErrMalformedFormat, raw)
	}
	return f, nil
}

func widthPrecision(s string, allowPrecision bool) (int, int, error) {
	if s == "" {
		return 0, 0, nil
	}
	wPart, pPart, hasDot := strings.Cut(s, ".")
	if hasDot && !allowPrecision {
		return 0, 0, ErrMalformedFormat
	}
	w, err := strconv.Atoi(wPart)
	if err != nil || w < 0 {
		return 0, 0, ErrMalformedFormat
	}
	if !hasDot {
		return w, 0, nil
	}
	p, err := strconv.Atoi(pPart)
	if err != nil || p < 0 {
		return 0, 0, ErrMalformedFormat
	}
	return w, p, nil
}

func parseArray(f *Format, rest string) error {
	var spacing []string
	if strings.HasPrefix(rest, ":") {
		spacing = strings.FieldsFunc(rest[1:], func(r rune) bool { return r == ';' || r == ',' })
	} else {
		parts := strings.Split(rest, ";")
		if elem := strings.TrimSpace(parts[0]); elem != "" {
			inner, err := ParseFormat(elem)
			if err != nil || inner.Kind == FormatArray {
				return fmt.Errorf("%w: array element %q", ErrMalformedFormat, elem)
			}
			f.Element = &inner
		}
		spacing = parts[1:]
	}
	for _, s := range spacing {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("%w: array spacing %q", ErrMalformedFormat, s)
		}
		f.Spacing = append(f.Spacing, v)
	}
	return nil
}

func validDateTime(raw string) bool {
	parts := strings.Fields(raw)
	if len(parts) == 0 || len(parts) > 2 {
		return false
	}
	if len(parts) == 1 && strings.ContainsRune(parts[0], ':') {
		return validTokens(parts[0], ":", timeTokens)
	}
	if !validDate(parts[0]) {
		return false
	}
	return len(parts) == 1 || validTokens(parts[1], ":", timeTokens)
}

func validDate(s string) bool {
	sep := "-"
	if strings.ContainsRune(s, '/') {
		if strings.ContainsRune(s, '-') {
			return false
		}
		sep = "/"
	}
	return validTokens(s, sep, dateTokens)
}

func validTokens(s, sep string, allowed map[string]bool) bool {
	for _, tok := range strings.Split(s, sep) {
		if !allowed[tok] {
			return false
		}
	}
	return true
}

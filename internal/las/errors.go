package las

import (
	"errors"
	"fmt"

	"github.com/danmuck/lasdev/internal/las/ascii"
	"github.com/danmuck/lasdev/internal/las/header"
)

var (
	ErrVersion                       = errors.New("las: unsupported or missing version")
	ErrMalformedHeaderLine           = header.ErrMalformedLine
	ErrMissingRequiredField          = errors.New("las: missing required field")
	ErrUnresolvedDefinitionReference = errors.New("las: data section references an unknown definition")
	ErrInvalidIndexValue             = ascii.ErrInvalidIndexValue
	ErrTruncatedWrappedRow           = ascii.ErrTruncatedWrappedRow
	ErrRowWidth                      = ascii.ErrRowWidth
	ErrNonMonotonicIndex             = ascii.ErrNonMonotonicIndex
	ErrSectionOrder                  = errors.New("las: section out of order")
	ErrDuplicateSection              = errors.New("las: duplicate section")
	ErrNoDataSection                 = errors.New("las: no data section")
	ErrArityMismatch                 = errors.New("las: array channel arity mismatch")
	ErrDialectDowngrade              = errors.New("las: document cannot be written in the legacy dialect")
	ErrWrite                         = errors.New("las: write failed")
)

// ParseError is returned for every failure detected while decoding. Line
// is 1-based; 0 means the failure was detected at end of input.
type ParseError struct {
	Line    int
	Section string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("las: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("las: line %d [%s]: %v", e.Line, e.Section, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

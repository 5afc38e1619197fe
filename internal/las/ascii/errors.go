package ascii

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndexValue   = errors.New("ascii: invalid index value")
	ErrTruncatedWrappedRow = errors.New("ascii: truncated wrapped row")
	ErrRowWidth            = errors.New("ascii: row has more fields than channels")
	ErrNonMonotonicIndex   = errors.New("ascii: index is not monotonic")
	ErrEmptyLayout         = errors.New("ascii: layout has no channels")
)

// LineError pins a reader failure to the 1-based physical line it was
// detected on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func lineErr(line int, err error) error {
	return &LineError{Line: line, Err: err}
}

package las

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/lasdev/internal/las/ascii"
	"github.com/danmuck/lasdev/internal/las/lex"
)

// Requirement is one mandatory header mnemonic.
type Requirement struct {
	Mnemonic string
	Numeric  bool
}

// ValidationError names the requirement a header section failed.
type ValidationError struct {
	Section  string
	Mnemonic string
	Reason   string
	Err      error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Section, e.Mnemonic, e.Reason)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

var requirements = map[lex.Category][]Requirement{
	lex.CategoryWell: {
		{"STRT", true},
		{"STOP", true},
		{"STEP", true},
		{"NULL", true},
	},
}

// validateWell checks the Well section against its requirement table in
// declaration order, so the first failure reported is deterministic.
func validateWell(w *Well) error {
	for _, req := range requirements[lex.CategoryWell] {
		e, ok := w.Get(req.Mnemonic)
		if !ok || strings.TrimSpace(e.Value) == "" {
			return ValidationError{
				Section:  lex.CategoryWell.String(),
				Mnemonic: req.Mnemonic,
				Reason:   "missing required field",
				Err:      ErrMissingRequiredField,
			}
		}
		if !req.Numeric {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(e.Value), 64); err != nil {
			return ValidationError{
				Section:  lex.CategoryWell.String(),
				Mnemonic: req.Mnemonic,
				Reason:   fmt.Sprintf("value %q is not numeric", e.Value),
				Err:      ErrMalformedHeaderLine,
			}
		}
	}
	return nil
}

// checkStep compares a constant index step with the declared STEP. A
// disagreement is logged; only direction changes are fatal, and those are
// caught by the data reader.
func checkStep(w *Well, tbl *ascii.Table) {
	idx := tbl.Index()
	if len(idx) < 2 {
		return
	}
	step, err := w.Float("STEP")
	if err != nil || step == 0 {
		return
	}
	observed := idx[1] - idx[0]
	tol := 1e-6 * math.Max(1, math.Abs(step))
	for i := 2; i < len(idx); i++ {
		if math.Abs((idx[i]-idx[i-1])-observed) > tol {
			log.Debug().Msg("index step is not constant")
			return
		}
	}
	if math.Abs(observed-step) > tol {
		log.Warn().
			Float64("step", step).
			Float64("observed", observed).
			Msg("index step disagrees with STEP")
	}
}

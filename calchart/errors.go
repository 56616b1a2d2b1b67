package calchart

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind classifies a decode or continuity failure. Test for a kind with
// the package-level Is, e.g. Is(err, ErrDecodeTruncated).
type ErrKind int

const (
	// ErrDecodeTruncated means a required field or block ended before its
	// declared size.
	ErrDecodeTruncated ErrKind = iota + 1
	// ErrDecodeTagMismatch means an END sentinel did not match the opening tag.
	ErrDecodeTagMismatch
	// ErrDecodeUnknownVersion means the file declares a version newer than
	// this implementation understands.
	ErrDecodeUnknownVersion
	// ErrContinuitySyntax means legacy continuity text failed to parse.
	ErrContinuitySyntax
	// ErrContinuityInconsistency means the legacy 3.3-and-earlier
	// symbol-to-continuity-index mapping disagreed with point assignments.
	ErrContinuityInconsistency
	// ErrBudgetOverrun means a marcher's continuity emitted more beats than
	// the sheet declares.
	ErrBudgetOverrun
	// ErrBudgetUnderrun means fewer beats were emitted than the sheet
	// declares; the compiler pads with MarkTime and reports this as a
	// warning rather than a fatal error.
	ErrBudgetUnderrun
	// ErrRange means a reference-point or symbol index fell outside its
	// legal range.
	ErrRange
)

func (k ErrKind) String() string {
	switch k {
	case ErrDecodeTruncated:
		return "decode truncated"
	case ErrDecodeTagMismatch:
		return "decode tag mismatch"
	case ErrDecodeUnknownVersion:
		return "decode unknown version"
	case ErrContinuitySyntax:
		return "continuity syntax"
	case ErrContinuityInconsistency:
		return "continuity inconsistency"
	case ErrBudgetOverrun:
		return "budget overrun"
	case ErrBudgetUnderrun:
		return "budget underrun"
	case ErrRange:
		return "range error"
	default:
		return "unknown error"
	}
}

// kindError is the sentinel carried by every core error so callers can
// Is(err, ErrBudgetOverrun) etc. regardless of how many layers wrapped it
// on the way up.
type kindError struct {
	kind ErrKind
}

func (e *kindError) Error() string { return e.kind.String() }

// Is implements the errors.Is target protocol: a *kindError matches another
// *kindError with the same kind. ErrKind itself is not an error, so
// errors.Is(err, ErrBudgetOverrun) would not type-check; the package-level
// Is below builds the *kindError target instead.
func (e *kindError) Is(target error) bool {
	other, ok := target.(*kindError)
	if !ok {
		return false
	}
	return e.kind == other.kind
}

// newErr builds a fresh error of the given kind with a formatted message.
func newErr(kind ErrKind, format string, args ...any) error {
	return errors.WithMessage(&kindError{kind: kind}, fmt.Sprintf(format, args...))
}

// wrapErr attaches layer context to err while preserving its kind for
// errors.Is and its cause chain for %+v stack printing.
func wrapErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// Is reports whether err carries the given ErrKind, unwrapping pkg/errors
// wrap chains as needed.
func Is(err error, kind ErrKind) bool {
	return errors.Is(err, &kindError{kind: kind})
}

// ContinuityError is one error produced while evaluating a marcher's
// continuity on a sheet. Compilation collects these rather than aborting
// (spec: "compilation does not halt on the first error").
type ContinuityError struct {
	SheetIndex   int
	MarcherIndex int
	Symbol       SymbolKind
	Err          error
}

func (e *ContinuityError) Error() string {
	return fmt.Sprintf("sheet %d marcher %d symbol %s: %v", e.SheetIndex, e.MarcherIndex, e.Symbol, e.Err)
}

func (e *ContinuityError) Unwrap() error { return e.Err }

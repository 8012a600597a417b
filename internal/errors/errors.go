// Package errors is the error catalogue of the solver. Every user-facing
// failure is a normalized error with an RFC code so callers can match on
// the kind with Equal instead of comparing strings.
package errors

import (
	"github.com/pingcap/errors"
)

// errors
var (
	// configuration errors, reported before any search starts
	ErrConfigInvalid = errors.Normalize(
		"invalid configuration, %s",
		errors.RFCCodeText("CBSH:ErrConfigInvalid"),
	)
	ErrUnknownHeuristic = errors.Normalize(
		"unknown heuristic %q, expected one of NONE, CG, DG, WDG",
		errors.RFCCodeText("CBSH:ErrUnknownHeuristic"),
	)
	ErrMissingInput = errors.Normalize(
		"input file is required",
		errors.RFCCodeText("CBSH:ErrMissingInput"),
	)
	ErrDecodeConfig = errors.Normalize(
		"decode config file %s",
		errors.RFCCodeText("CBSH:ErrDecodeConfig"),
	)
	ErrConfigUnknownItem = errors.Normalize(
		"unknown config items: %s",
		errors.RFCCodeText("CBSH:ErrConfigUnknownItem"),
	)

	// instance and document errors
	ErrDecodeInput = errors.Normalize(
		"decode input document %s",
		errors.RFCCodeText("CBSH:ErrDecodeInput"),
	)
	ErrInvalidInstance = errors.Normalize(
		"invalid instance, %s",
		errors.RFCCodeText("CBSH:ErrInvalidInstance"),
	)
	ErrWriteOutput = errors.Normalize(
		"write output document %s",
		errors.RFCCodeText("CBSH:ErrWriteOutput"),
	)
	ErrInvalidSchedule = errors.Normalize(
		"invalid schedule, %s",
		errors.RFCCodeText("CBSH:ErrInvalidSchedule"),
	)

	// search outcomes
	ErrInfeasible = errors.Normalize(
		"no feasible plan, %s",
		errors.RFCCodeText("CBSH:ErrInfeasible"),
	)
	ErrTimeout = errors.Normalize(
		"search cutoff of %s reached, best lower bound %d",
		errors.RFCCodeText("CBSH:ErrTimeout"),
	)
)

// IsSearchFailure reports whether err is a failed plan (infeasible or
// timed out) rather than a configuration or I/O problem.
func IsSearchFailure(err error) bool {
	return ErrInfeasible.Equal(err) || ErrTimeout.Equal(err)
}

// Trace annotates err with the caller's stack.
func Trace(err error) error {
	return errors.Trace(err)
}

// Annotate adds a message to err.
func Annotate(err error, message string) error {
	return errors.Annotate(err, message)
}

// Cause returns the innermost error of err.
func Cause(err error) error {
	return errors.Cause(err)
}

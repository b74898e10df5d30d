// Package errors provides error handling for docbind.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrCircularReference) {
//	    // record and skip
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Common sentinel errors for use across docbind.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrParseFailure indicates a type signature could not be parsed.
	// Callers recover locally by falling back to the cleaned raw text.
	ErrParseFailure = New("signature parse failure")

	// ErrConfigLoad indicates a mapping or application config payload was
	// rejected. Loads are all-or-nothing: nothing is applied on failure.
	ErrConfigLoad = New("config load failure")

	// ErrFetchFailure indicates a documentation page could not be fetched
	// or parsed. Counted per dependency, never fatal to a session.
	ErrFetchFailure = New("page fetch failure")

	// ErrCircularReference indicates a dependency resolved back into a
	// document already visited this session.
	ErrCircularReference = New("circular type reference")

	// ErrIterationCap indicates the resolution loop hit its round limit.
	// Reported as a warning with partial results, never as a failure.
	ErrIterationCap = New("resolution iteration cap reached")
)

// IsParseFailure checks if an error is or wraps ErrParseFailure
func IsParseFailure(err error) bool {
	return err != nil && Is(err, ErrParseFailure)
}

// IsCircular checks if an error is or wraps ErrCircularReference
func IsCircular(err error) bool {
	return err != nil && Is(err, ErrCircularReference)
}

// IsFetchFailure checks if an error is or wraps ErrFetchFailure
func IsFetchFailure(err error) bool {
	return err != nil && Is(err, ErrFetchFailure)
}

// NewFetchError creates a fetch failure with a formatted message
func NewFetchError(format string, args ...interface{}) error {
	return Wrap(ErrFetchFailure, Newf(format, args...).Error())
}

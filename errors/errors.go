// Package errors provides error handling for opsq.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for operator-facing diagnostics
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
//	if errors.Is(err, errors.ErrUnknownIntent) {
//	    // handle catalog gap
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
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the query resolution pipeline.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrUnknownIntent indicates the classifier produced an intent with no
	// template in the active catalog. Given the classifier's default
	// fallback this signals a catalog gap, not bad user input.
	ErrUnknownIntent = New("unknown intent")

	// ErrUnresolvableConcept indicates a present field has no concept
	// mapping for the active intent. This is a catalog authoring bug and
	// must never surface verbatim to end users.
	ErrUnresolvableConcept = New("unresolvable concept")

	// ErrMalformedSchema indicates the catalog document failed consistency
	// validation at load time. Fatal at startup, never per-request.
	ErrMalformedSchema = New("malformed schema")

	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")
)

// IsCatalogError reports whether err stems from catalog misconfiguration
// rather than user input. Used by the orchestrator to route diagnostics to
// operators instead of producing a clarification prompt.
func IsCatalogError(err error) bool {
	return Is(err, ErrUnknownIntent) ||
		Is(err, ErrUnresolvableConcept) ||
		Is(err, ErrMalformedSchema)
}

// Package errs defines the closed set of error kinds the compiler can
// return. Every failure surfaced to a caller is a *CompileError carrying the
// offending identifier, grounded on the IDResolutionError wrap-and-identify
// pattern nanostore/ids/resolver.go uses for ID resolution failures.
package errs

import "fmt"

// Kind is one of the closed set of compiler failure modes.
type Kind string

const (
	UnknownField             Kind = "UnknownField"
	NoPrimaryKey             Kind = "NoPrimaryKey"
	DisconnectedCube         Kind = "DisconnectedCube"
	RecursionLimit           Kind = "RecursionLimit"
	UnsupportedWindowInJoin  Kind = "UnsupportedWindowInJoin"
	MultiColumnPKUnsupported Kind = "MultiColumnPKUnsupported"
	InvalidCatalog           Kind = "InvalidCatalog"
	EmptyQuery               Kind = "EmptyQuery"
)

// CompileError is returned for every compiler failure. Ident names the field,
// cube, or template fragment responsible so callers can surface it verbatim.
type CompileError struct {
	Kind  Kind
	Ident string
	Err   error
}

// New creates a CompileError with no wrapped cause.
func New(kind Kind, ident string) *CompileError {
	return &CompileError{Kind: kind, Ident: ident}
}

// Wrap creates a CompileError that wraps an underlying cause.
func Wrap(kind Kind, ident string, err error) *CompileError {
	return &CompileError{Kind: kind, Ident: ident, Err: err}
}

func (e *CompileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Ident, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Ident)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

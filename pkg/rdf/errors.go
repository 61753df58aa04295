package rdf

import (
	"errors"
	"fmt"
)

var (
	// Argument errors, returned before any handler notification.
	ErrNilReader      = errors.New("reader must not be nil")
	ErrEmptyBaseIRI   = errors.New("base IRI must not be empty")
	ErrInvalidBaseIRI = errors.New("invalid base IRI")

	// Line level errors, always wrapped in a *ParseError.
	ErrUnresolvedReference = errors.New("unresolved node reference")
	ErrMalformedNode       = errors.New("malformed node definition")
	ErrMalformedRelation   = errors.New("malformed relation definition")
	ErrInvalidIRI          = errors.New("invalid IRI")

	ErrYARSWriteUnsupported = errors.New("writing YARS is not supported")
)

// ParseError reports a fatal problem on a specific input line.
type ParseError struct {
	Line   int    // 1-based line number
	Text   string // the offending line, without its terminator
	NodeID string // node identifier involved, if any
	Err    error
}

func (e *ParseError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("line %d: %v %q: %s", e.Line, e.Err, e.NodeID, e.Text)
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// HandlerError wraps an error returned by a TripleHandler so callers can tell
// consumer failures apart from parse failures.
type HandlerError struct {
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("triple handler: %v", e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Package errkind classifies the error kinds spec'd for the string-graph
// pipeline (ConfigError, IoError, FormatError, StateError, NotFound) so
// callers can distinguish "bad input" from "programmer called this out of
// order" without parsing error strings. It wraps github.com/pkg/errors for
// message formatting and stack traces, the way the rest of this repo does.
package errkind

import "github.com/pkg/errors"

// Kind identifies the category of a pipeline error.
type Kind int

const (
	// Config marks errors like a read count exceeding a representation's
	// limit, a read length exceeding LEN_MAX, out-degree overflow, or an
	// encoding mismatch on load.
	Config Kind = iota
	// IO marks truncated files, write failures, and missing files.
	IO
	// Format marks an unknown header byte, a malformed ASCII line, a
	// token-count mismatch, N=0, or a size-word byte-width mismatch.
	Format
	// State marks an operation invoked in the wrong builder phase, or a
	// reducer that requires sorted edges being called before sorting.
	State
	// NotFound marks a path-finding query with no reachable destination.
	// Callers that expect this case should check for it with Is(err,
	// NotFound) and treat it as an empty result, not a failure.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case IO:
		return "IoError"
	case Format:
		return "FormatError"
	case State:
		return "StateError"
	case NotFound:
		return "NotFound"
	default:
		return "UnknownError"
	}
}

// Error is a pipeline error tagged with a Kind.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.err.Error() }
func (e *Error) Unwrap() error { return e.err }

// New creates a Kind-tagged error with a formatted message.
func New(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, err: errors.Errorf(format, args...)}
}

// Wrap attaches a Kind and a message to an existing error.
func Wrap(k Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, err: errors.Wrap(err, msg)}
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ke, ok := err.(*Error); ok {
			e = ke
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == k
}

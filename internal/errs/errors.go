// Package errs defines the error taxonomy shared by every fsexport operation.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindRead
	KindWrite
	KindParse
	KindLoad
	KindTransform
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrRead            = errors.New("read error")
	ErrWrite           = errors.New("write error")
	ErrParse           = errors.New("parse error")
	ErrLoad            = errors.New("load error")
	ErrTransform       = errors.New("transform error")

	// ErrCycle is wrapped by a read error when a walk re-enters a directory
	// that is already on the current recursion path.
	ErrCycle = errors.New("directory cycle detected")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindNotFound:
		return ErrNotFound
	case KindRead:
		return ErrRead
	case KindWrite:
		return ErrWrite
	case KindParse:
		return ErrParse
	case KindLoad:
		return ErrLoad
	case KindTransform:
		return ErrTransform
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

// Error describes a failed operation on a path.
type Error struct {
	Kind  Kind
	Op    string
	Path  string
	Param string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindInvalidArgument {
		msg := fmt.Sprintf("%s: %s %s", e.Op, e.Kind, e.Param)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}

	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// InvalidArgument reports caller misuse detected before any I/O.
func InvalidArgument(op, param, reason string) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Param: param, Err: errors.New(reason)}
}

func NotFound(op, path string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Path: path, Err: err}
}

func Read(op, path string, err error) *Error {
	return &Error{Kind: KindRead, Op: op, Path: path, Err: err}
}

func Write(op, path string, err error) *Error {
	return &Error{Kind: KindWrite, Op: op, Path: path, Err: err}
}

func Parse(op, path string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Path: path, Err: err}
}

func Load(op, path string, err error) *Error {
	return &Error{Kind: KindLoad, Op: op, Path: path, Err: err}
}

func Transform(op, path string, err error) *Error {
	return &Error{Kind: KindTransform, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries an *Error with the given kind at its top.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

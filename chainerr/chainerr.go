// Package chainerr defines the typed error taxonomy shared by every
// component of the metadata/codec core: not-found, shape, capacity and
// input errors. Callers branch on Kind rather than on error text.
package chainerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can decide whether to recover locally
// (NotFound) or surface it (Shape, Capacity, Input).
type Kind int

const (
	// NotFound: a named pallet/call/event/error/trait/method/constant/
	// storage-entry/custom-value was not present, or a type id does not
	// resolve in the registry.
	NotFound Kind = iota
	// Shape: a value-to-type mismatch at encode time, or a wire-to-type
	// mismatch at decode time.
	Shape
	// Capacity: integer out of range, composite-length mismatch,
	// unrecognized bit-sequence backing path, non-compact-encodable type.
	Capacity
	// Input: unexpected end of input, or trailing bytes after a boundary.
	Input
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case Shape:
		return "shape"
	case Capacity:
		return "capacity"
	case Input:
		return "input"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error carrying enough context for programmatic handling
// and for a precise message, without requiring callers to parse text.
type Error struct {
	Kind Kind
	// Op names the operation that failed (e.g. "typeregistry.Resolve",
	// "codec.Decode").
	Op string
	// Name is the searched-for identifier for NotFound errors (a pallet,
	// call, event, error, trait, method, constant, storage entry or
	// custom-value name).
	Name string
	// Container is the pallet/trait/type that Name was searched within,
	// when applicable.
	Container string
	// TypeID and TypePath describe the offending type, when applicable.
	TypeID   uint64
	HasType  bool
	TypePath string
	// Msg is a precise, human-readable reason.
	Msg string
	// Err is an optional wrapped cause.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Op + ": " + e.Kind.String()
	if e.Container != "" && e.Name != "" {
		msg += fmt.Sprintf(" %q in %q", e.Name, e.Container)
	} else if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.HasType {
		if e.TypePath != "" {
			msg += fmt.Sprintf(" (type %d %s)", e.TypeID, e.TypePath)
		} else {
			msg += fmt.Sprintf(" (type %d)", e.TypeID)
		}
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets sentinel comparisons (errors.Is(err, chainerr.ErrNotFound)) match
// on Kind alone, independent of the specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" && t.Name == "" && t.Container == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// Sentinels for errors.Is comparisons where callers only care about Kind.
var (
	ErrNotFound = &Error{Kind: NotFound}
	ErrShape    = &Error{Kind: Shape}
	ErrCapacity = &Error{Kind: Capacity}
	ErrInput    = &Error{Kind: Input}
)

// NotFoundf builds a NotFound error for a named lookup.
func NotFoundf(op, name, container string) *Error {
	return &Error{Kind: NotFound, Op: op, Name: name, Container: container, Msg: "not found"}
}

// Shapef builds a Shape error.
func Shapef(op string, typeID uint64, typePath string, format string, args ...any) *Error {
	return &Error{Kind: Shape, Op: op, TypeID: typeID, HasType: true, TypePath: typePath, Msg: fmt.Sprintf(format, args...)}
}

// Capacityf builds a Capacity error.
func Capacityf(op string, format string, args ...any) *Error {
	return &Error{Kind: Capacity, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Inputf builds an Input error.
func Inputf(op string, format string, args ...any) *Error {
	return &Error{Kind: Input, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap re-labels err with op: when err is already one of ours it returns a
// copy with the same Kind and details and Op replaced by op; otherwise it
// returns a generic Shape error carrying err as its cause.
func Wrap(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		cp := *e
		cp.Op = op
		return &cp
	}
	return &Error{Kind: Shape, Op: op, Err: err}
}

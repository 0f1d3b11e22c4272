package task

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
)

// Record is the structured, language-neutral representation of a failure
// that must survive being written to the shared result store and read back
// by a different goroutine than the one that produced it. Its shape
// mirrors the error envelope clients see at the external API boundary.
type Record struct {
	Error   bool   // always true; present so the struct round-trips through a generic map shape too
	Class   string // concrete Go type of the original error, e.g. "*errors.errorString"
	Message string
	Code    int
	File    string
	Line    int
	Trace   string
}

func init() {
	RegisterGobType("task.Record", Record{})
}

// EncodeError builds a Record from err. It never panics: a failure while
// inspecting err (a pathological Error() implementation, for instance)
// degrades to a generic record rather than propagating.
func EncodeError(err error) (rec *Record) {
	defer func() {
		if r := recover(); r != nil {
			rec = &Record{Error: true, Class: "unknown", Message: fmt.Sprintf("panic while encoding error: %v", r)}
		}
	}()

	if err == nil {
		return &Record{Error: true, Class: "unknown", Message: "nil error"}
	}

	rec = &Record{
		Error:   true,
		Class:   reflect.TypeOf(err).String(),
		Message: err.Error(),
		Trace:   string(debug.Stack()),
	}

	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		rec.Code = coder.Code()
	}

	var locator interface{ Location() (string, int) }
	if errors.As(err, &locator) {
		rec.File, rec.Line = locator.Location()
	}

	return rec
}

// genericError is what DecodeError reconstructs when the original
// concrete type is not loadable on the caller side; it preserves the
// message and class so the caller can still log or match on it.
type genericError struct {
	class   string
	message string
}

func (e *genericError) Error() string { return e.message }

// Class reports the original, possibly unavailable, concrete type name.
func (e *genericError) Class() string { return e.class }

// DecodeError reconstructs an error from a Record. Since Go has no notion
// of loading an arbitrary class by name, the reconstructed error is always
// a *genericError carrying the original message and class for inspection;
// callers that need to distinguish kinds should match on Record.Class
// directly rather than type-asserting on the result.
func DecodeError(rec *Record) error {
	if rec == nil {
		return nil
	}
	return &genericError{class: rec.Class, message: rec.Message}
}

// IsErrorRecord is a cheap discriminator for payloads that have passed
// through a generic (any) channel, used where a ResultSlot is inspected
// without static type information.
func IsErrorRecord(payload any) bool {
	switch v := payload.(type) {
	case *Record:
		return v != nil
	case Record:
		return v.Error
	default:
		return false
	}
}

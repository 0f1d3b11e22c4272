package task

import "errors"

// ErrSerialization is the sentinel wrapped by every encode/decode failure so
// callers can test for it with errors.Is regardless of the underlying cause.
var ErrSerialization = errors.New("task: serialization error")

// SerializationError reports that a task or its arguments could not cross
// the codec boundary: a captured value was not gob-encodable, or the
// encoded bytes handed to Decode were corrupt or referenced an identifier
// that is no longer registered.
type SerializationError struct {
	Op  string // "encode" or "decode"
	Err error  // underlying cause
}

func (e *SerializationError) Error() string {
	if e.Err == nil {
		return "task: " + e.Op + ": serialization error"
	}
	return "task: " + e.Op + ": " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error { return ErrSerialization }

func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

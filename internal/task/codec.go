package task

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
	"sync/atomic"
)

// Func is a registered unit of user work. It receives its decoded arguments
// positionally and returns a value or an error, mirroring a plain Go call.
type Func func(args ...any) (any, error)

// Encoded is the self-contained byte representation produced by Encode. It
// is what actually travels through the shared task queue.
type Encoded []byte

type wireTask struct {
	ID   string
	Args []any
}

var (
	mu       sync.RWMutex
	fnByID   = map[string]Func{}
	seq      uint64
	gobMu    sync.Mutex // encoding/gob's global type registry is not safe for concurrent Register
	gobTypes = map[string]bool{}
)

// Register records fn under name so that it can later be resolved by
// identifier out of decoded bytes. Re-registering the same name replaces
// the previous function, matching how a process would reload a handler.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	fnByID[name] = fn
}

// Deregister removes a previously registered function. It is used by tests
// and by callers that want to bound registry growth for short-lived,
// one-off tasks.
func Deregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(fnByID, name)
}

// Anonymous registers fn under a freshly generated, process-unique
// identifier and returns it. It backs the common ergonomic call pattern
// (parallel.Run(func(...) {...}, args...)) where the caller never names
// their closure explicitly.
func Anonymous(fn Func) string {
	id := fmt.Sprintf("anon-%d", atomic.AddUint64(&seq, 1))
	Register(id, fn)
	return id
}

// lookup resolves a registered identifier; ok is false if nothing is
// registered under id (including a never-registered or already-Deregistered
// identifier).
func lookup(id string) (Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := fnByID[id]
	return fn, ok
}

// Encode produces a self-contained representation of a call to the function
// registered under id with the given arguments. Arguments are encoded by
// value via gob; a non-transportable argument (a channel, a func, an open
// os.File, …) fails with a *SerializationError.
func Encode(id string, args []any) (Encoded, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wireTask{ID: id, Args: args}); err != nil {
		return nil, &SerializationError{Op: "encode", Err: err}
	}
	return buf.Bytes(), nil
}

// Decode reconstructs an invokable from bytes produced by Encode. It fails
// with a *SerializationError if the bytes are corrupt or no function is
// currently registered under the encoded identifier.
func Decode(b Encoded) (func() (any, error), error) {
	var wt wireTask
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&wt); err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	fn, ok := lookup(wt.ID)
	if !ok {
		return nil, &SerializationError{Op: "decode", Err: fmt.Errorf("no function registered under %q", wt.ID)}
	}
	return func() (any, error) { return fn(wt.Args...) }, nil
}

// RegisterGobType registers a concrete type that will flow through task
// arguments or return values so that gob can encode/decode it when it is
// only reachable through an interface{} (any) field. Safe to call
// repeatedly with the same value; only the first call per name takes
// effect.
func RegisterGobType(name string, zero any) {
	gobMu.Lock()
	defer gobMu.Unlock()
	if gobTypes[name] {
		return
	}
	gobTypes[name] = true
	gob.RegisterName(name, zero)
}

package task

import "time"

// init pre-registers the concrete types that flow through task arguments
// and return values in virtually every caller: gob only knows how to move
// a concrete type through an interface{} slot once it has been named, and
// requiring every caller to do that for an int or a string would make the
// common case painful. Anything beyond these — a caller's own struct
// types, for instance — must still be registered explicitly with
// RegisterGobType, which is exactly the "non-transportable captured
// value" boundary the codec contract describes.
func init() {
	RegisterGobType("bool", false)
	RegisterGobType("int", int(0))
	RegisterGobType("int64", int64(0))
	RegisterGobType("float64", float64(0))
	RegisterGobType("string", "")
	RegisterGobType("[]uint8", []byte(nil))
	RegisterGobType("[]any", []any(nil))
	RegisterGobType("[]int", []int(nil))
	RegisterGobType("[]string", []string(nil))
	RegisterGobType("map[string]any", map[string]any(nil))
	RegisterGobType("map[string]int", map[string]int(nil))
	RegisterGobType("time.Duration", time.Duration(0))
}

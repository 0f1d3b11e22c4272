package task

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	id := Anonymous(func(args ...any) (any, error) {
		a := args[0].(int)
		b := args[1].(int)
		return a + b, nil
	})
	defer Deregister(id)

	enc, err := Encode(id, []any{5, 3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	call, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	v, err := call()
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if v.(int) != 8 {
		t.Fatalf("got %v, want 8", v)
	}
}

func TestEncodeDecodeNilAndFalseRoundTrip(t *testing.T) {
	id := Anonymous(func(args ...any) (any, error) {
		return args[0], nil
	})
	defer Deregister(id)

	for _, in := range []any{nil, false} {
		enc, err := Encode(id, []any{in})
		if err != nil {
			t.Fatalf("Encode(%v): %v", in, err)
		}
		call, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%v): %v", in, err)
		}
		v, err := call()
		if err != nil {
			t.Fatalf("call(%v): %v", in, err)
		}
		if v != in {
			t.Fatalf("got %v, want %v", v, in)
		}
	}
}

func TestDecodeCorruptBytesFails(t *testing.T) {
	_, err := Decode(Encoded("not valid gob"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	var serErr *SerializationError
	if !errors.As(err, &serErr) {
		t.Fatalf("expected *SerializationError, got %T", err)
	}
}

func TestDecodeUnknownIDFails(t *testing.T) {
	enc, err := Encode("definitely-not-registered", nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = Decode(enc)
	if err == nil {
		t.Fatal("expected decode error for unknown id")
	}
	if !errors.Is(err, ErrSerialization) {
		t.Fatalf("expected ErrSerialization sentinel, got %v", err)
	}
}

func TestEncodeNonTransportableArgFails(t *testing.T) {
	id := Anonymous(func(args ...any) (any, error) { return nil, nil })
	defer Deregister(id)

	ch := make(chan int)
	_, err := Encode(id, []any{ch})
	if err == nil {
		t.Fatal("expected SerializationError for a channel argument")
	}
}

func TestEncodeErrorNeverPanics(t *testing.T) {
	rec := EncodeError(errors.New("boom"))
	if rec.Message != "boom" {
		t.Fatalf("got message %q", rec.Message)
	}
	if !strings.Contains(rec.Class, "errorString") {
		t.Fatalf("got class %q", rec.Class)
	}
}

func TestDecodeErrorPreservesMessage(t *testing.T) {
	rec := &Record{Class: "*errors.errorString", Message: "kaboom"}
	err := DecodeError(rec)
	if err.Error() != "kaboom" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestIsErrorRecord(t *testing.T) {
	if !IsErrorRecord(&Record{Error: true}) {
		t.Fatal("expected true for *Record")
	}
	if IsErrorRecord(42) {
		t.Fatal("expected false for non-record payload")
	}
	if IsErrorRecord((*Record)(nil)) {
		t.Fatal("expected false for nil *Record")
	}
}

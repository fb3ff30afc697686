package mulberry

import (
	"errors"
	"fmt"

	"github.com/blockberries/mulberry/pkg/builder"
)

// Sentinel errors for conditions callers commonly want to match with
// errors.Is, mirroring the teacher's cramberry sentinel set.
var (
	// ErrNotPointer indicates a Compile/Decode target was not a pointer.
	ErrNotPointer = errors.New("mulberry: target must be a pointer")

	// ErrNilPointer indicates a Compile/Decode target pointer was nil.
	ErrNilPointer = errors.New("mulberry: target must not be nil")

	// ErrTypeMismatch indicates a DecodeInto target's type does not match
	// the type a Codec was compiled for.
	ErrTypeMismatch = errors.New("mulberry: target type does not match compiled type")

	// ErrMaxDepthExceeded indicates decoding recursed past Limits.MaxDepth.
	ErrMaxDepthExceeded = errors.New("mulberry: maximum nesting depth exceeded")
)

// BuildError reports a failure to compile a schema against a Go type, with
// enough context to locate the offending schema position.
type BuildError struct {
	// Schema names the schema type being built (e.g. "record", "union").
	Schema string

	// Type is the Go type the schema was being built against, if known.
	Type string

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *BuildError) Error() string {
	switch {
	case e.Schema != "" && e.Type != "":
		return fmt.Sprintf("mulberry: build %s -> %s: %s", e.Schema, e.Type, e.Message)
	case e.Schema != "":
		return fmt.Sprintf("mulberry: build %s: %s", e.Schema, e.Message)
	default:
		return fmt.Sprintf("mulberry: build: %s", e.Message)
	}
}

func (e *BuildError) Unwrap() error { return e.Cause }

// DecodeError reports a failure while reading a wire payload, including the
// byte offset at which the failure was detected.
type DecodeError struct {
	// Type is the Go type being decoded into, if known.
	Type string

	// Offset is the byte offset in the input where the error occurred, or
	// -1 if unknown.
	Offset int

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *DecodeError) Error() string {
	prefix := "mulberry: decode"
	if e.Type != "" {
		prefix = fmt.Sprintf("%s %s", prefix, e.Type)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", prefix, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) Is(target error) bool {
	if target == ErrMaxDepthExceeded {
		var depthErr *builder.MaxDepthExceededError
		if errors.As(e.Cause, &depthErr) {
			return true
		}
	}
	return e.Cause != nil && errors.Is(e.Cause, target)
}

func newDecodeError(typ string, offset int, cause error) *DecodeError {
	return &DecodeError{Type: typ, Offset: offset, Message: cause.Error(), Cause: cause}
}

// Package builder compiles a schema.Schema plus a typeresolve.Resolution
// into a reusable reader function over a wire.Decoder. It is the core of
// mulberry: the dispatch pipeline, the per-schema-kind build cases, the
// build-time cycle-breaking context, and the value-conversion lattice from
// decoded wire primitives to arbitrary Go target types.
package builder

import (
	"fmt"
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
)

// RejectionKind classifies why a case declined to handle a (resolution,
// schema) pair, distinguishing a schema-shape mismatch from a target-type
// mismatch (spec §4.3's match guard outcomes).
type RejectionKind int

const (
	SchemaKindMismatch RejectionKind = iota
	TypeKindMismatch
)

func (k RejectionKind) String() string {
	if k == TypeKindMismatch {
		return "TypeKindMismatch"
	}
	return "SchemaKindMismatch"
}

// Rejection is one case's reason for declining a (resolution, schema) pair.
type Rejection struct {
	Case   string
	Kind   RejectionKind
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s (%s)", r.Case, r.Reason, r.Kind)
}

// UnsupportedSchemaError reports that a case accepted a schema's logical
// type but the physical schema underneath it was wrong (spec §7); fatal,
// not a rejection, because the case already committed to handling it.
type UnsupportedSchemaError struct {
	Schema schema.Schema
	Detail string
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("mulberry: unsupported schema %s: %s", e.Schema.Kind(), e.Detail)
}

// UnsupportedTypeError reports that a case matched by schema shape but the
// resolved target type cannot receive the decoded value.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Detail string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("mulberry: unsupported type %s: %s", e.Type, e.Detail)
	}
	return fmt.Sprintf("mulberry: unsupported type: %s", e.Detail)
}

// NoMatchingCaseError is terminal: every case in the dispatcher declined the
// (schema, type) pair.
type NoMatchingCaseError struct {
	Schema  schema.Schema
	Type    reflect.Type
	Reasons []Rejection
}

func (e *NoMatchingCaseError) Error() string {
	return fmt.Sprintf("mulberry: no case matched schema %s for type %s (%d rejections: %v)",
		e.Schema.Kind(), e.Type, len(e.Reasons), e.Reasons)
}

// OverflowError is raised by a duration with nonzero months, an out-of-range
// enum/union index, or a checked numeric conversion that would lose
// information.
type OverflowError struct {
	Detail string
}

func (e *OverflowError) Error() string { return "mulberry: overflow: " + e.Detail }

// IndexOutOfRangeError is raised when an enum or union branch index read
// from the wire exceeds the schema's declared symbol/branch count.
type IndexOutOfRangeError struct {
	Index int64
	Max   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("mulberry: index %d out of range [0,%d)", e.Index, e.Max)
}

// MaxDepthExceededError is raised at decode time when a record, array, or
// map nests deeper than the decoder's configured limit.
type MaxDepthExceededError struct{}

func (e *MaxDepthExceededError) Error() string { return "mulberry: maximum nesting depth exceeded" }

// CycleBuildViolationError indicates a builder bug: an attempt to reserve a
// build-time slot for a (schema, type) pair that already has one.
type CycleBuildViolationError struct {
	Type reflect.Type
}

func (e *CycleBuildViolationError) Error() string {
	return fmt.Sprintf("mulberry: cycle build violation: slot already reserved for %s", e.Type)
}

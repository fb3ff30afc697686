// Package schema provides the schema model the builder compiles against: an
// immutable tree of schema nodes, each optionally carrying a logical-type
// annotation. This is the "external" schema-model collaborator of spec.md
// §2 (L2) and §3; mulberry ships a concrete implementation of it because,
// unlike the spec's host language, Go has no existing schema-model package
// to depend on.
package schema

import "fmt"

// Kind identifies which branch of the schema sum type a node is.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindFixed
	KindEnum
	KindArray
	KindMap
	KindRecord
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindFixed:
		return "fixed"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// LogicalKind identifies a logical-type annotation (spec §3, §4.12).
type LogicalKind int

const (
	LogicalNone LogicalKind = iota
	LogicalDecimal
	LogicalDuration
	LogicalTimestampMillis
	LogicalTimestampMicros
	LogicalUUID
)

func (k LogicalKind) String() string {
	switch k {
	case LogicalNone:
		return ""
	case LogicalDecimal:
		return "decimal"
	case LogicalDuration:
		return "duration"
	case LogicalTimestampMillis:
		return "timestamp-millis"
	case LogicalTimestampMicros:
		return "timestamp-micros"
	case LogicalUUID:
		return "uuid"
	default:
		return fmt.Sprintf("LogicalKind(%d)", int(k))
	}
}

// LogicalType is the optional annotation a schema node may carry. Precision
// and Scale are only meaningful when Kind == LogicalDecimal.
type LogicalType struct {
	Kind      LogicalKind
	Precision int
	Scale     int
}

// Schema is the common interface of every node in the tree. Schema nodes are
// compared by reference identity within a single build (spec §3): two
// pointers that happen to be structurally identical are still distinct
// schemas unless they are literally the same node, which is how cyclic
// records are represented (a RecordSchema field referring back to the same
// *RecordSchema pointer).
type Schema interface {
	Kind() Kind
	// Logical returns the node's logical-type annotation, or nil if it has
	// none.
	Logical() *LogicalType
}

type base struct {
	logical *LogicalType
}

func (b *base) Logical() *LogicalType { return b.logical }

// NullSchema represents the null type.
type NullSchema struct{ base }

func (*NullSchema) Kind() Kind { return KindNull }

// NewNull returns a new null schema.
func NewNull() *NullSchema { return &NullSchema{} }

// BooleanSchema represents the boolean type.
type BooleanSchema struct{ base }

func (*BooleanSchema) Kind() Kind { return KindBoolean }

// NewBoolean returns a new boolean schema.
func NewBoolean() *BooleanSchema { return &BooleanSchema{} }

// IntSchema represents a 32-bit integer. It carries no logical type.
type IntSchema struct{ base }

func (*IntSchema) Kind() Kind { return KindInt }

// NewInt returns a new int schema.
func NewInt() *IntSchema { return &IntSchema{} }

// LongSchema represents a 64-bit integer, optionally a timestamp logical
// type.
type LongSchema struct{ base }

func (*LongSchema) Kind() Kind { return KindLong }

// NewLong returns a new long schema, optionally annotated with a logical type
// (LogicalTimestampMillis or LogicalTimestampMicros per spec §4.12).
func NewLong(logical *LogicalType) *LongSchema { return &LongSchema{base{logical}} }

// FloatSchema represents a 32-bit IEEE-754 float.
type FloatSchema struct{ base }

func (*FloatSchema) Kind() Kind { return KindFloat }

// NewFloat returns a new float schema.
func NewFloat() *FloatSchema { return &FloatSchema{} }

// DoubleSchema represents a 64-bit IEEE-754 float.
type DoubleSchema struct{ base }

func (*DoubleSchema) Kind() Kind { return KindDouble }

// NewDouble returns a new double schema.
func NewDouble() *DoubleSchema { return &DoubleSchema{} }

// BytesSchema represents a length-prefixed byte sequence, optionally a
// decimal or UUID logical type.
type BytesSchema struct{ base }

func (*BytesSchema) Kind() Kind { return KindBytes }

// NewBytes returns a new bytes schema, optionally annotated with a logical
// type (LogicalDecimal or LogicalUUID).
func NewBytes(logical *LogicalType) *BytesSchema { return &BytesSchema{base{logical}} }

// StringSchema represents a length-prefixed UTF-8 string.
type StringSchema struct{ base }

func (*StringSchema) Kind() Kind { return KindString }

// NewString returns a new string schema, optionally annotated (LogicalUUID).
func NewString(logical *LogicalType) *StringSchema { return &StringSchema{base{logical}} }

// FixedSchema represents a fixed-size byte sequence.
type FixedSchema struct {
	base
	Name string
	Size int
}

func (*FixedSchema) Kind() Kind { return KindFixed }

// NewFixed returns a new fixed schema of the given size, optionally
// annotated with a logical type (LogicalDecimal or LogicalDuration, the
// latter requiring Size == 12 per spec §4.12).
func NewFixed(name string, size int, logical *LogicalType) *FixedSchema {
	return &FixedSchema{base{logical}, name, size}
}

// EnumSchema represents a closed set of named symbols, ordered.
type EnumSchema struct {
	base
	Name    string
	Symbols []string
}

func (*EnumSchema) Kind() Kind { return KindEnum }

// NewEnum returns a new enum schema over symbols, in schema order.
func NewEnum(name string, symbols []string) *EnumSchema {
	return &EnumSchema{Name: name, Symbols: symbols}
}

// ArraySchema represents a block-encoded homogeneous sequence.
type ArraySchema struct {
	base
	Item Schema
}

func (*ArraySchema) Kind() Kind { return KindArray }

// NewArray returns a new array schema over item.
func NewArray(item Schema) *ArraySchema { return &ArraySchema{Item: item} }

// MapSchema represents a block-encoded string-keyed mapping.
type MapSchema struct {
	base
	Value Schema
}

func (*MapSchema) Kind() Kind { return KindMap }

// NewMap returns a new map schema over value.
func NewMap(value Schema) *MapSchema { return &MapSchema{Value: value} }

// Field is one field of a RecordSchema, in wire (schema) order.
type Field struct {
	Name string
	Type Schema
}

// RecordSchema represents a sequence of named, typed fields with no
// framing: fields are concatenated on the wire in schema order (spec §4.10,
// §5's Ordering invariant).
type RecordSchema struct {
	base
	Name   string
	Fields []Field
}

func (*RecordSchema) Kind() Kind { return KindRecord }

// NewRecord returns a new, empty record schema named name. Fields are
// attached afterward via SetFields so that a record can reference itself
// (directly, or via a union branch) before its own field list is complete;
// this is how recursive schemas such as spec §8 scenario 5's Tree are built
// without a separate forward-declaration node.
func NewRecord(name string) *RecordSchema {
	return &RecordSchema{Name: name}
}

// SetFields attaches fields to a record after construction, enabling
// self-referential schemas.
func (r *RecordSchema) SetFields(fields []Field) { r.Fields = fields }

// UnionSchema represents a tagged choice between branches, selected on the
// wire by a branch index (spec §4.11).
type UnionSchema struct {
	base
	Branches []Schema
}

func (*UnionSchema) Kind() Kind { return KindUnion }

// NewUnion returns a new union schema over branches, in branch-index order.
func NewUnion(branches ...Schema) *UnionSchema { return &UnionSchema{Branches: branches} }

// Nullable reports whether one of the union's branches is Null, and returns
// its index if so.
func (u *UnionSchema) Nullable() (index int, ok bool) {
	for i, b := range u.Branches {
		if b.Kind() == KindNull {
			return i, true
		}
	}
	return 0, false
}

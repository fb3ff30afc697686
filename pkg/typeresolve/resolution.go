// Package typeresolve describes target Go types the way the builder needs to
// see them: not as a bare reflect.Type, but as a TypeResolution, a sum type
// that already knows how to test field names for a match, which struct
// fields exist, and which factory functions (if any) can construct the
// value. The builder package depends only on this package's interfaces, not
// on reflect directly, so a future resolver built on static analysis
// (pkg/typeresolve/static.go) can stand in without touching the builder.
package typeresolve

import "reflect"

// Kind identifies which branch of the TypeResolution sum a value belongs to.
type Kind int

const (
	Boolean Kind = iota
	Integer
	Floating
	ByteArray
	String
	Enum
	Array
	Map
	Record
	Duration
	Timestamp
	Decimal
	Opaque
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case Floating:
		return "Floating"
	case ByteArray:
		return "ByteArray"
	case String:
		return "String"
	case Enum:
		return "Enum"
	case Array:
		return "Array"
	case Map:
		return "Map"
	case Record:
		return "Record"
	case Duration:
		return "Duration"
	case Timestamp:
		return "Timestamp"
	case Decimal:
		return "Decimal"
	case Opaque:
		return "Opaque"
	default:
		return "Kind(?)"
	}
}

// Resolution is the common interface of every TypeResolution variant. Type
// returns the underlying reflect.Type so builder cases can allocate zero
// values and perform checked conversions.
type Resolution interface {
	Kind() Kind
	Type() reflect.Type
}

type base struct{ t reflect.Type }

func (b base) Type() reflect.Type { return b.t }

// BooleanResolution targets a bool-kinded type.
type BooleanResolution struct{ base }

func (BooleanResolution) Kind() Kind { return Boolean }

// IntegerResolution targets a fixed-width integer type.
type IntegerResolution struct {
	base
	Width  int // 8, 16, 32, or 64
	Signed bool
}

func (IntegerResolution) Kind() Kind { return Integer }

// FloatingResolution targets a 32- or 64-bit IEEE-754 float type.
type FloatingResolution struct {
	base
	Width int
}

func (FloatingResolution) Kind() Kind { return Floating }

// ByteArrayResolution targets []byte or a fixed-size [N]byte.
type ByteArrayResolution struct {
	base
	Size int // > 0 for a fixed-size array target, 0 for a slice
}

func (ByteArrayResolution) Kind() Kind { return ByteArray }

// StringResolution targets a string-kinded type.
type StringResolution struct{ base }

func (StringResolution) Kind() Kind { return String }

// EnumSymbol pairs a target-side symbol name with the reflect.Value to
// assign when that symbol is selected (a constant of the enum's underlying
// type, or a string, depending on how the Go type represents enumerants).
type EnumSymbol struct {
	Name  Name
	Value reflect.Value
}

// EnumResolution targets a closed set of named constants.
type EnumResolution struct {
	base
	Symbols []EnumSymbol
}

func (EnumResolution) Kind() Kind { return Enum }

// ArrayResolution targets a slice or array type. Constructor, if non-nil, is
// a single-parameter func(S) T accepting a slice of Item and returning T
// (e.g. a constructor for an immutable sequence type); the builder prefers
// it over direct reflect.MakeSlice assembly when present.
type ArrayResolution struct {
	base
	Item        reflect.Type
	FixedLen    int // > 0 for [N]Item targets
	Constructor *reflect.Value
}

func (ArrayResolution) Kind() Kind { return Array }

// MapResolution targets a map type. Constructor, if non-nil, mirrors
// ArrayResolution.Constructor but for map-shaped intermediates.
type MapResolution struct {
	base
	Key         reflect.Type
	Value       reflect.Type
	Constructor *reflect.Value
}

func (MapResolution) Kind() Kind { return Map }

// RecordField pairs a schema-facing field name with the struct member it
// resolves to. Index is nil when no member matched (forcing the builder to
// read-and-discard via a surrogate).
type RecordField struct {
	Name   Name
	Index  []int
	Member reflect.Type
}

// Param describes one parameter of a Constructor.
type Param struct {
	Name     Name
	Type     reflect.Type
	Default  *reflect.Value
	Optional bool
}

// Constructor is a factory function the record case may call instead of
// member assignment, when every schema field matches one of its parameters
// by name.
type Constructor struct {
	Func       reflect.Value
	Parameters []Param
}

// RecordResolution targets a struct type (directly or behind a pointer).
// Fields is populated from the struct's exported fields (and "mulberry"
// struct tags, see reflect.go); Constructors is empty unless the caller
// registered factory functions for this type via a Registry.
type RecordResolution struct {
	base
	Fields       []RecordField
	Constructors []Constructor
}

func (RecordResolution) Kind() Kind { return Record }

// DurationResolution targets time.Duration or a type convertible to it.
type DurationResolution struct{ base }

func (DurationResolution) Kind() Kind { return Duration }

// TimestampResolution targets time.Time.
type TimestampResolution struct{ base }

func (TimestampResolution) Kind() Kind { return Timestamp }

// DecimalResolution targets *big.Rat, *big.Float, or a string/float
// substitute for a decimal logical type.
type DecimalResolution struct{ base }

func (DecimalResolution) Kind() Kind { return Decimal }

// OpaqueResolution is the fallback: a type the resolver could not classify
// more specifically, carried through only so a surrogate read can skip past
// it without error.
type OpaqueResolution struct{ base }

func (OpaqueResolution) Kind() Kind { return Opaque }

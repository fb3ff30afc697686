// Package mulberry is the public entry point: compile a schema against a Go
// target type once, then decode as many wire payloads against that compiled
// reader as needed. This mirrors the teacher's split between a one-shot
// convenience call (Unmarshal) and a reusable handle (here, Codec) for
// callers decoding the same shape repeatedly in a hot path.
package mulberry

import (
	"fmt"
	"reflect"

	"github.com/blockberries/mulberry/pkg/builder"
	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// Limits bounds decode-time resource usage, namespaced the way the teacher's
// cramberry.Limits groups its own knobs.
type Limits struct {
	// MaxDepth caps record/array/map nesting. Zero means unlimited.
	MaxDepth int
}

// DefaultLimits allows reasonably deep structures while still catching a
// runaway recursive schema decoding against a non-recursive target.
var DefaultLimits = Limits{MaxDepth: 100}

// Options configures a Codec.
type Options struct {
	Limits Limits

	// Registry resolves target Go types into typeresolve.Resolution values.
	// Defaults to typeresolve.DefaultRegistry.
	Registry *typeresolve.Registry

	// Cache is consulted across builds sharing one Codec's lifetime so a
	// record type referenced from multiple schema positions compiles once.
	// A nil Cache disables cross-build sharing (each Compile call still
	// de-duplicates within itself via Context's reference slots).
	Cache builder.Cache

	// SelectType customizes which resolution a union branch builds
	// against; see builder.Context.SelectType.
	SelectType func(res typeresolve.Resolution, branch schema.Schema) typeresolve.Resolution
}

// DefaultOptions uses the package-wide registry, a fresh map-backed cache,
// and identity branch selection.
var DefaultOptions = Options{
	Limits:   DefaultLimits,
	Registry: typeresolve.DefaultRegistry,
	Cache:    builder.NewMapCache(),
}

// Codec is a schema compiled against one target type: the reusable handle
// callers should keep around for repeated decodes of the same shape.
type Codec struct {
	read  builder.ReadFunc
	typ   reflect.Type
	limit int
}

// Compile builds a Codec that decodes s into values of target's type. target
// is a pointer to a value of the desired shape (e.g. a *MyStruct or a
// *[]int32); its own value is never read or modified, only its type.
func Compile(s schema.Schema, target any, opts Options) (*Codec, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("%w: got %T", ErrNotPointer, target)
	}
	if rv.IsNil() {
		return nil, ErrNilPointer
	}
	t := rv.Type().Elem()

	reg := opts.Registry
	if reg == nil {
		reg = typeresolve.DefaultRegistry
	}
	d := builder.NewDispatcher()
	ctx := builder.NewContext(d, reg, opts.Cache)
	if opts.SelectType != nil {
		ctx.SelectType = opts.SelectType
	}

	read, err := ctx.Build(t, s)
	if err != nil {
		return nil, &BuildError{Type: t.String(), Message: "compiling schema", Cause: err}
	}
	return &Codec{read: read, typ: t, limit: opts.Limits.MaxDepth}, nil
}

// Decode reads one value of the Codec's target type from data.
func (c *Codec) Decode(data []byte) (any, error) {
	dec := getDecoder(data, c.limit)
	defer putDecoder(dec)
	v, err := c.read(dec)
	if err != nil {
		return nil, newDecodeError(c.typ.String(), dec.Pos(), err)
	}
	return v.Interface(), nil
}

// DecodeInto decodes data and stores the result through the pointer v, which
// must point to the same type the Codec was compiled for.
func (c *Codec) DecodeInto(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("%w: got %T", ErrNotPointer, v)
	}
	if rv.IsNil() {
		return ErrNilPointer
	}
	if rv.Type().Elem() != c.typ {
		return fmt.Errorf("%w: have %s, compiled for %s", ErrTypeMismatch, rv.Type().Elem(), c.typ)
	}
	dec := getDecoder(data, c.limit)
	defer putDecoder(dec)
	out, err := c.read(dec)
	if err != nil {
		return newDecodeError(c.typ.String(), dec.Pos(), err)
	}
	rv.Elem().Set(out)
	return nil
}

// Unmarshal is the one-shot convenience form: parse schemaJSON, compile it
// against v's type, and decode data into v. Prefer Compile for any caller
// decoding the same schema/type pair more than once; Unmarshal pays the
// full build cost on every call.
func Unmarshal(data []byte, schemaJSON []byte, v any) error {
	s, err := schema.Parse(schemaJSON)
	if err != nil {
		return fmt.Errorf("mulberry: parsing schema: %w", err)
	}
	codec, err := Compile(s, v, DefaultOptions)
	if err != nil {
		return err
	}
	return codec.DecodeInto(data, v)
}

package typeresolve

import (
	"math/big"
	"reflect"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var (
	timeTimeType     = reflect.TypeOf(time.Time{})
	timeDurationType = reflect.TypeOf(time.Duration(0))
	bigRatType       = reflect.TypeOf(big.Rat{})
	bigFloatType     = reflect.TypeOf(big.Float{})
	pbDurationType   = reflect.TypeOf(&durationpb.Duration{})
	pbTimestampType  = reflect.TypeOf(&timestamppb.Timestamp{})
)

// Registry resolves Go types into TypeResolution values via reflection. It
// also holds the registrations reflection alone cannot recover: which named
// types are enums with which symbols (Go constants leave no runtime trace of
// the group they belong to), and which factory functions double as record
// constructors.
//
// A zero Registry is usable; DefaultRegistry is provided for the common case
// of one process-wide set of registrations.
type Registry struct {
	mu           sync.RWMutex
	enums        map[reflect.Type][]EnumSymbol
	constructors map[reflect.Type][]Constructor
	cache        map[reflect.Type]Resolution
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		enums:        make(map[reflect.Type][]EnumSymbol),
		constructors: make(map[reflect.Type][]Constructor),
		cache:        make(map[reflect.Type]Resolution),
	}
}

// DefaultRegistry is the package-wide registry consulted by Resolve.
var DefaultRegistry = NewRegistry()

// RegisterEnum declares that t (a named integer or string type) is a closed
// enumeration over symbols. Without this, t resolves as a plain Integer or
// String; Go constants carry no runtime metadata linking them to a type's
// enumerated set, so the builder cannot discover symbol names on its own.
func (r *Registry) RegisterEnum(t reflect.Type, symbols ...EnumSymbol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[t] = symbols
	delete(r.cache, t)
}

// RegisterConstructor declares fn (a func(params...) (T | (T, error))) as a
// record constructor for T. paramNames must list fn's parameters in order;
// reflect cannot recover parameter names, so the record case matches schema
// fields against these names instead of struct members when a constructor is
// present and every schema field has a named match.
func (r *Registry) RegisterConstructor(t reflect.Type, fn any, paramNames ...string) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	params := make([]Param, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		name := ""
		if i < len(paramNames) {
			name = paramNames[i]
		}
		params[i] = Param{Name: NewName(name), Type: ft.In(i)}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[t] = append(r.constructors[t], Constructor{Func: fv, Parameters: params})
	delete(r.cache, t)
}

// Resolve classifies t into a TypeResolution. Callers (the builder's pointer
// handling, mirroring the teacher's decodePointer) dereference pointer
// targets before resolving, except *durationpb.Duration and
// *timestamppb.Timestamp, which resolve here as Duration/Timestamp.
func (r *Registry) Resolve(t reflect.Type) (Resolution, error) {
	r.mu.RLock()
	if cached, ok := r.cache[t]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	res, err := r.resolveUncached(t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[t] = res
	r.mu.Unlock()
	return res, nil
}

func (r *Registry) resolveUncached(t reflect.Type) (Resolution, error) {
	if t == nil {
		return nil, &ResolveError{Detail: "nil type"}
	}

	if symbols, ok := r.lookupEnum(t); ok {
		return EnumResolution{base{t}, symbols}, nil
	}

	switch t {
	case timeTimeType:
		return TimestampResolution{base{t}}, nil
	case timeDurationType:
		return DurationResolution{base{t}}, nil
	case bigRatType, bigFloatType:
		return DecimalResolution{base{t}}, nil
	}
	if t.Kind() == reflect.Ptr && (t.Elem() == bigRatType || t.Elem() == bigFloatType) {
		return DecimalResolution{base{t}}, nil
	}
	if t == pbDurationType {
		return DurationResolution{base{t}}, nil
	}
	if t == pbTimestampType {
		return TimestampResolution{base{t}}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return BooleanResolution{base{t}}, nil
	case reflect.Int8:
		return IntegerResolution{base{t}, 8, true}, nil
	case reflect.Int16:
		return IntegerResolution{base{t}, 16, true}, nil
	case reflect.Int32:
		return IntegerResolution{base{t}, 32, true}, nil
	case reflect.Int64, reflect.Int:
		return IntegerResolution{base{t}, 64, true}, nil
	case reflect.Uint8:
		return IntegerResolution{base{t}, 8, false}, nil
	case reflect.Uint16:
		return IntegerResolution{base{t}, 16, false}, nil
	case reflect.Uint32:
		return IntegerResolution{base{t}, 32, false}, nil
	case reflect.Uint64, reflect.Uint:
		return IntegerResolution{base{t}, 64, false}, nil
	case reflect.Float32:
		return FloatingResolution{base{t}, 32}, nil
	case reflect.Float64:
		return FloatingResolution{base{t}, 64}, nil
	case reflect.String:
		return StringResolution{base{t}}, nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return ByteArrayResolution{base{t}, t.Len()}, nil
		}
		return ArrayResolution{base{t}, t.Elem(), t.Len(), nil}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ByteArrayResolution{base{t}, 0}, nil
		}
		return ArrayResolution{base{t}, t.Elem(), 0, nil}, nil
	case reflect.Map:
		return MapResolution{base{t}, t.Key(), t.Elem(), nil}, nil
	case reflect.Struct:
		return r.resolveStruct(t)
	default:
		return OpaqueResolution{base{t}}, nil
	}
}

func (r *Registry) lookupEnum(t reflect.Type) ([]EnumSymbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	symbols, ok := r.enums[t]
	return symbols, ok
}

func (r *Registry) resolveStruct(t reflect.Type) (Resolution, error) {
	fields := make([]RecordField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("mulberry")
		if tag == "-" {
			continue
		}
		name := NewName(f.Name)
		if tag != "" {
			name = NewName(f.Name, tag)
		}
		fields = append(fields, RecordField{Name: name, Index: f.Index, Member: f.Type})
	}

	r.mu.RLock()
	ctors := r.constructors[t]
	r.mu.RUnlock()

	return RecordResolution{base{t}, fields, ctors}, nil
}

// ResolveType is a convenience wrapper over DefaultRegistry.Resolve for a
// reflect.Type value obtained from reflect.TypeOf or similar.
func ResolveType(t reflect.Type) (Resolution, error) {
	return DefaultRegistry.Resolve(t)
}

// ResolveError reports that a Go type could not be classified at all (as
// opposed to UnsupportedType/UnsupportedSchema, which are the builder's
// concern once a Resolution already exists).
type ResolveError struct {
	Type   reflect.Type
	Detail string
}

func (e *ResolveError) Error() string {
	if e.Type != nil {
		return "typeresolve: cannot resolve " + e.Type.String() + ": " + e.Detail
	}
	return "typeresolve: " + e.Detail
}

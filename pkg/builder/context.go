package builder

import (
	"fmt"
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// refKey identifies a build by schema identity (not structural equality,
// per spec §3) and target type.
type refKey struct {
	schema schema.Schema
	typ    reflect.Type
}

// slot is the mutable-delegate indirection spec §9 describes: registered
// before its body is built (Context.Reserve), filled in afterward
// (Context.Fulfill). A reader that invokes a slot before it is fulfilled
// only actually calls sl.fn once decoding begins, by which point the full
// build has completed; this is what makes self-referential schemas buildable
// without the slot's own body existing yet.
type slot struct {
	fn ReadFunc
}

func (s *slot) reader() ReadFunc {
	return func(d decoder) (reflect.Value, error) { return s.fn(d) }
}

// Context is the Build Context of spec §3: shared across one top-level
// build. assignments (the slot list, in registration order) is an
// unexported record of every slot a build reserved; it plays no role in
// decoding itself once every slot is fulfilled, since each slot's reader
// closure already embeds the shared dispatcher, registry, and nested
// Contexts it needs.
type Context struct {
	dispatcher  *Dispatcher
	Registry    *typeresolve.Registry
	Cache       Cache
	references  map[refKey]*slot
	assignments []*slot

	// SelectType customizes which resolution a union branch builds against
	// (spec §4.11's polymorphic hook). Defaults to identity: the branch is
	// built against the same resolution as the union itself.
	SelectType func(res typeresolve.Resolution, branch schema.Schema) typeresolve.Resolution
}

// NewContext creates a build context for one top-level Build call.
func NewContext(d *Dispatcher, reg *typeresolve.Registry, cache Cache) *Context {
	return &Context{
		dispatcher: d,
		Registry:   reg,
		Cache:      cache,
		references: make(map[refKey]*slot),
	}
}

// Build is the recursive re-entry point used by every case to compile a
// nested reader for a field, item, key, value, or branch. It resolves t via
// the context's Registry and delegates to the dispatcher, which consults
// references for cycle-breaking before trying cases.
func (c *Context) Build(t reflect.Type, s schema.Schema) (ReadFunc, error) {
	// A nullable union decoding into a pointer target is the one case where
	// the pointer itself carries meaning: nil stands for the null branch.
	// This has to be handled before the generic unwrap below, which would
	// otherwise strip the pointer and hand the union case a non-nillable
	// resolution (e.g. a plain struct), making a schema's null branch
	// unbuildable against any *record field, the common "optional nested
	// value" shape.
	if t.Kind() == reflect.Ptr {
		if us, ok := s.(*schema.UnionSchema); ok {
			if nullIdx, hasNull := us.Nullable(); hasNull {
				return c.buildNullablePointer(t, us, nullIdx)
			}
		}
	}

	// Pointer targets are otherwise transparently unwrapped: this wire
	// format only expresses optionality through a Union{Null, X} schema
	// branch, never through a separate "is this pointer present" marker, so
	// a *T target field simply decodes a T and boxes it. *durationpb.Duration
	// and *timestamppb.Timestamp are kept as pointers: the registry resolves
	// them as Duration/Timestamp targets directly.
	if t.Kind() == reflect.Ptr && t != pbDurationType && t != pbTimestampType {
		elem := t.Elem()
		elemRead, err := c.Build(elem, s)
		if err != nil {
			return nil, err
		}
		return func(d decoder) (reflect.Value, error) {
			v, err := elemRead(d)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(elem)
			ptr.Elem().Set(v)
			return ptr, nil
		}, nil
	}

	res, err := c.Registry.Resolve(t)
	if err != nil {
		return nil, &UnsupportedTypeError{Type: t, Detail: err.Error()}
	}
	return c.dispatcher.Build(res, s, c)
}

// buildNullablePointer builds a reader for a Union{Null, X} schema against
// a pointer target: the null branch yields a nil pointer, the sole other
// branch yields a newly boxed value. Like the write-side union builder, it
// only handles the two-branch nullable shape; a union with more than one
// non-null branch has no pointer-based representation to pick among them
// and is left to the record/union cases' own resolution-based dispatch.
func (c *Context) buildNullablePointer(t reflect.Type, us *schema.UnionSchema, nullIdx int) (ReadFunc, error) {
	elem := t.Elem()
	valueIdx := 0
	for i := range us.Branches {
		if i != nullIdx {
			valueIdx = i
			break
		}
	}
	elemRead, err := c.Build(elem, us.Branches[valueIdx])
	if err != nil {
		return nil, err
	}
	n := len(us.Branches)
	return func(d decoder) (reflect.Value, error) {
		idx, err := d.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		if idx < 0 || int(idx) >= n {
			return reflect.Value{}, &IndexOutOfRangeError{Index: idx, Max: n}
		}
		if int(idx) == nullIdx {
			return reflect.Zero(t), nil
		}
		v, err := elemRead(d)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(elem)
		ptr.Elem().Set(v)
		return ptr, nil
	}, nil
}

// BuildWithResolution builds a nested reader against an explicitly supplied
// resolution rather than one derived by resolving a reflect.Type; used by
// the union case's select_type hook (spec §4.11), where the resolution to
// use for a given branch may differ from the union's own target type.
func (c *Context) BuildWithResolution(res typeresolve.Resolution, s schema.Schema) (ReadFunc, error) {
	return c.dispatcher.Build(res, s, c)
}

// lookup consults the delegate cache first, then in-flight slot references,
// returning a reader if either already covers (s, t) without rebuilding.
func (c *Context) lookup(s schema.Schema, t reflect.Type) (ReadFunc, bool) {
	if c.Cache != nil {
		if fn, ok := c.Cache.Get(t, s); ok {
			return fn, true
		}
	}
	if sl, ok := c.references[refKey{s, t}]; ok {
		return sl.reader(), true
	}
	return nil, false
}

// Reserve registers a fresh slot for (s, t) before its body is built,
// enabling a field or branch to reference the enclosing record before the
// enclosing record itself finishes building (the record case is the only
// caller; a union reaches a recursive record through that record's slot). It is a builder bug to reserve the same key twice.
func (c *Context) Reserve(s schema.Schema, t reflect.Type) (ReadFunc, error) {
	key := refKey{s, t}
	if _, exists := c.references[key]; exists {
		return nil, &CycleBuildViolationError{Type: t}
	}
	sl := &slot{}
	c.references[key] = sl
	c.assignments = append(c.assignments, sl)
	return sl.reader(), nil
}

// Fulfill stores the built body into the slot reserved for (s, t), and
// populates the delegate cache if one was supplied.
func (c *Context) Fulfill(s schema.Schema, t reflect.Type, fn ReadFunc) {
	key := refKey{s, t}
	sl, ok := c.references[key]
	if !ok {
		panic(fmt.Sprintf("mulberry: Fulfill called without a matching Reserve for %s", t))
	}
	sl.fn = fn
	if c.Cache != nil {
		c.Cache.Put(t, s, sl.reader())
	}
}

// Abandon removes a slot reservation after a failed build, so a retried
// build (e.g. the dispatcher moving on to try a later case, though in
// practice the record and union cases are always last and don't retry) does
// not see a stale in-flight marker.
func (c *Context) Abandon(s schema.Schema, t reflect.Type) {
	delete(c.references, refKey{s, t})
}

func defaultSelectType(res typeresolve.Resolution, _ schema.Schema) typeresolve.Resolution {
	return res
}

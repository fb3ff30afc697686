package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// recordCase is the most intricate case (spec §4.10): it registers a
// cycle-breaking slot before building its own body, so a field or union
// branch that refers back to the same (schema, type) pair resolves to an
// invocation of that slot instead of recursing into the builder again.
type recordCase struct{}

func (recordCase) Name() string { return "Record" }

func (recordCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	rs, ok := s.(*schema.RecordSchema)
	if !ok {
		return Reject("Record", SchemaKindMismatch, "schema is not record"), nil
	}
	rr, ok := res.(typeresolve.RecordResolution)
	if !ok {
		return Reject("Record", TypeKindMismatch, "target is not a record resolution"), nil
	}

	t := res.Type()
	self, err := ctx.Reserve(s, t)
	if err != nil {
		return Result{}, err
	}

	body, err := buildRecordBody(rr, rs, ctx)
	if err != nil {
		ctx.Abandon(s, t)
		return Result{}, err
	}
	ctx.Fulfill(s, t, body)

	return Accept(self), nil
}

func buildRecordBody(rr typeresolve.RecordResolution, rs *schema.RecordSchema, ctx *Context) (ReadFunc, error) {
	if ctor, paramForField, ok := selectConstructor(rr, rs); ok {
		return buildConstructorBody(ctor, paramForField, rs, ctx)
	}
	return buildMemberAssignmentBody(rr, rs, ctx)
}

// selectConstructor implements spec §4.10's "constructor strategy
// (preferred)": a constructor qualifies when every schema field
// name-matches one of its parameters, and every parameter it does NOT match
// is optional or carries a default.
func selectConstructor(rr typeresolve.RecordResolution, rs *schema.RecordSchema) (typeresolve.Constructor, []int, bool) {
candidates:
	for _, ctor := range rr.Constructors {
		paramForField := make([]int, len(rs.Fields))
		usedParams := make(map[int]bool, len(ctor.Parameters))

		for fi, f := range rs.Fields {
			pidx := -1
			for pi, p := range ctor.Parameters {
				if p.Name.Matches(f.Name) {
					pidx = pi
					break
				}
			}
			if pidx == -1 {
				continue candidates
			}
			paramForField[fi] = pidx
			usedParams[pidx] = true
		}

		for pi, p := range ctor.Parameters {
			if !usedParams[pi] && !p.Optional && p.Default == nil {
				continue candidates
			}
		}

		return ctor, paramForField, true
	}
	return typeresolve.Constructor{}, nil, false
}

func buildConstructorBody(ctor typeresolve.Constructor, paramForField []int, rs *schema.RecordSchema, ctx *Context) (ReadFunc, error) {
	fieldReaders := make([]ReadFunc, len(rs.Fields))
	for fi, f := range rs.Fields {
		r, err := ctx.Build(ctor.Parameters[paramForField[fi]].Type, f.Type)
		if err != nil {
			return nil, err
		}
		fieldReaders[fi] = r
	}

	base := make([]reflect.Value, len(ctor.Parameters))
	for pi, p := range ctor.Parameters {
		if p.Default != nil {
			base[pi] = *p.Default
		} else {
			base[pi] = reflect.Zero(p.Type)
		}
	}

	fn := ctor.Func
	hasErr := fn.Type().NumOut() == 2

	return func(d decoder) (reflect.Value, error) {
		if !d.EnterNested() {
			return reflect.Value{}, &MaxDepthExceededError{}
		}
		defer d.ExitNested()

		args := make([]reflect.Value, len(base))
		copy(args, base)
		for fi, r := range fieldReaders {
			v, err := r(d)
			if err != nil {
				return reflect.Value{}, err
			}
			args[paramForField[fi]] = v
		}
		out := fn.Call(args)
		if hasErr && !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}
		return out[0], nil
	}, nil
}

type fieldOp struct {
	read  ReadFunc
	index []int // nil means the value is read and discarded
}

// buildMemberAssignmentBody implements spec §4.10's fallback strategy:
// instantiate via the zero value, then for each schema field either assign
// into a name-matched member or read-and-discard through a surrogate.
func buildMemberAssignmentBody(rr typeresolve.RecordResolution, rs *schema.RecordSchema, ctx *Context) (ReadFunc, error) {
	ops := make([]fieldOp, len(rs.Fields))
	sb := newSkipBuilder()

	for i, f := range rs.Fields {
		matched := false
		for _, rf := range rr.Fields {
			if rf.Name.Matches(f.Name) {
				r, err := ctx.Build(rf.Member, f.Type)
				if err != nil {
					return nil, err
				}
				ops[i] = fieldOp{read: r, index: rf.Index}
				matched = true
				break
			}
		}
		if !matched {
			ops[i] = fieldOp{read: sb.buildSurrogate(f.Type)}
		}
	}

	t := rr.Type()
	return func(d decoder) (reflect.Value, error) {
		if !d.EnterNested() {
			return reflect.Value{}, &MaxDepthExceededError{}
		}
		defer d.ExitNested()

		out := reflect.New(t).Elem()
		for _, op := range ops {
			v, err := op.read(d)
			if err != nil {
				return reflect.Value{}, err
			}
			if op.index != nil {
				out.FieldByIndex(op.index).Set(v)
			}
		}
		return out, nil
	}, nil
}

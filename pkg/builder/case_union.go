package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// unionCase bridges schema.Union to a single target type, dispatching on a
// branch index read from the wire (spec §4.11). The target resolution used
// for each branch defaults to the union's own resolution (identity) but can
// be overridden per branch via Context.SelectType for polymorphic mapping.
type unionCase struct{}

func (unionCase) Name() string { return "Union" }

func isNillableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func (unionCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	us, ok := s.(*schema.UnionSchema)
	if !ok {
		return Reject("Union", SchemaKindMismatch, "schema is not union"), nil
	}
	if len(us.Branches) == 0 {
		return Reject("Union", SchemaKindMismatch, "union has no branches"), nil
	}

	selectType := ctx.SelectType
	if selectType == nil {
		selectType = defaultSelectType
	}

	branchReaders := make([]ReadFunc, len(us.Branches))
	for i, b := range us.Branches {
		selected := selectType(res, b)
		if b.Kind() == schema.KindNull && !isNillableKind(selected.Type().Kind()) {
			return Result{}, &UnsupportedTypeError{
				Type:   selected.Type(),
				Detail: "union has a null branch but the target type has no absent representation",
			}
		}
		r, err := ctx.BuildWithResolution(selected, b)
		if err != nil {
			return Result{}, err
		}
		branchReaders[i] = r
	}

	n := len(branchReaders)
	return Accept(func(d decoder) (reflect.Value, error) {
		idx, err := d.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		if idx < 0 || int(idx) >= n {
			return reflect.Value{}, &IndexOutOfRangeError{Index: idx, Max: n}
		}
		return branchReaders[idx](d)
	}), nil
}

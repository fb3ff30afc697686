package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// arrayCase bridges schema.Array to a slice, fixed-size array, or
// single-constructor sequence target (spec §4.8).
type arrayCase struct{}

func (arrayCase) Name() string { return "Array" }

func (arrayCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	as, ok := s.(*schema.ArraySchema)
	if !ok {
		return Reject("Array", SchemaKindMismatch, "schema is not array"), nil
	}
	ar, ok := res.(typeresolve.ArrayResolution)
	if !ok {
		return Reject("Array", TypeKindMismatch, "target is not an array resolution"), nil
	}

	itemRead, err := ctx.Build(ar.Item, as.Item)
	if err != nil {
		return Result{}, err
	}

	t := res.Type()
	sliceType := reflect.SliceOf(ar.Item)
	fixedLen := ar.FixedLen
	ctor := ar.Constructor

	return Accept(func(d decoder) (reflect.Value, error) {
		if !d.EnterNested() {
			return reflect.Value{}, &MaxDepthExceededError{}
		}
		defer d.ExitNested()

		items := reflect.MakeSlice(sliceType, 0, 0)
		err := d.ReadBlocks(func() error {
			v, err := itemRead(d)
			if err != nil {
				return err
			}
			items = reflect.Append(items, v)
			return nil
		})
		if err != nil {
			return reflect.Value{}, err
		}

		if ctor != nil {
			out := ctor.Call([]reflect.Value{items})
			return out[0], nil
		}
		if fixedLen > 0 {
			if items.Len() > fixedLen {
				return reflect.Value{}, &OverflowError{Detail: "array schema produced more items than the fixed-size target can hold"}
			}
			arr := reflect.New(t).Elem()
			reflect.Copy(arr, items)
			return arr, nil
		}
		if t.Kind() == reflect.Slice && t.Elem() == ar.Item {
			return items, nil
		}
		return items.Convert(t), nil
	}), nil
}

package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// mapCase bridges schema.Map to a Go map target (spec §4.9). Keys are
// always schema String on the wire; build() is still routed through the
// dispatcher so a target key type other than string (e.g. a named string
// type) goes through the same conversion lattice as any other string.
type mapCase struct{}

func (mapCase) Name() string { return "Map" }

func (mapCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	ms, ok := s.(*schema.MapSchema)
	if !ok {
		return Reject("Map", SchemaKindMismatch, "schema is not map"), nil
	}
	mr, ok := res.(typeresolve.MapResolution)
	if !ok {
		return Reject("Map", TypeKindMismatch, "target is not a map resolution"), nil
	}

	keyRead, err := ctx.Build(mr.Key, schema.NewString(nil))
	if err != nil {
		return Result{}, err
	}
	valueRead, err := ctx.Build(mr.Value, ms.Value)
	if err != nil {
		return Result{}, err
	}

	t := res.Type()
	mapType := reflect.MapOf(mr.Key, mr.Value)
	ctor := mr.Constructor

	return Accept(func(d decoder) (reflect.Value, error) {
		if !d.EnterNested() {
			return reflect.Value{}, &MaxDepthExceededError{}
		}
		defer d.ExitNested()

		m := reflect.MakeMap(mapType)
		err := d.ReadBlocks(func() error {
			k, err := keyRead(d)
			if err != nil {
				return err
			}
			v, err := valueRead(d)
			if err != nil {
				return err
			}
			m.SetMapIndex(k, v)
			return nil
		})
		if err != nil {
			return reflect.Value{}, err
		}

		if ctor != nil {
			out := ctor.Call([]reflect.Value{m})
			return out[0], nil
		}
		if t == mapType {
			return m, nil
		}
		return m.Convert(t), nil
	}), nil
}

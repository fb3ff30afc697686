package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// booleanCase bridges schema.Boolean to any bool-kinded target (spec §4.4).
type booleanCase struct{}

func (booleanCase) Name() string { return "Boolean" }

func (booleanCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindBoolean {
		return Reject("Boolean", SchemaKindMismatch, "schema is not boolean"), nil
	}
	t := res.Type()
	if t.Kind() != reflect.Bool {
		return Reject("Boolean", TypeKindMismatch, "target is not bool-compatible"), nil
	}
	return Accept(func(d decoder) (reflect.Value, error) {
		b, err := d.ReadBool()
		if err != nil {
			return reflect.Value{}, err
		}
		return convertBool(b, t)
	}), nil
}

// doubleCase bridges schema.Double to any float-compatible target.
type doubleCase struct{}

func (doubleCase) Name() string { return "Double" }

func (doubleCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindDouble {
		return Reject("Double", SchemaKindMismatch, "schema is not double"), nil
	}
	t := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		v, err := d.ReadDouble()
		if err != nil {
			return reflect.Value{}, err
		}
		return convertFloat(v, t)
	}), nil
}

// floatCase bridges schema.Float to any float-compatible target.
type floatCase struct{}

func (floatCase) Name() string { return "Float" }

func (floatCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindFloat {
		return Reject("Float", SchemaKindMismatch, "schema is not float"), nil
	}
	t := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		v, err := d.ReadFloat()
		if err != nil {
			return reflect.Value{}, err
		}
		return convertFloat(float64(v), t)
	}), nil
}

// integerCase bridges schema.Int or schema.Long to any integer- or
// float-compatible target (spec §4.4: "the Integer case accepts both Int
// and Long").
type integerCase struct{}

func (integerCase) Name() string { return "Integer" }

func (integerCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindInt && s.Kind() != schema.KindLong {
		return Reject("Integer", SchemaKindMismatch, "schema is not int or long"), nil
	}
	t := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		v, err := d.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		return convertInt(v, t)
	}), nil
}

// nullCase emits the target's zero value without consuming any bytes.
type nullCase struct{}

func (nullCase) Name() string { return "Null" }

func (nullCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindNull {
		return Reject("Null", SchemaKindMismatch, "schema is not null"), nil
	}
	t := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		return zeroValue(t), nil
	}), nil
}

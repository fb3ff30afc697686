package builder

import (
	"fmt"
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// enumCase bridges schema.Enum to a typeresolve.EnumResolution target by
// name-matching every schema symbol against exactly one target symbol
// (spec §4.7). Enum is tried after Array/Map and before Record/Union in the
// fixed order; its guard is specific enough (both schema and resolution
// must independently be Enum-shaped) that the ordering relative to those
// neighbors has no observable effect, but the position is kept exactly as
// spec'd so future case insertions don't have to re-derive that.
type enumCase struct{}

func (enumCase) Name() string { return "Enum" }

func (enumCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	es, ok := s.(*schema.EnumSchema)
	if !ok {
		return Reject("Enum", SchemaKindMismatch, "schema is not enum"), nil
	}
	er, ok := res.(typeresolve.EnumResolution)
	if !ok {
		return Reject("Enum", TypeKindMismatch, "target is not an enum resolution"), nil
	}

	values := make([]reflect.Value, len(es.Symbols))
	for i, sym := range es.Symbols {
		matched := false
		for _, target := range er.Symbols {
			if target.Name.Matches(sym) {
				values[i] = target.Value
				matched = true
				break
			}
		}
		if !matched {
			return Result{}, &UnsupportedTypeError{Type: res.Type(), Detail: fmt.Sprintf("no target symbol matches enum symbol %q", sym)}
		}
	}

	n := len(values)
	return Accept(func(d decoder) (reflect.Value, error) {
		idx, err := d.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		if idx < 0 || int(idx) >= n {
			return reflect.Value{}, &IndexOutOfRangeError{Index: idx, Max: n}
		}
		return values[idx], nil
	}), nil
}

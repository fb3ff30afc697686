package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
)

// skipBuilder compiles read-and-discard readers for schema fields the
// target type has no member for (spec §4.10's surrogate type/schema):
// nested enums become a bare int read, nested records become a sequence of
// field skips, arrays/maps of unknown item type remain sequence/mapping
// shells that are walked without materializing their elements. It tracks
// its own cycle-breaking slots by schema identity alone, since a surrogate
// has no target type to key on.
type skipBuilder struct {
	slots map[schema.Schema]*skipSlot
}

type skipSlot struct {
	fn func(d decoder) error
}

func newSkipBuilder() *skipBuilder {
	return &skipBuilder{slots: make(map[schema.Schema]*skipSlot)}
}

// buildSurrogate returns a ReadFunc wrapper around Skip so it can be stored
// alongside ordinary field readers in the record case; the value it
// produces is always the zero Value and must be discarded by the caller.
func (sb *skipBuilder) buildSurrogate(s schema.Schema) ReadFunc {
	skip := sb.build(s)
	return func(d decoder) (reflect.Value, error) {
		return reflect.Value{}, skip(d)
	}
}

func (sb *skipBuilder) build(s schema.Schema) func(d decoder) error {
	if sl, ok := sb.slots[s]; ok {
		return func(d decoder) error { return sl.fn(d) }
	}

	switch t := s.(type) {
	case *schema.NullSchema:
		return func(d decoder) error { return nil }
	case *schema.BooleanSchema:
		return func(d decoder) error { _, err := d.ReadBool(); return err }
	case *schema.IntSchema:
		return func(d decoder) error { _, err := d.ReadInt(); return err }
	case *schema.LongSchema:
		return func(d decoder) error { _, err := d.ReadInt(); return err }
	case *schema.FloatSchema:
		return func(d decoder) error { _, err := d.ReadFloat(); return err }
	case *schema.DoubleSchema:
		return func(d decoder) error { _, err := d.ReadDouble(); return err }
	case *schema.StringSchema:
		return func(d decoder) error { _, err := d.ReadBytes(); return err }
	case *schema.BytesSchema:
		return func(d decoder) error { _, err := d.ReadBytes(); return err }
	case *schema.FixedSchema:
		size := t.Size
		return func(d decoder) error { _, err := d.ReadFixed(size); return err }
	case *schema.EnumSchema:
		return func(d decoder) error { _, err := d.ReadInt(); return err }
	case *schema.ArraySchema:
		item := sb.build(t.Item)
		return func(d decoder) error {
			if !d.EnterNested() {
				return &MaxDepthExceededError{}
			}
			defer d.ExitNested()
			return d.ReadBlocks(func() error { return item(d) })
		}
	case *schema.MapSchema:
		key := sb.build(schema.NewString(nil))
		val := sb.build(t.Value)
		return func(d decoder) error {
			if !d.EnterNested() {
				return &MaxDepthExceededError{}
			}
			defer d.ExitNested()
			return d.ReadBlocks(func() error {
				if err := key(d); err != nil {
					return err
				}
				return val(d)
			})
		}
	case *schema.RecordSchema:
		sl := &skipSlot{}
		sb.slots[s] = sl
		fieldSkips := make([]func(d decoder) error, len(t.Fields))
		for i, f := range t.Fields {
			fieldSkips[i] = sb.build(f.Type)
		}
		sl.fn = func(d decoder) error {
			if !d.EnterNested() {
				return &MaxDepthExceededError{}
			}
			defer d.ExitNested()
			for _, fs := range fieldSkips {
				if err := fs(d); err != nil {
					return err
				}
			}
			return nil
		}
		return sl.fn
	case *schema.UnionSchema:
		branchSkips := make([]func(d decoder) error, len(t.Branches))
		for i, b := range t.Branches {
			branchSkips[i] = sb.build(b)
		}
		n := len(branchSkips)
		return func(d decoder) error {
			idx, err := d.ReadInt()
			if err != nil {
				return err
			}
			if idx < 0 || int(idx) >= n {
				return &IndexOutOfRangeError{Index: idx, Max: n}
			}
			return branchSkips[idx](d)
		}
	default:
		return func(d decoder) error { return nil }
	}
}

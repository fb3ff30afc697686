package schema

import (
	"fmt"
	"sort"
)

// ValidationError describes a single structural problem found in a schema
// tree.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate walks a schema tree and reports every structural problem it
// finds: duplicate enum symbols, duplicate record field names, unions
// containing another union directly (ambiguous on the wire, spec's union
// case assumes exactly one level of branch dispatch), fixed/decimal scale
// exceeding precision, and duration logical types on the wrong physical
// size. It does not duplicate anything the builder already re-checks at
// build time (e.g. "does the target have a matching constructor"); this is
// purely schema self-consistency, independent of any target type.
func Validate(s Schema) []ValidationError {
	v := &validator{visited: make(map[Schema]bool)}
	v.walk(s, "$")
	sort.Slice(v.errors, func(i, j int) bool { return v.errors[i].Path < v.errors[j].Path })
	return v.errors
}

type validator struct {
	errors  []ValidationError
	visited map[Schema]bool
}

func (v *validator) fail(path, format string, args ...any) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) walk(s Schema, path string) {
	if s == nil {
		v.fail(path, "nil schema")
		return
	}
	if v.visited[s] {
		return // already validated; also breaks cycles in recursive records
	}
	v.visited[s] = true

	if lt := s.Logical(); lt != nil {
		v.checkLogical(s, lt, path)
	}

	switch t := s.(type) {
	case *FixedSchema:
		if t.Size <= 0 {
			v.fail(path, "fixed %q has non-positive size %d", t.Name, t.Size)
		}
	case *EnumSchema:
		seen := make(map[string]bool, len(t.Symbols))
		for _, sym := range t.Symbols {
			if seen[sym] {
				v.fail(path, "enum %q has duplicate symbol %q", t.Name, sym)
			}
			seen[sym] = true
		}
	case *ArraySchema:
		v.walk(t.Item, path+".items")
	case *MapSchema:
		v.walk(t.Value, path+".values")
	case *RecordSchema:
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if seen[f.Name] {
				v.fail(path, "record %q has duplicate field %q", t.Name, f.Name)
			}
			seen[f.Name] = true
			v.walk(f.Type, fmt.Sprintf("%s.%s", path, f.Name))
		}
	case *UnionSchema:
		if len(t.Branches) == 0 {
			v.fail(path, "union has no branches")
		}
		seenKinds := make(map[Kind]bool, len(t.Branches))
		for i, b := range t.Branches {
			if b != nil && b.Kind() == KindUnion {
				v.fail(path, "union branch %d is itself a union, which the wire format cannot nest", i)
			}
			if b != nil {
				if seenKinds[b.Kind()] && b.Kind() != KindRecord && b.Kind() != KindEnum && b.Kind() != KindFixed {
					v.fail(path, "union has more than one branch of kind %s", b.Kind())
				}
				seenKinds[b.Kind()] = true
			}
			v.walk(b, fmt.Sprintf("%s[%d]", path, i))
		}
	}
}

func (v *validator) checkLogical(s Schema, lt *LogicalType, path string) {
	switch lt.Kind {
	case LogicalDecimal:
		if s.Kind() != KindBytes && s.Kind() != KindFixed {
			v.fail(path, "decimal logical type requires bytes or fixed, got %s", s.Kind())
		}
		if lt.Precision <= 0 {
			v.fail(path, "decimal precision must be positive, got %d", lt.Precision)
		}
		if lt.Scale < 0 || lt.Scale > lt.Precision {
			v.fail(path, "decimal scale %d out of range for precision %d", lt.Scale, lt.Precision)
		}
	case LogicalDuration:
		fx, ok := s.(*FixedSchema)
		if !ok || fx.Size != 12 {
			v.fail(path, "duration logical type requires fixed(12)")
		}
	case LogicalTimestampMillis, LogicalTimestampMicros:
		if s.Kind() != KindLong {
			v.fail(path, "%s logical type requires long, got %s", lt.Kind, s.Kind())
		}
	case LogicalUUID:
		if s.Kind() != KindString && s.Kind() != KindBytes {
			v.fail(path, "uuid logical type requires string or bytes, got %s", s.Kind())
		}
	}
}

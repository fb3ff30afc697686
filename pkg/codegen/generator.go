// Package codegen generates Go struct stubs from a schema tree, so a
// caller designing a new wire format can scaffold the target types a
// builder.Context will compile against instead of hand-writing them.
package codegen

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blockberries/mulberry/pkg/schema"
)

// Options configures generation.
type Options struct {
	// Package names the generated file's package clause.
	Package string

	// TypePrefix is prepended to every generated type name, useful when
	// multiple schemas are generated into the same package.
	TypePrefix string
}

// DefaultOptions names the package "schema" with no type prefix.
var DefaultOptions = Options{Package: "schema"}

var titleCaser = cases.Title(language.Und)

// Generator renders a record schema tree as Go struct declarations.
type Generator struct {
	opts    Options
	visited map[string]bool
	buf     *strings.Builder
}

// New returns a Generator configured by opts.
func New(opts Options) *Generator {
	return &Generator{opts: opts}
}

// Generate writes a Go source file declaring one struct per record schema
// reachable from root, plus one string-constant block per enum schema.
func (g *Generator) Generate(w io.Writer, root *schema.RecordSchema) error {
	g.visited = make(map[string]bool)
	g.buf = &strings.Builder{}

	fmt.Fprintf(g.buf, "package %s\n\n", g.packageName())
	if g.usesDecimal(root) {
		fmt.Fprintln(g.buf, `import "math/big"`)
	}
	if g.usesTemporal(root) {
		fmt.Fprintln(g.buf, `import "time"`)
	}
	fmt.Fprintln(g.buf)

	if err := g.generateRecord(root); err != nil {
		return err
	}
	_, err := io.WriteString(w, g.buf.String())
	return err
}

func (g *Generator) packageName() string {
	if g.opts.Package != "" {
		return g.opts.Package
	}
	return "schema"
}

func (g *Generator) typeName(name string) string {
	return g.opts.TypePrefix + exportedName(name)
}

// exportedName turns an arbitrary schema identifier into an exported Go
// identifier: split on '_', '-' and '.', title-case each piece, join. Other
// non-alphanumeric characters are kept as they are.
func exportedName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	if len(parts) == 0 {
		return "Field"
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(titleCaser.String(strings.ToLower(p)))
	}
	return b.String()
}

func (g *Generator) generateRecord(rs *schema.RecordSchema) error {
	name := g.typeName(rs.Name)
	if g.visited[name] {
		return nil
	}
	g.visited[name] = true

	var nested []*schema.RecordSchema
	var enums []*schema.EnumSchema
	collectNested(rs, &nested, &enums, map[string]bool{})

	for _, es := range enums {
		g.generateEnum(es)
	}
	for _, nrs := range nested {
		if nrs != rs {
			if err := g.generateRecord(nrs); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(g.buf, "type %s struct {\n", name)
	for _, f := range rs.Fields {
		goType, err := g.fieldType(f.Type)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		fmt.Fprintf(g.buf, "\t%s %s\n", exportedName(f.Name), goType)
	}
	fmt.Fprintf(g.buf, "}\n\n")
	return nil
}

func (g *Generator) generateEnum(es *schema.EnumSchema) {
	name := g.typeName(es.Name)
	if g.visited["enum:"+name] {
		return
	}
	g.visited["enum:"+name] = true

	fmt.Fprintf(g.buf, "type %s string\n\n", name)
	fmt.Fprintf(g.buf, "const (\n")
	for _, sym := range es.Symbols {
		fmt.Fprintf(g.buf, "\t%s%s %s = %q\n", name, exportedName(sym), name, sym)
	}
	fmt.Fprintf(g.buf, ")\n\n")
}

// fieldType maps one schema node to a Go type expression, unwrapping
// nullable unions into a pointer the way builder.Context's field-assignment
// path expects (pointer targets are transparently unwrapped on decode;
// optionality is otherwise only ever a Union{Null, X}).
func (g *Generator) fieldType(s schema.Schema) (string, error) {
	if lt := s.Logical(); lt != nil {
		switch lt.Kind {
		case schema.LogicalDecimal:
			return "big.Rat", nil
		case schema.LogicalDuration:
			return "time.Duration", nil
		case schema.LogicalTimestampMillis, schema.LogicalTimestampMicros:
			return "time.Time", nil
		case schema.LogicalUUID:
			return "string", nil
		}
	}

	switch st := s.(type) {
	case *schema.NullSchema:
		return "struct{}", nil
	case *schema.BooleanSchema:
		return "bool", nil
	case *schema.IntSchema:
		return "int32", nil
	case *schema.LongSchema:
		return "int64", nil
	case *schema.FloatSchema:
		return "float32", nil
	case *schema.DoubleSchema:
		return "float64", nil
	case *schema.BytesSchema:
		return "[]byte", nil
	case *schema.StringSchema:
		return "string", nil
	case *schema.FixedSchema:
		return fmt.Sprintf("[%d]byte", st.Size), nil
	case *schema.EnumSchema:
		return g.typeName(st.Name), nil
	case *schema.ArraySchema:
		item, err := g.fieldType(st.Item)
		if err != nil {
			return "", err
		}
		return "[]" + item, nil
	case *schema.MapSchema:
		val, err := g.fieldType(st.Value)
		if err != nil {
			return "", err
		}
		return "map[string]" + val, nil
	case *schema.RecordSchema:
		return g.typeName(st.Name), nil
	case *schema.UnionSchema:
		if idx, ok := st.Nullable(); ok {
			var other schema.Schema
			for i, b := range st.Branches {
				if i != idx {
					other = b
				}
			}
			if other == nil {
				return "*struct{}", nil
			}
			elem, err := g.fieldType(other)
			if err != nil {
				return "", err
			}
			return "*" + elem, nil
		}
		return "any", nil
	default:
		return "", fmt.Errorf("codegen: unsupported schema kind %s", s.Kind())
	}
}

func collectNested(rs *schema.RecordSchema, records *[]*schema.RecordSchema, enums *[]*schema.EnumSchema, seen map[string]bool) {
	if seen[rs.Name] {
		return
	}
	seen[rs.Name] = true
	*records = append(*records, rs)
	for _, f := range rs.Fields {
		walkSchema(f.Type, records, enums, seen)
	}
}

func walkSchema(s schema.Schema, records *[]*schema.RecordSchema, enums *[]*schema.EnumSchema, seen map[string]bool) {
	switch st := s.(type) {
	case *schema.RecordSchema:
		collectNested(st, records, enums, seen)
	case *schema.EnumSchema:
		key := "enum:" + st.Name
		if !seen[key] {
			seen[key] = true
			*enums = append(*enums, st)
		}
	case *schema.ArraySchema:
		walkSchema(st.Item, records, enums, seen)
	case *schema.MapSchema:
		walkSchema(st.Value, records, enums, seen)
	case *schema.UnionSchema:
		for _, b := range st.Branches {
			walkSchema(b, records, enums, seen)
		}
	}
}

func (g *Generator) usesDecimal(rs *schema.RecordSchema) bool {
	return anyField(rs, func(s schema.Schema) bool {
		return s.Logical() != nil && s.Logical().Kind == schema.LogicalDecimal
	})
}

func (g *Generator) usesTemporal(rs *schema.RecordSchema) bool {
	return anyField(rs, func(s schema.Schema) bool {
		lt := s.Logical()
		return lt != nil && (lt.Kind == schema.LogicalDuration || lt.Kind == schema.LogicalTimestampMillis || lt.Kind == schema.LogicalTimestampMicros)
	})
}

func anyField(rs *schema.RecordSchema, pred func(schema.Schema) bool) bool {
	var records []*schema.RecordSchema
	var enums []*schema.EnumSchema
	collectNested(rs, &records, &enums, map[string]bool{})
	for _, r := range records {
		for _, f := range r.Fields {
			if schemaMatches(f.Type, pred) {
				return true
			}
		}
	}
	return false
}

func schemaMatches(s schema.Schema, pred func(schema.Schema) bool) bool {
	if pred(s) {
		return true
	}
	switch st := s.(type) {
	case *schema.ArraySchema:
		return schemaMatches(st.Item, pred)
	case *schema.MapSchema:
		return schemaMatches(st.Value, pred)
	case *schema.UnionSchema:
		for _, b := range st.Branches {
			if schemaMatches(b, pred) {
				return true
			}
		}
	}
	return false
}

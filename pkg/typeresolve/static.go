package typeresolve

import (
	"fmt"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"
)

// StaticField mirrors RecordField but over go/types rather than reflect,
// for use where reflect.Type is unavailable: validating a schema against a
// struct definition ahead of time (the "mulberry validate" command), without
// loading the target package into the running process.
type StaticField struct {
	Name   Name
	Member string
	Type   types.Type
}

// StaticRecord is the go/types analogue of RecordResolution.
type StaticRecord struct {
	Name   string
	Fields []StaticField
}

// StaticLoader loads Go packages with type information for static schema
// compatibility checks. It reuses the teacher's package-loading
// configuration (NeedTypes/NeedTypesInfo/NeedSyntax) because resolving
// struct shapes statically needs exactly that and nothing more.
type StaticLoader struct {
	config *packages.Config
}

// NewStaticLoader returns a loader configured for type-only analysis.
func NewStaticLoader() *StaticLoader {
	return &StaticLoader{
		config: &packages.Config{
			Mode: packages.NeedName |
				packages.NeedTypes |
				packages.NeedTypesInfo |
				packages.NeedSyntax |
				packages.NeedImports,
		},
	}
}

// Load loads the packages matching patterns (Go package patterns, e.g.
// "./..." or an import path) and returns their type-checked representation.
func (l *StaticLoader) Load(patterns ...string) ([]*packages.Package, error) {
	pkgs, err := packages.Load(l.config, patterns...)
	if err != nil {
		return nil, fmt.Errorf("typeresolve: failed to load packages: %w", err)
	}
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("typeresolve: package errors: %v", errs[0])
	}
	return pkgs, nil
}

// FindStruct locates a named struct type in a loaded package by its
// declared name and returns its statically-resolved field shape.
func FindStruct(pkg *packages.Package, name string) (*StaticRecord, error) {
	rec, err := findStructInScope(pkg.Types, name)
	if err != nil {
		return nil, fmt.Errorf("typeresolve: %w in package %s", err, pkg.PkgPath)
	}
	return rec, nil
}

// findStructInScope does the actual lookup against a *types.Package,
// factored out of FindStruct so it can be exercised against hand-built
// go/types values without packages.Load shelling out to the go command.
func findStructInScope(pkg *types.Package, name string) (*StaticRecord, error) {
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("type %q not found", name)
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%q is not a named type", name)
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%q is not a struct", name)
	}

	rec := &StaticRecord{Name: name}
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Exported() {
			continue
		}
		alias := parseMulberryTag(st.Tag(i))
		fname := NewName(f.Name())
		if alias != "" {
			fname = NewName(f.Name(), alias)
		}
		rec.Fields = append(rec.Fields, StaticField{Name: fname, Member: f.Name(), Type: f.Type()})
	}
	return rec, nil
}

func parseMulberryTag(tag string) string {
	st := types.StructTag(tag)
	return st.Get("mulberry")
}

// MissingSchemaFields compares a StaticRecord against a list of schema field
// names (in schema order) and reports the schema-side names with no
// name-matched struct member, precisely the set the record builder case
// falls back to surrogate read-and-discard for. It exists so "mulberry
// validate" can warn about silently-dropped fields ahead of time rather than
// a caller discovering it only at decode time.
func MissingSchemaFields(rec *StaticRecord, schemaFieldNames []string) []string {
	var missing []string
	for _, name := range schemaFieldNames {
		matched := false
		for _, f := range rec.Fields {
			if f.Name.Matches(name) {
				matched = true
				break
			}
		}
		if !matched {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

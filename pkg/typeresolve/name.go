package typeresolve

import "strings"

// Name wraps a target-side identifier (a struct field, a constructor
// parameter, an enum constant) with a Matches predicate so schema-side names
// can be compared against it without the builder needing to know the
// matching policy. The default policy, used throughout this package, is
// case-insensitive comparison after stripping underscores, the common
// ground between Go's CamelCase member names and a schema's snake_case or
// lowerCamel field names.
type Name struct {
	raw     string
	aliases []string
}

// NewName returns a Name for raw, additionally matching any aliases given
// (e.g. a "mulberry" struct tag override).
func NewName(raw string, aliases ...string) Name {
	return Name{raw: raw, aliases: aliases}
}

// String returns the name as declared on the target.
func (n Name) String() string { return n.raw }

// Matches reports whether schemaName identifies this target name, ignoring
// case and underscores, or via an explicit alias.
func (n Name) Matches(schemaName string) bool {
	if fold(n.raw) == fold(schemaName) {
		return true
	}
	for _, a := range n.aliases {
		if fold(a) == fold(schemaName) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	s = strings.ReplaceAll(s, "_", "")
	return strings.ToLower(s)
}

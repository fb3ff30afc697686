package builder

import (
	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// Dispatcher holds an ordered list of cases and tries each in turn for a
// given (resolution, schema) pair. Case ordering is semantically
// significant: logical-type cases (Decimal, Duration, Timestamp) must run
// before the physical-type cases that would otherwise claim the same schema
// kind (spec §4.2). Rewrites that reorder or interleave this list change
// behavior, not just performance.
type Dispatcher struct {
	cases []Case
}

// fixedCaseOrder documents spec §4.2's 16-case order. NewDispatcher starts
// from exactly this list; AddCase appends after it, WithCases replaces it
// wholesale for callers who know what they are doing.
func fixedCaseOrder() []Case {
	return []Case{
		decimalCase{},
		durationCase{},
		timestampCase{},
		booleanCase{},
		bytesCase{},
		doubleCase{},
		fixedCase{},
		floatCase{},
		integerCase{},
		nullCase{},
		stringCase{},
		arrayCase{},
		mapCase{},
		enumCase{},
		recordCase{},
		unionCase{},
	}
}

// NewDispatcher returns a Dispatcher configured with the fixed case order.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{cases: fixedCaseOrder()}
}

// AddCase appends a custom case after the built-in ones (spec §6's
// add_case customization hook).
func (d *Dispatcher) AddCase(c Case) { d.cases = append(d.cases, c) }

// WithCases returns a new Dispatcher using exactly the given case list,
// bypassing the fixed order entirely. Intended for tests and for callers
// who need to omit or reorder cases deliberately.
func WithCases(cases []Case) *Dispatcher { return &Dispatcher{cases: cases} }

// Build resolves (resolution, schema) against the context's in-flight
// references first, then the ordered case list, returning the first
// accepted reader. If every case declines, it fails with
// NoMatchingCaseError carrying every collected rejection reason.
func (d *Dispatcher) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (ReadFunc, error) {
	if fn, ok := ctx.lookup(s, res.Type()); ok {
		return fn, nil
	}

	var reasons []Rejection
	for _, c := range d.cases {
		result, err := c.Build(res, s, ctx)
		if err != nil {
			return nil, err
		}
		if result.Accepted() {
			return result.Reader, nil
		}
		reasons = append(reasons, result.Reasons...)
	}
	return nil, &NoMatchingCaseError{Schema: s, Type: res.Type(), Reasons: reasons}
}

// BuildReader is the top-level public entry point (spec §6's
// build_reader<T>): it builds a reader for the already-resolved target t in
// a fresh Context, which owns this build's references. cache is the
// optional cross-build delegate cache; nil means no cache is consulted.
func BuildReader(d *Dispatcher, reg *typeresolve.Registry, t typeresolve.Resolution, s schema.Schema, cache Cache) (ReadFunc, error) {
	ctx := NewContext(d, reg, cache)
	ctx.SelectType = defaultSelectType
	return d.Build(t, s, ctx)
}

package builder

import (
	"reflect"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// ReadFunc is a compiled reader: given a decoder, produce a decoded value
// (or a decode-time error). This is the portable stand-in for spec §9's
// "expression tree"; reader composition happens by nesting closures rather
// than emitting and JIT-compiling an AST, per the design note that the two
// strategies are equivalent for this domain.
type ReadFunc func(d decoder) (reflect.Value, error)

// decoder is the subset of *wire.Decoder the builder package depends on.
// Declaring it here (rather than importing internal/wire's concrete type
// into every signature) keeps case implementations test-friendly without
// requiring a real byte source.
type decoder interface {
	ReadBool() (bool, error)
	ReadInt() (int64, error)
	ReadFloat() (float32, error)
	ReadDouble() (float64, error)
	ReadFixed(n int) ([]byte, error)
	ReadBytes() ([]byte, error)
	ReadString() (string, error)
	ReadBlocks(emit func() error) error
	EnterNested() bool
	ExitNested()
}

// Result carries either a built reader or a list of rejection reasons; a
// case never returns both (spec C1, Build Result).
type Result struct {
	Reader  ReadFunc
	Reasons []Rejection
}

// Accepted reports whether the case produced a reader.
func (r Result) Accepted() bool { return r.Reader != nil }

// Accept wraps a successful build.
func Accept(fn ReadFunc) Result { return Result{Reader: fn} }

// Reject wraps a single declined match.
func Reject(caseName string, kind RejectionKind, reason string) Result {
	return Result{Reasons: []Rejection{{Case: caseName, Kind: kind, Reason: reason}}}
}

// Case is the common contract every builder case implements (spec §4.3):
// given a resolved target type and a schema node, either produce a reader
// or decline and explain why. A non-nil error return is fatal and aborts
// the dispatcher entirely; it means the case matched but failed during
// construction (e.g. an enum symbol with no target match), which is
// distinct from a Result carrying rejection Reasons.
type Case interface {
	// Name identifies the case in rejection messages and in the fixed
	// dispatch order.
	Name() string
	Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error)
}

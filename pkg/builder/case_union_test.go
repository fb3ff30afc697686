package builder

import (
	"reflect"
	"testing"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

func TestUnionCaseDispatchesBranchByIndex(t *testing.T) {
	// Both branches resolve against the same int64 target, so dispatch is
	// pinned on the branch index read from the wire rather than on which
	// branch's conversion happens to succeed.
	s := schema.NewUnion(schema.NewInt(), schema.NewLong(nil))
	res, err := typeresolve.ResolveType(reflectTypeOfInt64Type())
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	r := mustAccept(t, unionCase{}, res, s, ctx)

	v, err := r(&fakeDecoder{ints: []int64{1, 42}})
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != 42 {
		t.Errorf("got %v", v.Interface())
	}
}

func TestUnionCaseRejectsNullBranchForNonNillableTarget(t *testing.T) {
	s := schema.NewUnion(schema.NewNull(), gadgetSchema())
	res, err := typeresolve.ResolveType(reflectTypeOfGadget())
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	_, err = unionCase{}.Build(res, s, ctx)
	if _, ok := err.(*UnsupportedTypeError); !ok {
		t.Fatalf("expected *UnsupportedTypeError, got %v (%T)", err, err)
	}
}

func TestUnionCaseAcceptsNullBranchForNillableTarget(t *testing.T) {
	s := schema.NewUnion(schema.NewNull(), schema.NewString(nil))
	res, err := typeresolve.ResolveType(reflect.TypeOf((*string)(nil)))
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	r := mustAccept(t, unionCase{}, res, s, ctx)

	v, err := r(&fakeDecoder{ints: []int64{0}})
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsZero() {
		t.Errorf("expected the zero value for the null branch, got %v", v.Interface())
	}
}

func TestUnionCaseDeclinesEmptyUnion(t *testing.T) {
	s := &schema.UnionSchema{}
	res, _ := typeresolve.ResolveType(reflectTypeOfOpaqueInterface())
	ctx := newTestContext()
	result, err := unionCase{}.Build(res, s, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Accepted() {
		t.Fatal("expected unionCase to decline a union with no branches")
	}
}

func TestUnionCaseDeclinesNonUnionSchema(t *testing.T) {
	s := schema.NewInt()
	res, _ := typeresolve.ResolveType(reflectTypeOfOpaqueInterface())
	ctx := newTestContext()
	result, err := unionCase{}.Build(res, s, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Accepted() {
		t.Fatal("expected unionCase to decline a non-union schema")
	}
}

package builder

import (
	"testing"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

func TestBooleanCaseAccepts(t *testing.T) {
	s := schema.NewBoolean()
	res, err := typeresolve.ResolveType(reflectTypeOfBoolType())
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	r := mustAccept(t, booleanCase{}, res, s, ctx)

	v, err := r(&fakeDecoder{bools: []bool{true}})
	if err != nil {
		t.Fatal(err)
	}
	if !v.Bool() {
		t.Fatal("expected true")
	}
}

func TestBooleanCaseDeclinesNonBooleanSchema(t *testing.T) {
	s := schema.NewInt()
	res, _ := typeresolve.ResolveType(reflectTypeOfBoolType())
	ctx := newTestContext()
	result, err := booleanCase{}.Build(res, s, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Accepted() {
		t.Fatal("expected booleanCase to decline an int schema")
	}
}

func TestDoubleCaseAccepts(t *testing.T) {
	s := schema.NewDouble()
	res, err := typeresolve.ResolveType(reflectTypeOfFloat64Type())
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	r := mustAccept(t, doubleCase{}, res, s, ctx)

	v, err := r(&fakeDecoder{doubles: []float64{3.5}})
	if err != nil {
		t.Fatal(err)
	}
	if v.Float() != 3.5 {
		t.Errorf("got %v want 3.5", v.Float())
	}
}

func TestFloatCaseAccepts(t *testing.T) {
	s := schema.NewFloat()
	res, err := typeresolve.ResolveType(reflectTypeOfFloat64Type())
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	r := mustAccept(t, floatCase{}, res, s, ctx)

	v, err := r(&fakeDecoder{floats: []float32{1.5}})
	if err != nil {
		t.Fatal(err)
	}
	if v.Float() != 1.5 {
		t.Errorf("got %v want 1.5", v.Float())
	}
}

func TestIntegerCaseAcceptsIntAndLong(t *testing.T) {
	res, err := typeresolve.ResolveType(reflectTypeOfInt64Type())
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []schema.Schema{schema.NewInt(), schema.NewLong(nil)} {
		ctx := newTestContext()
		r := mustAccept(t, integerCase{}, res, s, ctx)
		v, err := r(&fakeDecoder{ints: []int64{42}})
		if err != nil {
			t.Fatal(err)
		}
		if v.Int() != 42 {
			t.Errorf("got %d want 42", v.Int())
		}
	}
}

func TestIntegerCaseDeclinesStringSchema(t *testing.T) {
	s := schema.NewString(nil)
	res, _ := typeresolve.ResolveType(reflectTypeOfInt64Type())
	ctx := newTestContext()
	result, err := integerCase{}.Build(res, s, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Accepted() {
		t.Fatal("expected integerCase to decline a string schema")
	}
}

func TestNullCaseProducesZeroValueWithoutConsuming(t *testing.T) {
	s := schema.NewNull()
	res, err := typeresolve.ResolveType(reflectTypeOfStringType())
	if err != nil {
		t.Fatal(err)
	}
	ctx := newTestContext()
	r := mustAccept(t, nullCase{}, res, s, ctx)

	v, err := r(&fakeDecoder{})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "" {
		t.Errorf("expected zero value, got %q", v.String())
	}
}

package builder

import (
	"reflect"
	"testing"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

func TestReserveFulfillCycle(t *testing.T) {
	ctx := NewContext(NewDispatcher(), typeresolve.NewRegistry(), nil)
	typ := reflect.TypeOf(int64(0))
	s := schema.NewLong(nil)

	reader, err := ctx.Reserve(s, typ)
	if err != nil {
		t.Fatal(err)
	}
	ctx.Fulfill(s, typ, func(d decoder) (reflect.Value, error) {
		return reflect.ValueOf(int64(7)), nil
	})

	v, err := reader(&fakeDecoder{})
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != 7 {
		t.Fatalf("want 7, got %d", v.Int())
	}
}

func TestReserveTwiceIsCycleViolation(t *testing.T) {
	ctx := NewContext(NewDispatcher(), typeresolve.NewRegistry(), nil)
	typ := reflect.TypeOf(int64(0))
	s := schema.NewLong(nil)

	if _, err := ctx.Reserve(s, typ); err != nil {
		t.Fatal(err)
	}
	_, err := ctx.Reserve(s, typ)
	if _, ok := err.(*CycleBuildViolationError); !ok {
		t.Fatalf("expected *CycleBuildViolationError, got %v (%T)", err, err)
	}
}

func TestAbandonAllowsRereservation(t *testing.T) {
	ctx := NewContext(NewDispatcher(), typeresolve.NewRegistry(), nil)
	typ := reflect.TypeOf(int64(0))
	s := schema.NewLong(nil)

	if _, err := ctx.Reserve(s, typ); err != nil {
		t.Fatal(err)
	}
	ctx.Abandon(s, typ)
	if _, err := ctx.Reserve(s, typ); err != nil {
		t.Fatalf("expected re-reservation to succeed after Abandon, got %v", err)
	}
}

func TestFulfillWithoutReservePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Fulfill without a matching Reserve to panic")
		}
	}()
	ctx := NewContext(NewDispatcher(), typeresolve.NewRegistry(), nil)
	ctx.Fulfill(schema.NewInt(), reflect.TypeOf(0), nil)
}

type widget struct{ Name string }

// TestBuildNullablePointerToRecord guards against the generic
// pointer-unwrap in Context.Build swallowing a union's null branch before
// the union ever sees it; decoding a Union{Null, Record} into a *Record
// field must produce a nil pointer for the null branch, not an error.
func TestBuildNullablePointerToRecord(t *testing.T) {
	rs := schema.NewRecord("Widget")
	rs.SetFields([]schema.Field{{Name: "Name", Type: schema.NewString(nil)}})
	us := schema.NewUnion(schema.NewNull(), rs)

	ctx := NewContext(NewDispatcher(), typeresolve.NewRegistry(), nil)
	reader, err := ctx.Build(reflect.TypeOf(&widget{}), us)
	if err != nil {
		t.Fatal(err)
	}

	v, err := reader(&fakeDecoder{ints: []int64{0}})
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsNil() {
		t.Fatal("expected a nil pointer for the null branch")
	}

	v, err = reader(&fakeDecoder{ints: []int64{1}, strings: []string{"gadget"}})
	if err != nil {
		t.Fatal(err)
	}
	if v.IsNil() {
		t.Fatal("expected a non-nil pointer for the value branch")
	}
	if got := v.Interface().(*widget).Name; got != "gadget" {
		t.Fatalf("want gadget, got %q", got)
	}
}

package typeresolve

import (
	"math/big"
	"reflect"
	"testing"
	"time"
)

func TestResolvePrimitives(t *testing.T) {
	cases := []struct {
		v    any
		kind Kind
	}{
		{true, Boolean},
		{int32(1), Integer},
		{uint64(1), Integer},
		{float64(1), Floating},
		{"s", String},
		{[]byte("x"), ByteArray},
		{[16]byte{}, ByteArray},
	}
	reg := NewRegistry()
	for _, c := range cases {
		res, err := reg.Resolve(reflect.TypeOf(c.v))
		if err != nil {
			t.Fatalf("Resolve(%T): %v", c.v, err)
		}
		if res.Kind() != c.kind {
			t.Errorf("Resolve(%T).Kind() = %s, want %s", c.v, res.Kind(), c.kind)
		}
	}
}

func TestResolveTimeAndDuration(t *testing.T) {
	reg := NewRegistry()
	res, err := reg.Resolve(reflect.TypeOf(time.Time{}))
	if err != nil || res.Kind() != Timestamp {
		t.Fatalf("time.Time resolved to %v, %v", res, err)
	}
	res, err = reg.Resolve(reflect.TypeOf(time.Duration(0)))
	if err != nil || res.Kind() != Duration {
		t.Fatalf("time.Duration resolved to %v, %v", res, err)
	}
}

func TestResolveDecimal(t *testing.T) {
	reg := NewRegistry()
	res, err := reg.Resolve(reflect.TypeOf(big.Rat{}))
	if err != nil || res.Kind() != Decimal {
		t.Fatalf("big.Rat resolved to %v, %v", res, err)
	}
}

type point struct {
	X int
	Y int `mulberry:"y_coord"`
	z int
}

func TestResolveStruct(t *testing.T) {
	reg := NewRegistry()
	res, err := reg.Resolve(reflect.TypeOf(point{}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	rec, ok := res.(RecordResolution)
	if !ok {
		t.Fatalf("expected RecordResolution, got %T", res)
	}
	if len(rec.Fields) != 2 {
		t.Fatalf("expected 2 exported fields, got %d: %+v", len(rec.Fields), rec.Fields)
	}
	if !rec.Fields[1].Name.Matches("y_coord") {
		t.Errorf("expected field Y to match alias y_coord via mulberry tag")
	}
}

type suit int

func TestRegisterEnum(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterEnum(reflect.TypeOf(suit(0)),
		EnumSymbol{Name: NewName("CLUBS"), Value: reflect.ValueOf(suit(0))},
		EnumSymbol{Name: NewName("HEARTS"), Value: reflect.ValueOf(suit(1))},
	)
	res, err := reg.Resolve(reflect.TypeOf(suit(0)))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	enum, ok := res.(EnumResolution)
	if !ok || len(enum.Symbols) != 2 {
		t.Fatalf("expected EnumResolution with 2 symbols, got %+v", res)
	}
}

type pair struct {
	A int
	B string
}

func newPair(a int, b string) pair { return pair{A: a, B: b} }

func TestRegisterConstructor(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterConstructor(reflect.TypeOf(pair{}), newPair, "a", "b")
	res, err := reg.Resolve(reflect.TypeOf(pair{}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	rec := res.(RecordResolution)
	if len(rec.Constructors) != 1 || len(rec.Constructors[0].Parameters) != 2 {
		t.Fatalf("expected 1 constructor with 2 parameters, got %+v", rec.Constructors)
	}
	if !rec.Constructors[0].Parameters[0].Name.Matches("a") {
		t.Error("expected first parameter named 'a'")
	}
}

func TestResolveCaching(t *testing.T) {
	reg := NewRegistry()
	t1 := reflect.TypeOf(point{})
	r1, _ := reg.Resolve(t1)
	r2, _ := reg.Resolve(t1)
	if r1.(RecordResolution).Fields[0].Name.String() != r2.(RecordResolution).Fields[0].Name.String() {
		t.Error("expected cached resolution to be stable across calls")
	}
}

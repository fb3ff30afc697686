// Package integration exercises end-to-end schema -> writer -> bytes ->
// reader -> value round trips across the full surface of physical and
// logical schema kinds.
package integration

import (
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/blockberries/mulberry/pkg/mulberry"
	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// ScalarTypes covers every primitive physical kind.
type ScalarTypes struct {
	BoolVal   bool
	IntVal    int32
	LongVal   int64
	FloatVal  float32
	DoubleVal float64
	StringVal string
	BytesVal  []byte
}

func scalarTypesSchema() *schema.RecordSchema {
	r := schema.NewRecord("ScalarTypes")
	r.SetFields([]schema.Field{
		{Name: "BoolVal", Type: schema.NewBoolean()},
		{Name: "IntVal", Type: schema.NewInt()},
		{Name: "LongVal", Type: schema.NewLong(nil)},
		{Name: "FloatVal", Type: schema.NewFloat()},
		{Name: "DoubleVal", Type: schema.NewDouble()},
		{Name: "StringVal", Type: schema.NewString(nil)},
		{Name: "BytesVal", Type: schema.NewBytes(nil)},
	})
	return r
}

func TestScalarTypesRoundTrip(t *testing.T) {
	s := scalarTypesSchema()
	want := ScalarTypes{
		BoolVal:   true,
		IntVal:    -42,
		LongVal:   -9223372036854775807,
		FloatVal:  3.14159,
		DoubleVal: 2.718281828459045,
		StringVal: "hello, mulberry!",
		BytesVal:  []byte{0xde, 0xad, 0xbe, 0xef},
	}

	data := mustMarshal(t, s, &ScalarTypes{}, want)
	var got ScalarTypes
	mustDecodeInto(t, s, &ScalarTypes{}, data, &got)

	if got.BoolVal != want.BoolVal || got.IntVal != want.IntVal ||
		got.LongVal != want.LongVal || got.FloatVal != want.FloatVal ||
		got.DoubleVal != want.DoubleVal || got.StringVal != want.StringVal {
		t.Errorf("scalar mismatch: got %+v, want %+v", got, want)
	}
	if string(got.BytesVal) != string(want.BytesVal) {
		t.Errorf("BytesVal mismatch: got %x, want %x", got.BytesVal, want.BytesVal)
	}
}

// RepeatedTypes covers array and map handling.
type RepeatedTypes struct {
	IntList    []int32
	StringList []string
	Counts     map[string]int32
}

func repeatedTypesSchema() *schema.RecordSchema {
	r := schema.NewRecord("RepeatedTypes")
	r.SetFields([]schema.Field{
		{Name: "IntList", Type: schema.NewArray(schema.NewInt())},
		{Name: "StringList", Type: schema.NewArray(schema.NewString(nil))},
		{Name: "Counts", Type: schema.NewMap(schema.NewInt())},
	})
	return r
}

func TestRepeatedTypesRoundTrip(t *testing.T) {
	s := repeatedTypesSchema()
	want := RepeatedTypes{
		IntList:    []int32{1, -2, 3, -4, 5},
		StringList: []string{"alpha", "beta", "gamma"},
		Counts:     map[string]int32{"one": 1, "two": 2, "three": 3},
	}

	data := mustMarshal(t, s, &RepeatedTypes{}, want)
	var got RepeatedTypes
	mustDecodeInto(t, s, &RepeatedTypes{}, data, &got)

	if len(got.IntList) != len(want.IntList) {
		t.Fatalf("IntList length mismatch: got %d, want %d", len(got.IntList), len(want.IntList))
	}
	for i, v := range want.IntList {
		if got.IntList[i] != v {
			t.Errorf("IntList[%d]: got %d, want %d", i, got.IntList[i], v)
		}
	}
	for k, v := range want.Counts {
		if got.Counts[k] != v {
			t.Errorf("Counts[%q]: got %d, want %d", k, got.Counts[k], v)
		}
	}
}

// Nested demonstrates a record embedding another record, and the
// Union{Null, Record}-into-*Record optional shape.
type Nested struct {
	Name  string
	Value int64
}

type Container struct {
	Required Nested
	Optional *Nested
}

func containerSchema() (*schema.RecordSchema, *schema.RecordSchema) {
	nested := schema.NewRecord("Nested")
	nested.SetFields([]schema.Field{
		{Name: "Name", Type: schema.NewString(nil)},
		{Name: "Value", Type: schema.NewLong(nil)},
	})
	container := schema.NewRecord("Container")
	container.SetFields([]schema.Field{
		{Name: "Required", Type: nested},
		{Name: "Optional", Type: schema.NewUnion(schema.NewNull(), nested)},
	})
	return container, nested
}

func TestNestedRecordRoundTrip(t *testing.T) {
	s, _ := containerSchema()

	want := Container{
		Required: Nested{Name: "required", Value: 789},
		Optional: &Nested{Name: "optional", Value: 456},
	}
	data := mustMarshal(t, s, &Container{}, want)
	var got Container
	mustDecodeInto(t, s, &Container{}, data, &got)

	if got.Required != want.Required {
		t.Errorf("Required mismatch: got %+v, want %+v", got.Required, want.Required)
	}
	if got.Optional == nil || *got.Optional != *want.Optional {
		t.Errorf("Optional mismatch: got %+v, want %+v", got.Optional, want.Optional)
	}

	// The null branch must decode to a nil pointer, not an error or a
	// zero-valued struct (the regression this package exists to pin down).
	wantNil := Container{Required: want.Required, Optional: nil}
	data = mustMarshal(t, s, &Container{}, wantNil)
	var gotNil Container
	mustDecodeInto(t, s, &Container{}, data, &gotNil)
	if gotNil.Optional != nil {
		t.Errorf("expected a nil Optional for the null branch, got %+v", gotNil.Optional)
	}
}

// Status is a symbolic enum.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func TestEnumRoundTrip(t *testing.T) {
	typeresolve.DefaultRegistry.RegisterEnum(reflect.TypeOf(Status("")),
		typeresolve.EnumSymbol{Name: typeresolve.NewName("ACTIVE"), Value: reflect.ValueOf(StatusActive)},
		typeresolve.EnumSymbol{Name: typeresolve.NewName("INACTIVE"), Value: reflect.ValueOf(StatusInactive)},
	)

	s := schema.NewEnum("Status", []string{"ACTIVE", "INACTIVE"})
	type holder struct{ Status Status }
	hs := schema.NewRecord("Holder")
	hs.SetFields([]schema.Field{{Name: "Status", Type: s}})

	want := holder{Status: StatusActive}
	data := mustMarshal(t, hs, &holder{}, want)
	var got holder
	mustDecodeInto(t, hs, &holder{}, data, &got)
	if got.Status != want.Status {
		t.Errorf("Status mismatch: got %q, want %q", got.Status, want.Status)
	}
}

// EdgeCases exercises boundary integer and string values.
type EdgeCases struct {
	ZeroInt       int64
	NegativeOne   int64
	MaxInt32      int32
	MinInt32      int32
	EmptyString   string
	UnicodeString string
}

func edgeCasesSchema() *schema.RecordSchema {
	r := schema.NewRecord("EdgeCases")
	r.SetFields([]schema.Field{
		{Name: "ZeroInt", Type: schema.NewLong(nil)},
		{Name: "NegativeOne", Type: schema.NewLong(nil)},
		{Name: "MaxInt32", Type: schema.NewInt()},
		{Name: "MinInt32", Type: schema.NewInt()},
		{Name: "EmptyString", Type: schema.NewString(nil)},
		{Name: "UnicodeString", Type: schema.NewString(nil)},
	})
	return r
}

func TestEdgeCasesRoundTrip(t *testing.T) {
	s := edgeCasesSchema()
	want := EdgeCases{
		ZeroInt:       0,
		NegativeOne:   -1,
		MaxInt32:      2147483647,
		MinInt32:      -2147483648,
		EmptyString:   "",
		UnicodeString: "Hello, 世界! 🎉",
	}
	data := mustMarshal(t, s, &EdgeCases{}, want)
	var got EdgeCases
	mustDecodeInto(t, s, &EdgeCases{}, data, &got)
	if got != want {
		t.Errorf("EdgeCases mismatch: got %+v, want %+v", got, want)
	}
}

// Measurement exercises the decimal and duration logical types together.
type Measurement struct {
	Amount   *big.Rat
	Interval time.Duration
}

func measurementSchema() *schema.RecordSchema {
	r := schema.NewRecord("Measurement")
	r.SetFields([]schema.Field{
		{Name: "Amount", Type: schema.NewBytes(&schema.LogicalType{Kind: schema.LogicalDecimal, Precision: 10, Scale: 2})},
		{Name: "Interval", Type: schema.NewFixed("duration", 12, &schema.LogicalType{Kind: schema.LogicalDuration})},
	})
	return r
}

func TestLogicalTypesRoundTrip(t *testing.T) {
	s := measurementSchema()
	want := Measurement{
		Amount:   big.NewRat(12345, 100),
		Interval: 36 * time.Hour,
	}
	data := mustMarshal(t, s, &Measurement{}, want)
	var got Measurement
	mustDecodeInto(t, s, &Measurement{}, data, &got)

	if got.Amount == nil || got.Amount.Cmp(want.Amount) != 0 {
		t.Errorf("Amount mismatch: got %v, want %v", got.Amount, want.Amount)
	}
	if got.Interval != want.Interval {
		t.Errorf("Interval mismatch: got %v, want %v", got.Interval, want.Interval)
	}
}

func mustMarshal(t *testing.T, s schema.Schema, target any, value any) []byte {
	t.Helper()
	codec, err := mulberry.CompileWriter(s, target)
	if err != nil {
		t.Fatalf("CompileWriter failed: %v", err)
	}
	data, err := codec.Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	return data
}

func mustDecodeInto(t *testing.T, s schema.Schema, target any, data []byte, out any) {
	t.Helper()
	codec, err := mulberry.Compile(s, target, mulberry.DefaultOptions)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if err := codec.DecodeInto(data, out); err != nil {
		t.Fatalf("DecodeInto failed: %v", err)
	}
}

package builder

import (
	"testing"

	"github.com/blockberries/mulberry/pkg/schema"
)

func TestDispatcherLogicalCaseWinsOverPhysicalCase(t *testing.T) {
	// A bytes schema with a decimal logical type must be claimed by
	// decimalCase, never by bytesCase, because decimalCase is tried first.
	d := NewDispatcher()
	reg := newTestContext().Registry
	s := schema.NewBytes(&schema.LogicalType{Kind: schema.LogicalDecimal, Precision: 4, Scale: 2})
	res, err := reg.Resolve(reflectTypeOfBigRat())
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(d, reg, nil)

	r, err := d.Build(res, s, ctx)
	if err != nil {
		t.Fatalf("expected decimalCase to claim this schema, got error: %v", err)
	}

	out, err := r(&fakeDecoder{bytes: [][]byte{{0x01, 0x00}}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Type() != reflectTypeOfBigRat() {
		t.Fatalf("expected a big.Rat result from the decimal case, got %s", out.Type())
	}
}

func TestDispatcherNoMatchingCaseAggregatesReasons(t *testing.T) {
	d := NewDispatcher()
	reg := newTestContext().Registry
	// A boolean schema against a string target matches no case.
	s := schema.NewBoolean()
	res, err := reg.Resolve(reflectTypeOfStringType())
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(d, reg, nil)

	_, err = d.Build(res, s, ctx)
	nme, ok := err.(*NoMatchingCaseError)
	if !ok {
		t.Fatalf("expected *NoMatchingCaseError, got %v (%T)", err, err)
	}
	if len(nme.Reasons) == 0 {
		t.Fatal("expected at least one collected rejection reason")
	}
}

func TestDispatcherWithCasesBypassesFixedOrder(t *testing.T) {
	d := WithCases([]Case{booleanCase{}})
	reg := newTestContext().Registry
	s := schema.NewInt()
	res, err := reg.Resolve(reflectTypeOfInt64Type())
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(d, reg, nil)

	_, err = d.Build(res, s, ctx)
	if _, ok := err.(*NoMatchingCaseError); !ok {
		t.Fatalf("expected *NoMatchingCaseError since integerCase was excluded, got %v", err)
	}
}

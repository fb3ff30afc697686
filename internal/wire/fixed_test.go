package wire

import (
	"bytes"
	"math"
	"testing"
)

func TestAppendFixed32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0, 0, 0, 0}},
		{1, []byte{1, 0, 0, 0}},
		{0x12345678, []byte{0x78, 0x56, 0x34, 0x12}},
		{0xFFFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tt := range tests {
		got := AppendFixed32(nil, tt.v)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("AppendFixed32(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestAppendFixed64(t *testing.T) {
	got := AppendFixed64(nil, 0x123456789ABCDEF0)
	want := []byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendFixed64 = %v, want %v", got, want)
	}
}

func TestDecodeFixed32(t *testing.T) {
	v, err := DecodeFixed32([]byte{0x78, 0x56, 0x34, 0x12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("DecodeFixed32 = %#x, want %#x", v, 0x12345678)
	}
}

func TestDecodeFixed32Truncated(t *testing.T) {
	if _, err := DecodeFixed32([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error for truncated fixed32")
	}
}

func TestDecodeFixed64(t *testing.T) {
	v, err := DecodeFixed64([]byte{0xF0, 0xDE, 0xBC, 0x9A, 0x78, 0x56, 0x34, 0x12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0x123456789ABCDEF0 {
		t.Errorf("DecodeFixed64 = %#x, want %#x", v, uint64(0x123456789ABCDEF0))
	}
}

func TestDecodeFixed64Truncated(t *testing.T) {
	if _, err := DecodeFixed64(make([]byte, 7)); err == nil {
		t.Error("expected error for truncated fixed64")
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 3.14159, math.MaxFloat32, -math.MaxFloat32,
		float32(math.Inf(1)), float32(math.Inf(-1))}
	for _, v := range values {
		encoded := AppendFloat32(nil, v)
		decoded, err := DecodeFloat32(encoded)
		if err != nil {
			t.Fatalf("DecodeFloat32(%v): %v", v, err)
		}
		if decoded != v {
			t.Errorf("float32 round trip: %v -> %v", v, decoded)
		}
	}
}

func TestFloat32NaNRoundTrip(t *testing.T) {
	encoded := AppendFloat32(nil, float32(math.NaN()))
	decoded, err := DecodeFloat32(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(float64(decoded)) {
		t.Errorf("expected NaN, got %v", decoded)
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 3.14159265358979, math.MaxFloat64, -math.MaxFloat64,
		math.Inf(1), math.Inf(-1)}
	for _, v := range values {
		encoded := AppendFloat64(nil, v)
		decoded, err := DecodeFloat64(encoded)
		if err != nil {
			t.Fatalf("DecodeFloat64(%v): %v", v, err)
		}
		if decoded != v {
			t.Errorf("float64 round trip: %v -> %v", v, decoded)
		}
	}
}

func TestFloat64NaNRoundTrip(t *testing.T) {
	encoded := AppendFloat64(nil, math.NaN())
	decoded, err := DecodeFloat64(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(decoded) {
		t.Errorf("expected NaN, got %v", decoded)
	}
}

func TestDecodeFloat32Truncated(t *testing.T) {
	if _, err := DecodeFloat32([]byte{0x00, 0x00}); err == nil {
		t.Error("expected error for truncated float32")
	}
}

func TestDecodeFloat64Truncated(t *testing.T) {
	if _, err := DecodeFloat64([]byte{0x00, 0x00}); err == nil {
		t.Error("expected error for truncated float64")
	}
}

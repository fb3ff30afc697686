package wire

import (
	"errors"
	"testing"
)

func TestDecoderBasic(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
	if d.Pos() != 0 {
		t.Errorf("Pos() = %d, want 0", d.Pos())
	}
	if d.EOF() {
		t.Error("EOF() should be false initially")
	}
}

func TestDecoderReset(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3})
	d.ReadFixed(1)
	d.Reset([]byte{4, 5, 6, 7})
	if d.Pos() != 0 || d.Len() != 4 {
		t.Errorf("Reset did not rewind: pos=%d len=%d", d.Pos(), d.Len())
	}
}

func TestReadBool(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte{0x00}, false},
		{[]byte{0x01}, true},
	}
	for _, tt := range tests {
		v, err := NewDecoder(tt.data).ReadBool()
		if err != nil {
			t.Fatalf("ReadBool(%v): %v", tt.data, err)
		}
		if v != tt.want {
			t.Errorf("ReadBool(%v) = %v, want %v", tt.data, v, tt.want)
		}
	}
}

func TestReadBoolInvalid(t *testing.T) {
	_, err := NewDecoder([]byte{0x02}).ReadBool()
	if !errors.Is(err, ErrInvalidBool) {
		t.Errorf("expected ErrInvalidBool, got %v", err)
	}
}

func TestReadBoolEOF(t *testing.T) {
	_, err := NewDecoder(nil).ReadBool()
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadIntScenarios(t *testing.T) {
	// Scenario 1 from spec §8: schema Int, reading 0xC8 0x01 -> 100, 0x01 -> -1, 0x00 -> 0.
	tests := []struct {
		data []byte
		want int64
	}{
		{[]byte{0xC8, 0x01}, 100},
		{[]byte{0x01}, -1},
		{[]byte{0x00}, 0},
	}
	for _, tt := range tests {
		v, err := NewDecoder(tt.data).ReadInt()
		if err != nil {
			t.Fatalf("ReadInt(%v): %v", tt.data, err)
		}
		if v != tt.want {
			t.Errorf("ReadInt(%v) = %d, want %d", tt.data, v, tt.want)
		}
	}
}

func TestReadBytesAndString(t *testing.T) {
	d := NewDecoder([]byte{0x0C, 'f', 'o', 'o', 'b', 'a', 'r'}) // zig-zag 0x0C -> 6
	b, err := d.ReadBytes()
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if string(b) != "foobar" {
		t.Errorf("ReadBytes = %q, want %q", b, "foobar")
	}

	d2 := NewDecoder([]byte{0x0C, 'f', 'o', 'o', 'b', 'a', 'r'})
	s, err := d2.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "foobar" {
		t.Errorf("ReadString = %q, want %q", s, "foobar")
	}
}

func TestReadStringInvalidUTF8(t *testing.T) {
	d := NewDecoder([]byte{0x02, 0xFF, 0xFE})
	if _, err := d.ReadString(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestReadBytesNegativeLength(t *testing.T) {
	d := NewDecoder([]byte{0x01}) // zig-zag 0x01 -> -1
	if _, err := d.ReadBytes(); !errors.Is(err, ErrNegativeLength) {
		t.Errorf("expected ErrNegativeLength, got %v", err)
	}
}

func TestReadFixedTruncated(t *testing.T) {
	d := NewDecoder([]byte{1, 2})
	if _, err := d.ReadFixed(3); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadBlocksSimpleArray(t *testing.T) {
	// Scenario 3 from spec §8: Array<Long>, count 3, items {0,1,2}, terminator 0.
	d := NewDecoder([]byte{0x06, 0x00, 0x02, 0x04, 0x00})
	var got []int64
	err := d.ReadBlocks(func() error {
		v, err := d.ReadInt()
		if err != nil {
			return err
		}
		got = append(got, v)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	want := []int64{0, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReadBlocksEmpty(t *testing.T) {
	d := NewDecoder([]byte{0x00})
	called := false
	err := d.ReadBlocks(func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if called {
		t.Error("emit should not be called for an empty block sequence")
	}
}

func TestReadBlocksNegativeCountWithByteLength(t *testing.T) {
	// count = -2 (zigzag 3), byte-length = 2 (zigzag 4, discarded), then 2 bool items.
	d := NewDecoder([]byte{0x03, 0x04, 0x01, 0x00, 0x00})
	var got []bool
	err := d.ReadBlocks(func() error {
		v, err := d.ReadBool()
		if err != nil {
			return err
		}
		got = append(got, v)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("got %v, want [true false]", got)
	}
}

func TestReadBlocksMultipleBlocks(t *testing.T) {
	// Two blocks of 1 item each, then terminator.
	d := NewDecoder([]byte{0x02, 0x00, 0x02, 0x02, 0x00})
	var got []int64
	err := d.ReadBlocks(func() error {
		v, err := d.ReadInt()
		if err != nil {
			return err
		}
		got = append(got, v)
		return nil
	})
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("got %v, want [0 1]", got)
	}
}

func TestDecoderMaxDepth(t *testing.T) {
	d := NewDecoder(nil)
	d.SetMaxDepth(2)
	if !d.EnterNested() {
		t.Fatal("expected depth 1 to be allowed")
	}
	if !d.EnterNested() {
		t.Fatal("expected depth 2 to be allowed")
	}
	if d.EnterNested() {
		t.Fatal("expected depth 3 to be rejected")
	}
	d.ExitNested()
	if !d.EnterNested() {
		t.Fatal("expected depth 2 to be allowed again after exiting once")
	}
}

func TestDecoderResetClearsDepth(t *testing.T) {
	d := NewDecoder([]byte{1})
	d.SetMaxDepth(1)
	if !d.EnterNested() {
		t.Fatal("expected depth 1 to be allowed")
	}
	d.Reset([]byte{2})
	if !d.EnterNested() {
		t.Fatal("expected depth to reset to 0 after Reset")
	}
}

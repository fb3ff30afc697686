package wire

import (
	"errors"
	"unicode/utf8"
)

// Errors raised by Decoder primitives. These correspond to the spec's
// "Decode" taxonomy entry: EOF, invalid bool byte, invalid varint, invalid
// UTF-8.
var (
	// ErrUnexpectedEOF indicates the data was truncated unexpectedly.
	ErrUnexpectedEOF = errors.New("mulberry: unexpected end of data")

	// ErrInvalidBool indicates a bool byte was neither 0x00 nor 0x01.
	ErrInvalidBool = errors.New("mulberry: invalid bool byte")

	// ErrNegativeLength indicates a decoded length was negative.
	ErrNegativeLength = errors.New("mulberry: negative length")

	// ErrInvalidUTF8 indicates a string's bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("mulberry: invalid UTF-8 string")
)

// Decoder is the byte-source handle threaded through every reader produced
// by the builder (spec §3's "reader_handle"). It is a forward-only cursor
// over an in-memory byte slice; there is no seeking or pushback.
//
// A Decoder is not safe for concurrent use. The zero value is not ready for
// use; construct with NewDecoder.
type Decoder struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int // 0 means unlimited
}

// ErrMaxDepthExceeded indicates a record, array, or map nested deeper than
// the Decoder's configured limit; the decode-time counterpart of a
// recursive schema with no terminating branch.
var ErrMaxDepthExceeded = errors.New("mulberry: maximum nesting depth exceeded")

// NewDecoder creates a Decoder reading from data. The Decoder does not copy
// data; the caller must not mutate it while decoding is in progress.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// SetMaxDepth bounds how deeply EnterNested may recurse before it starts
// reporting false (the reader closures then fail with a max-depth error).
// Zero (the default) means unlimited.
func (d *Decoder) SetMaxDepth(n int) { d.maxDepth = n }

// EnterNested increments the nesting depth, used by reader closures for
// records, arrays, and maps, whatever their element types. It reports false (and leaves the depth unchanged) once the configured limit
// is reached.
func (d *Decoder) EnterNested() bool {
	if d.maxDepth > 0 && d.depth >= d.maxDepth {
		return false
	}
	d.depth++
	return true
}

// ExitNested decrements the nesting depth; pair with a successful
// EnterNested via defer.
func (d *Decoder) ExitNested() {
	if d.depth > 0 {
		d.depth--
	}
}

// Reset rebinds the Decoder to read from new data, starting at position 0.
// The configured MaxDepth is preserved; the depth counter is reset to 0.
func (d *Decoder) Reset(data []byte) {
	d.data = data
	d.pos = 0
	d.depth = 0
}

// Pos returns the current read offset.
func (d *Decoder) Pos() int { return d.pos }

// Len returns the number of unread bytes.
func (d *Decoder) Len() int {
	if d.pos >= len(d.data) {
		return 0
	}
	return len(d.data) - d.pos
}

// EOF reports whether every byte has been consumed.
func (d *Decoder) EOF() bool { return d.pos >= len(d.data) }

func (d *Decoder) ensure(n int) error {
	if n < 0 || d.pos+n > len(d.data) {
		return ErrUnexpectedEOF
	}
	return nil
}

// ReadBool reads a single byte: 0x00 is false, 0x01 is true; any other byte
// is a decode error (spec §4.1).
func (d *Decoder) ReadBool() (bool, error) {
	if err := d.ensure(1); err != nil {
		return false, err
	}
	b := d.data[d.pos]
	d.pos++
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

// ReadInt reads a zig-zag varint, producing a signed 64-bit value. This
// primitive serves both the schema's Int and Long kinds; the builder's
// Integer case narrows the result to the target width (spec §4.4).
func (d *Decoder) ReadInt() (int64, error) {
	v, n, err := DecodeSvarint(d.data[d.pos:])
	if err != nil {
		if errors.Is(err, ErrVarintTruncated) {
			return 0, ErrUnexpectedEOF
		}
		return 0, err
	}
	d.pos += n
	return v, nil
}

// ReadFloat reads a 4-byte little-endian IEEE-754 float.
func (d *Decoder) ReadFloat() (float32, error) {
	if err := d.ensure(Float32Size); err != nil {
		return 0, err
	}
	v, err := DecodeFloat32(d.data[d.pos:])
	if err != nil {
		return 0, err
	}
	d.pos += Float32Size
	return v, nil
}

// ReadDouble reads an 8-byte little-endian IEEE-754 double.
func (d *Decoder) ReadDouble() (float64, error) {
	if err := d.ensure(Float64Size); err != nil {
		return 0, err
	}
	v, err := DecodeFloat64(d.data[d.pos:])
	if err != nil {
		return 0, err
	}
	d.pos += Float64Size
	return v, nil
}

// ReadFixed reads exactly n bytes. The returned slice aliases the Decoder's
// underlying data and must be copied by the caller if it outlives the decode.
func (d *Decoder) ReadFixed(n int) ([]byte, error) {
	if err := d.ensure(n); err != nil {
		return nil, err
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadBytes reads a length-prefixed byte block: an int length followed by
// that many raw bytes.
func (d *Decoder) ReadBytes() ([]byte, error) {
	n, err := d.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}
	return d.ReadFixed(int(n))
}

// ReadString reads a length-prefixed byte block and UTF-8 decodes it.
func (d *Decoder) ReadString() (string, error) {
	b, err := d.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// ReadBlocks implements the array/map block protocol (spec §4.1, §6):
// repeatedly read a block count m. If m == 0, iteration stops. If m < 0, a
// byte-length prefix follows (and is discarded, it exists so a reader that
// does not understand the item type can skip the block); the block then
// holds |m| items. emit is invoked once per item, in order, and may itself
// consume bytes from d (it is how array/map element and entry reads are
// threaded back through the decoder).
func (d *Decoder) ReadBlocks(emit func() error) error {
	for {
		m, err := d.ReadInt()
		if err != nil {
			return err
		}
		if m == 0 {
			return nil
		}
		count := m
		if m < 0 {
			if _, err := d.ReadInt(); err != nil { // byte length, discarded
				return err
			}
			count = -m
		}
		for i := int64(0); i < count; i++ {
			if err := emit(); err != nil {
				return err
			}
		}
	}
}

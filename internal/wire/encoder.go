package wire

// Encoder is the append-only counterpart to Decoder, used by the minimal
// serializer in pkg/builder/writer.go. It accumulates encoded bytes in a
// reusable buffer, following the buffer-growth style of the paired Reader
// and Writer in the teacher's codec.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an Encoder with a preallocated buffer.
func NewEncoder(sizeHint int) *Encoder {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Encoder{buf: make([]byte, 0, sizeHint)}
}

// Reset clears the Encoder's buffer for reuse, keeping its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the accumulated encoded bytes. The slice aliases the
// Encoder's internal buffer and is invalidated by the next write.
func (e *Encoder) Bytes() []byte { return e.buf }

// WriteBool appends the 1-byte encoding of a bool.
func (e *Encoder) WriteBool(v bool) {
	if v {
		e.buf = append(e.buf, 0x01)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

// WriteInt appends the zig-zag varint encoding of v.
func (e *Encoder) WriteInt(v int64) {
	e.buf = AppendSvarint(e.buf, v)
}

// WriteFloat appends a 4-byte little-endian IEEE-754 float.
func (e *Encoder) WriteFloat(v float32) {
	e.buf = AppendFloat32(e.buf, v)
}

// WriteDouble appends an 8-byte little-endian IEEE-754 double.
func (e *Encoder) WriteDouble(v float64) {
	e.buf = AppendFloat64(e.buf, v)
}

// WriteFixed appends b verbatim, with no length prefix.
func (e *Encoder) WriteFixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteBytes appends a length-prefixed byte block.
func (e *Encoder) WriteBytes(b []byte) {
	e.WriteInt(int64(len(b)))
	e.WriteFixed(b)
}

// WriteString appends a length-prefixed UTF-8 byte block.
func (e *Encoder) WriteString(s string) {
	e.WriteBytes([]byte(s))
}

// WriteBlock appends a single non-terminal block header for n items (n must
// be > 0) followed by calling emit n times, then the caller is responsible
// for eventually calling WriteBlockEnd.
func (e *Encoder) WriteBlock(n int, emit func(i int)) {
	if n > 0 {
		e.WriteInt(int64(n))
		for i := 0; i < n; i++ {
			emit(i)
		}
	}
}

// WriteBlockEnd appends the zero-count terminator of a block sequence.
func (e *Encoder) WriteBlockEnd() {
	e.WriteInt(0)
}

package mulberry

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// StreamWriter writes a sequence of length-prefixed, schema-encoded messages
// to an io.Writer, following the teacher's WriteDelimited framing in
// pkg/cramberry/stream.go: an unsigned varint byte length followed by the
// encoded payload.
//
// StreamWriter is not safe for concurrent use by multiple goroutines.
type StreamWriter struct {
	w     *bufio.Writer
	codec *WriteCodec
	err   error
}

// NewStreamWriter creates a StreamWriter that encodes each value written to
// it against codec and frames it onto w.
func NewStreamWriter(w io.Writer, codec *WriteCodec) *StreamWriter {
	return &StreamWriter{w: bufio.NewWriterSize(w, 4096), codec: codec}
}

// WriteDelimited encodes v and writes it as one length-prefixed message.
// WriteDelimited buffers; call Flush to guarantee the data
// reaches the underlying writer.
func (sw *StreamWriter) WriteDelimited(v any) error {
	if sw.err != nil {
		return sw.err
	}
	data, err := sw.codec.Marshal(v)
	if err != nil {
		sw.err = err
		return err
	}
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(data)))
	if _, err := sw.w.Write(lenBuf[:n]); err != nil {
		sw.err = err
		return err
	}
	if _, err := sw.w.Write(data); err != nil {
		sw.err = err
		return err
	}
	return nil
}

// Flush writes any buffered data to the underlying io.Writer.
func (sw *StreamWriter) Flush() error {
	if sw.err != nil {
		return sw.err
	}
	return sw.w.Flush()
}

// StreamReader reads a sequence of length-prefixed, schema-encoded messages
// from an io.Reader, the read-side counterpart to StreamWriter.
type StreamReader struct {
	r     *bufio.Reader
	codec *Codec
}

// NewStreamReader creates a StreamReader that decodes each message read from
// r against codec.
func NewStreamReader(r io.Reader, codec *Codec) *StreamReader {
	return &StreamReader{r: bufio.NewReaderSize(r, 4096), codec: codec}
}

// ReadDelimited reads one length-prefixed message and decodes it into v,
// which must point to the Codec's compiled type.
func (sr *StreamReader) ReadDelimited(v any) error {
	length, err := binary.ReadUvarint(sr.r)
	if err != nil {
		return err
	}
	if length > uint64(maxStreamMessageLen) {
		return fmt.Errorf("mulberry: message length %d exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(sr.r, buf); err != nil {
		return err
	}
	return sr.codec.DecodeInto(buf, v)
}

// maxStreamMessageLen bounds a single delimited message's declared length,
// guarding against a corrupt or adversarial length prefix forcing an
// unbounded allocation before the read is even attempted.
const maxStreamMessageLen = 64 << 20

// MessageIterator ranges over the messages in a StreamReader until EOF or
// an error, mirroring the teacher's MessageIterator.
type MessageIterator struct {
	reader *StreamReader
	newPtr func() any
	cur    any
	err    error
}

// NewMessageIterator creates an iterator over the delimited messages in r,
// decoding each against codec. newPtr must return a fresh pointer of the
// Codec's compiled type on each call (e.g. func() any { return new(Event) }).
func NewMessageIterator(r io.Reader, codec *Codec, newPtr func() any) *MessageIterator {
	return &MessageIterator{reader: NewStreamReader(r, codec), newPtr: newPtr}
}

// Next decodes the next message and reports whether one was available.
// On false, call Err to distinguish a clean end-of-stream from a read
// error.
func (it *MessageIterator) Next() bool {
	if _, err := it.reader.r.Peek(1); err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	v := it.newPtr()
	if err := it.reader.ReadDelimited(v); err != nil {
		it.err = err
		return false
	}
	it.cur = v
	return true
}

// Value returns the message decoded by the most recent call to Next.
func (it *MessageIterator) Value() any { return it.cur }

// Err returns any error that stopped iteration, or nil on clean EOF.
func (it *MessageIterator) Err() error { return it.err }

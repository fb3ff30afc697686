package mulberry

import (
	"sync"

	"github.com/blockberries/mulberry/internal/wire"
)

// decoderPool and encoderPool reuse wire.Decoder/wire.Encoder values across
// Decode/Marshal calls, following the teacher's size-tiered buffer pool in
// pkg/cramberry/pool.go, simplified to a single tier here since a
// wire.Decoder/Encoder holds no size-classed buffer of its own, just a
// rebindable data slice or a growable one.
var (
	decoderPool = sync.Pool{New: func() any { return wire.NewDecoder(nil) }}
	encoderPool = sync.Pool{New: func() any { return wire.NewEncoder(256) }}
)

func getDecoder(data []byte, maxDepth int) *wire.Decoder {
	d := decoderPool.Get().(*wire.Decoder)
	d.Reset(data)
	d.SetMaxDepth(maxDepth)
	return d
}

func putDecoder(d *wire.Decoder) {
	decoderPool.Put(d)
}

func getEncoder() *wire.Encoder {
	e := encoderPool.Get().(*wire.Encoder)
	e.Reset()
	return e
}

func putEncoder(e *wire.Encoder) {
	encoderPool.Put(e)
}

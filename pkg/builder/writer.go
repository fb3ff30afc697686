package builder

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/blockberries/mulberry/pkg/schema"
)

// encoder is the append-only counterpart to decoder: the subset of
// *wire.Encoder the writer depends on, declared locally for the same
// test-friendliness reason as decoder in case.go.
type encoder interface {
	WriteBool(bool)
	WriteInt(int64)
	WriteFloat(float32)
	WriteDouble(float64)
	WriteFixed([]byte)
	WriteBytes([]byte)
	WriteString(string)
	WriteBlock(n int, emit func(i int))
	WriteBlockEnd()
}

// WriteFunc is a compiled writer: the serializer-side mirror of ReadFunc.
// Unlike ReadFunc it is not produced by the case/dispatcher pipeline; spec.md
// §1 presumes a symmetric serializer builder exists without specifying one,
// so this is a smaller, switch-based mirror of the same recursive shape
// rather than a second 16-case dispatch pipeline.
type WriteFunc func(e encoder, v reflect.Value) error

// writerKey and writerSlot reuse the reader side's cycle-breaking idea (spec
// §3's references/assignments pair) for the writer's own recursive records.
type writerKey struct {
	schema schema.Schema
	typ    reflect.Type
}

type writerSlot struct{ fn WriteFunc }

// writerContext tracks in-flight (schema, type) writer builds so a
// self-referential record can write itself without infinite recursion at
// build time, mirroring Context.Reserve/Fulfill on the read side.
type writerContext struct {
	refs map[writerKey]*writerSlot
}

func newWriterContext() *writerContext {
	return &writerContext{refs: make(map[writerKey]*writerSlot)}
}

// BuildWriter compiles a WriteFunc for s against values of type t, the
// serializer counterpart of builder.BuildReader.
func BuildWriter(s schema.Schema, t reflect.Type) (WriteFunc, error) {
	return newWriterContext().build(s, t)
}

func (wc *writerContext) build(s schema.Schema, t reflect.Type) (WriteFunc, error) {
	// A nullable union owns its own pointer handling (a nil pointer writes
	// the null branch); see buildUnionWriter. Every other schema treats a
	// pointer target as a plain alias for its pointee, since it has no
	// branch of its own to write "absent" as. *durationpb.Duration and
	// *timestamppb.Timestamp are kept as pointers: the duration and
	// timestamp writers take them as sources directly.
	if _, isUnion := s.(*schema.UnionSchema); !isUnion && t.Kind() == reflect.Ptr && t != pbDurationType && t != pbTimestampType {
		elem := t.Elem()
		elemWrite, err := wc.build(s, elem)
		if err != nil {
			return nil, err
		}
		return func(e encoder, v reflect.Value) error {
			if v.IsNil() {
				return fmt.Errorf("mulberry: cannot write a nil %s, schema has no absent representation here", t)
			}
			return elemWrite(e, v.Elem())
		}, nil
	}

	key := writerKey{s, t}
	if sl, ok := wc.refs[key]; ok {
		return func(e encoder, v reflect.Value) error { return sl.fn(e, v) }, nil
	}

	if lt := s.Logical(); lt != nil {
		switch lt.Kind {
		case schema.LogicalDecimal:
			return wc.buildDecimalWriter(s, lt, t)
		case schema.LogicalDuration:
			return wc.buildDurationWriter(s, t)
		case schema.LogicalTimestampMillis, schema.LogicalTimestampMicros:
			return wc.buildTimestampWriter(s, lt, t)
		}
	}

	switch st := s.(type) {
	case *schema.NullSchema:
		return func(e encoder, v reflect.Value) error { return nil }, nil
	case *schema.BooleanSchema:
		return func(e encoder, v reflect.Value) error { e.WriteBool(v.Bool()); return nil }, nil
	case *schema.IntSchema, *schema.LongSchema:
		return wc.buildIntWriter(t)
	case *schema.FloatSchema:
		return wc.buildFloatWriter(t)
	case *schema.DoubleSchema:
		return wc.buildDoubleWriter(t)
	case *schema.BytesSchema:
		return wc.buildBytesWriter(t)
	case *schema.StringSchema:
		return wc.buildStringWriter(t)
	case *schema.FixedSchema:
		return wc.buildFixedWriter(st.Size, t)
	case *schema.EnumSchema:
		return wc.buildEnumWriter(st, t)
	case *schema.ArraySchema:
		return wc.buildArrayWriter(st, t)
	case *schema.MapSchema:
		return wc.buildMapWriter(st, t)
	case *schema.RecordSchema:
		return wc.buildRecordWriter(st, t)
	case *schema.UnionSchema:
		return wc.buildUnionWriter(st, t)
	default:
		return nil, &UnsupportedSchemaError{Schema: s, Detail: "writer has no case for this schema kind"}
	}
}

func (wc *writerContext) buildIntWriter(t reflect.Type) (WriteFunc, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(e encoder, v reflect.Value) error { e.WriteInt(v.Int()); return nil }, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(e encoder, v reflect.Value) error { e.WriteInt(int64(v.Uint())); return nil }, nil
	default:
		return nil, &UnsupportedTypeError{Type: t, Detail: "not an integer-compatible source"}
	}
}

func (wc *writerContext) buildFloatWriter(t reflect.Type) (WriteFunc, error) {
	if t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a float-compatible source"}
	}
	return func(e encoder, v reflect.Value) error { e.WriteFloat(float32(v.Float())); return nil }, nil
}

func (wc *writerContext) buildDoubleWriter(t reflect.Type) (WriteFunc, error) {
	if t.Kind() != reflect.Float32 && t.Kind() != reflect.Float64 {
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a float-compatible source"}
	}
	return func(e encoder, v reflect.Value) error { e.WriteDouble(v.Float()); return nil }, nil
}

func (wc *writerContext) buildBytesWriter(t reflect.Type) (WriteFunc, error) {
	switch {
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return func(e encoder, v reflect.Value) error { e.WriteBytes(v.Bytes()); return nil }, nil
	case t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8:
		return func(e encoder, v reflect.Value) error {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			e.WriteBytes(b)
			return nil
		}, nil
	case t.Kind() == reflect.String:
		return func(e encoder, v reflect.Value) error { e.WriteBytes([]byte(v.String())); return nil }, nil
	default:
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a byte-array-compatible source"}
	}
}

func (wc *writerContext) buildStringWriter(t reflect.Type) (WriteFunc, error) {
	if t.Kind() != reflect.String {
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a string-compatible source"}
	}
	return func(e encoder, v reflect.Value) error { e.WriteString(v.String()); return nil }, nil
}

func (wc *writerContext) buildFixedWriter(size int, t reflect.Type) (WriteFunc, error) {
	switch {
	case t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8:
		return func(e encoder, v reflect.Value) error {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			e.WriteFixed(b)
			return nil
		}, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return func(e encoder, v reflect.Value) error {
			b := v.Bytes()
			if len(b) != size {
				return &OverflowError{Detail: fmt.Sprintf("%d bytes do not fit fixed(%d)", len(b), size)}
			}
			e.WriteFixed(b)
			return nil
		}, nil
	default:
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a fixed-byte-array-compatible source"}
	}
}

func (wc *writerContext) buildEnumWriter(es *schema.EnumSchema, t reflect.Type) (WriteFunc, error) {
	indexOf := make(map[string]int, len(es.Symbols))
	for i, sym := range es.Symbols {
		indexOf[sym] = i
	}
	switch t.Kind() {
	case reflect.String:
		return func(e encoder, v reflect.Value) error {
			idx, ok := indexOf[v.String()]
			if !ok {
				return &UnsupportedTypeError{Type: t, Detail: fmt.Sprintf("value %q is not one of the schema's enum symbols", v.String())}
			}
			e.WriteInt(int64(idx))
			return nil
		}, nil
	default:
		return func(e encoder, v reflect.Value) error {
			idx, ok := indexOf[fmt.Sprint(v.Interface())]
			if !ok {
				return &UnsupportedTypeError{Type: t, Detail: fmt.Sprintf("value %v is not one of the schema's enum symbols", v.Interface())}
			}
			e.WriteInt(int64(idx))
			return nil
		}, nil
	}
}

func (wc *writerContext) buildArrayWriter(as *schema.ArraySchema, t reflect.Type) (WriteFunc, error) {
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a sequence-compatible source"}
	}
	item, err := wc.build(as.Item, t.Elem())
	if err != nil {
		return nil, err
	}
	return func(e encoder, v reflect.Value) error {
		n := v.Len()
		var writeErr error
		e.WriteBlock(n, func(i int) {
			if writeErr != nil {
				return
			}
			writeErr = item(e, v.Index(i))
		})
		e.WriteBlockEnd()
		return writeErr
	}, nil
}

func (wc *writerContext) buildMapWriter(ms *schema.MapSchema, t reflect.Type) (WriteFunc, error) {
	if t.Kind() != reflect.Map {
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a map-compatible source"}
	}
	val, err := wc.build(ms.Value, t.Elem())
	if err != nil {
		return nil, err
	}
	return func(e encoder, v reflect.Value) error {
		keys := v.MapKeys()
		var writeErr error
		e.WriteBlock(len(keys), func(i int) {
			if writeErr != nil {
				return
			}
			e.WriteString(fmt.Sprint(keys[i].Interface()))
			writeErr = val(e, v.MapIndex(keys[i]))
		})
		e.WriteBlockEnd()
		return writeErr
	}, nil
}

func (wc *writerContext) buildRecordWriter(rs *schema.RecordSchema, t reflect.Type) (WriteFunc, error) {
	if t.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Type: t, Detail: "not a struct-compatible source"}
	}
	key := writerKey{rs, t}
	sl := &writerSlot{}
	wc.refs[key] = sl

	type fieldWrite struct {
		write WriteFunc
		index []int
	}
	fields := make([]fieldWrite, 0, len(rs.Fields))
	for _, f := range rs.Fields {
		sf, ok := t.FieldByName(f.Name)
		if !ok {
			sf, ok = matchFieldCaseInsensitive(t, f.Name)
		}
		if !ok {
			return nil, &UnsupportedSchemaError{Schema: rs, Detail: fmt.Sprintf("target struct %s has no field matching %q", t, f.Name)}
		}
		fw, err := wc.build(f.Type, sf.Type)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fieldWrite{write: fw, index: sf.Index})
	}

	sl.fn = func(e encoder, v reflect.Value) error {
		for _, fw := range fields {
			if err := fw.write(e, v.FieldByIndex(fw.index)); err != nil {
				return err
			}
		}
		return nil
	}
	return func(e encoder, v reflect.Value) error { return sl.fn(e, v) }, nil
}

// foldName mirrors typeresolve.Name's underscore-stripped, case-insensitive
// comparison, duplicated here since the writer does not depend on
// pkg/typeresolve (it works directly off struct field reflect.Types, not
// TypeResolution values).
func foldName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func matchFieldCaseInsensitive(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && foldName(f.Name) == foldName(name) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// buildUnionWriter handles the common nullable-union shape (Union{Null, X})
// by picking the null branch for a nil pointer and the sole non-null branch
// otherwise. A union with more than one non-null branch always picks the
// first one, since this minimal writer has no SelectType-style hook to
// recover which branch a Go value came from; it exists to round-trip the
// reader's own test fixtures, not to serialize arbitrary polymorphic unions.
func (wc *writerContext) buildUnionWriter(us *schema.UnionSchema, t reflect.Type) (WriteFunc, error) {
	branches := make([]WriteFunc, len(us.Branches))
	branchType := t
	if t.Kind() == reflect.Ptr {
		branchType = t.Elem()
	}
	nullIdx, hasNull := us.Nullable()
	for i, b := range us.Branches {
		if b.Kind() == schema.KindNull {
			branches[i] = func(e encoder, v reflect.Value) error { return nil }
			continue
		}
		w, err := wc.build(b, branchType)
		if err != nil {
			return nil, err
		}
		branches[i] = w
	}

	return func(e encoder, v reflect.Value) error {
		if t.Kind() == reflect.Ptr && v.IsNil() {
			if !hasNull {
				return fmt.Errorf("mulberry: cannot write nil, union has no null branch")
			}
			e.WriteInt(int64(nullIdx))
			return nil
		}
		idx := 0
		for i, b := range us.Branches {
			if b.Kind() != schema.KindNull {
				idx = i
				break
			}
		}
		e.WriteInt(int64(idx))
		target := v
		if t.Kind() == reflect.Ptr {
			target = v.Elem()
		}
		return branches[idx](e, target)
	}, nil
}

func (wc *writerContext) buildDecimalWriter(s schema.Schema, lt *schema.LogicalType, t reflect.Type) (WriteFunc, error) {
	var writeBlock func(e encoder, b []byte)
	switch st := s.(type) {
	case *schema.BytesSchema:
		writeBlock = func(e encoder, b []byte) { e.WriteBytes(b) }
	case *schema.FixedSchema:
		size := st.Size
		writeBlock = func(e encoder, b []byte) {
			padded := make([]byte, size)
			sign := byte(0x00)
			if len(b) > 0 && b[0]&0x80 != 0 {
				sign = 0xff
			}
			for i := range padded {
				padded[i] = sign
			}
			copy(padded[size-len(b):], b)
			e.WriteFixed(padded)
		}
	default:
		return nil, &UnsupportedSchemaError{Schema: s, Detail: "decimal logical type requires bytes or fixed physical schema"}
	}

	scale := lt.Scale
	if t != reflect.TypeOf(big.Rat{}) {
		return nil, &UnsupportedTypeError{Type: t, Detail: "writer only supports big.Rat decimal sources"}
	}
	return func(e encoder, v reflect.Value) error {
		rat := v.Interface().(big.Rat)
		unscaled := new(big.Int).Mul(rat.Num(), pow10(scale))
		unscaled.Quo(unscaled, rat.Denom())
		writeBlock(e, encodeTwosComplement(unscaled))
		return nil
	}, nil
}

// encodeTwosComplement is the writer-side inverse of decodeTwosComplement:
// the minimal big-endian two's-complement byte representation of v.
func encodeTwosComplement(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	if v.Sign() > 0 {
		b := v.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	bitLen := v.BitLen() + 1
	nbytes := (bitLen + 7) / 8
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nbytes*8))
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0}, b...)
	}
	return b
}

func (wc *writerContext) buildDurationWriter(s schema.Schema, t reflect.Type) (WriteFunc, error) {
	fx, ok := s.(*schema.FixedSchema)
	if !ok || fx.Size != 12 {
		return nil, &UnsupportedSchemaError{Schema: s, Detail: "duration logical type requires fixed(12) physical schema"}
	}
	var toDuration func(v reflect.Value) time.Duration
	switch t {
	case reflect.TypeOf(time.Duration(0)):
		toDuration = func(v reflect.Value) time.Duration { return v.Interface().(time.Duration) }
	case pbDurationType:
		toDuration = func(v reflect.Value) time.Duration { return v.Interface().(*durationpb.Duration).AsDuration() }
	default:
		return nil, &UnsupportedTypeError{Type: t, Detail: "writer only supports time.Duration or *durationpb.Duration sources"}
	}
	return func(e encoder, v reflect.Value) error {
		d := toDuration(v)
		days := d / (24 * time.Hour)
		millis := (d % (24 * time.Hour)) / time.Millisecond
		buf := make([]byte, 12)
		binary.LittleEndian.PutUint32(buf[0:4], 0)
		binary.LittleEndian.PutUint32(buf[4:8], uint32(days))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(millis))
		e.WriteFixed(buf)
		return nil
	}, nil
}

func (wc *writerContext) buildTimestampWriter(s schema.Schema, lt *schema.LogicalType, t reflect.Type) (WriteFunc, error) {
	if s.Kind() != schema.KindLong {
		return nil, &UnsupportedSchemaError{Schema: s, Detail: "timestamp logical type requires long physical schema"}
	}
	var toTime func(v reflect.Value) time.Time
	switch t {
	case reflect.TypeOf(time.Time{}):
		toTime = func(v reflect.Value) time.Time { return v.Interface().(time.Time) }
	case pbTimestampType:
		toTime = func(v reflect.Value) time.Time { return v.Interface().(*timestamppb.Timestamp).AsTime() }
	default:
		return nil, &UnsupportedTypeError{Type: t, Detail: "writer only supports time.Time or *timestamppb.Timestamp sources"}
	}
	micros := lt.Kind == schema.LogicalTimestampMicros
	return func(e encoder, v reflect.Value) error {
		ts := toTime(v)
		if micros {
			e.WriteInt(ts.UnixMicro())
		} else {
			e.WriteInt(ts.UnixMilli())
		}
		return nil
	}, nil
}

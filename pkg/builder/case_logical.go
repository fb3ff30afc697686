package builder

import (
	"encoding/binary"
	"math/big"
	"reflect"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

// decimalCase runs before every physical-type case so a Bytes/Fixed schema
// carrying a Decimal logical type produces a decimal, not raw bytes (spec
// §4.12, the "case-ordering" testable property).
type decimalCase struct{}

func (decimalCase) Name() string { return "Decimal" }

func (decimalCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	lt := s.Logical()
	if lt == nil || lt.Kind != schema.LogicalDecimal {
		return Reject("Decimal", SchemaKindMismatch, "schema has no decimal logical type"), nil
	}

	var readBlock func(d decoder) ([]byte, error)
	switch t := s.(type) {
	case *schema.BytesSchema:
		readBlock = func(d decoder) ([]byte, error) { return d.ReadBytes() }
	case *schema.FixedSchema:
		size := t.Size
		readBlock = func(d decoder) ([]byte, error) { return d.ReadFixed(size) }
	default:
		return Result{}, &UnsupportedSchemaError{Schema: s, Detail: "decimal logical type requires bytes or fixed physical schema"}
	}

	scale := lt.Scale
	target := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		b, err := readBlock(d)
		if err != nil {
			return reflect.Value{}, err
		}
		unscaled := decodeTwosComplement(b)
		rat := new(big.Rat).SetFrac(unscaled, pow10(scale))
		return decimalToTarget(rat, target)
	}), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// decodeTwosComplement interprets b as a big-endian two's-complement signed
// integer, the on-wire representation of a decimal's unscaled value.
func decodeTwosComplement(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return v
}

func decimalToTarget(rat *big.Rat, t reflect.Type) (reflect.Value, error) {
	switch {
	case t == reflect.TypeOf(big.Rat{}):
		return reflect.ValueOf(*rat), nil
	case t == reflect.TypeOf(&big.Rat{}):
		return reflect.ValueOf(rat), nil
	case t.Kind() == reflect.Float64:
		f, _ := rat.Float64()
		return reflect.ValueOf(f).Convert(t), nil
	case t.Kind() == reflect.Float32:
		f, _ := rat.Float64()
		return reflect.ValueOf(float32(f)).Convert(t), nil
	case t.Kind() == reflect.String:
		return reflect.ValueOf(rat.FloatString(rat.Denom().BitLen())).Convert(t), nil
	default:
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not a decimal-compatible target"}
	}
}

// durationCase handles the fixed(12) months/days/millis logical type.
type durationCase struct{}

func (durationCase) Name() string { return "Duration" }

func (durationCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	lt := s.Logical()
	if lt == nil || lt.Kind != schema.LogicalDuration {
		return Reject("Duration", SchemaKindMismatch, "schema has no duration logical type"), nil
	}
	fx, ok := s.(*schema.FixedSchema)
	if !ok || fx.Size != 12 {
		return Result{}, &UnsupportedSchemaError{Schema: s, Detail: "duration logical type requires fixed(12) physical schema"}
	}

	target := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		b, err := d.ReadFixed(12)
		if err != nil {
			return reflect.Value{}, err
		}
		months := binary.LittleEndian.Uint32(b[0:4])
		days := binary.LittleEndian.Uint32(b[4:8])
		millis := binary.LittleEndian.Uint32(b[8:12])
		if months != 0 {
			return reflect.Value{}, &OverflowError{Detail: "duration has a nonzero months component, which a fixed-tick duration cannot represent"}
		}
		// Open question (spec §9): fractional millisecond remainders beyond
		// the host duration's tick resolution are silently truncated here,
		// matching the source's own behavior rather than rounding.
		total := time.Duration(days)*24*time.Hour + time.Duration(millis)*time.Millisecond
		return durationToTarget(total, target)
	}), nil
}

var (
	pbDurationType  = reflect.TypeOf(&durationpb.Duration{})
	pbTimestampType = reflect.TypeOf(&timestamppb.Timestamp{})
)

func durationToTarget(d time.Duration, t reflect.Type) (reflect.Value, error) {
	if t == pbDurationType {
		return reflect.ValueOf(durationpb.New(d)), nil
	}
	if t == reflect.TypeOf(time.Duration(0)) || t.Kind() == reflect.Int64 {
		return reflect.ValueOf(d).Convert(t), nil
	}
	return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not a duration-compatible target"}
}

// timestampCase handles the long + {timestamp-millis,timestamp-micros}
// logical type.
type timestampCase struct{}

func (timestampCase) Name() string { return "Timestamp" }

func (timestampCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	lt := s.Logical()
	if lt == nil || (lt.Kind != schema.LogicalTimestampMillis && lt.Kind != schema.LogicalTimestampMicros) {
		return Reject("Timestamp", SchemaKindMismatch, "schema has no timestamp logical type"), nil
	}
	if s.Kind() != schema.KindLong {
		return Result{}, &UnsupportedSchemaError{Schema: s, Detail: "timestamp logical type requires long physical schema"}
	}

	micros := lt.Kind == schema.LogicalTimestampMicros
	target := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		ticks, err := d.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		var ts time.Time
		if micros {
			ts = time.UnixMicro(ticks).UTC()
		} else {
			ts = time.UnixMilli(ticks).UTC()
		}
		if target == reflect.TypeOf(time.Time{}) {
			return reflect.ValueOf(ts), nil
		}
		if target == pbTimestampType {
			return reflect.ValueOf(timestamppb.New(ts)), nil
		}
		return reflect.Value{}, &UnsupportedTypeError{Type: target, Detail: "not a timestamp-compatible target"}
	}), nil
}

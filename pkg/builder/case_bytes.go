package builder

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/blockberries/mulberry/pkg/schema"
	"github.com/blockberries/mulberry/pkg/typeresolve"
)

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
	urlType  = reflect.TypeOf(url.URL{})
	timeType = reflect.TypeOf(time.Time{})
)

// byteLikeToTarget is the conversion lattice shared by the Bytes and Fixed
// cases (spec §4.5): a 16-byte block destined for a uuid.UUID target is
// reinterpreted as one; otherwise it passes through the plain byte-array
// conversion.
func byteLikeToTarget(b []byte, t reflect.Type) (reflect.Value, error) {
	if t == uuidType && len(b) == 16 {
		var id uuid.UUID
		copy(id[:], b)
		return reflect.ValueOf(id), nil
	}
	return convertBytes(b, t)
}

// bytesCase bridges schema.Bytes (with no competing logical type) to a byte
// slice, byte array, UUID, or string target.
type bytesCase struct{}

func (bytesCase) Name() string { return "Bytes" }

func (bytesCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindBytes {
		return Reject("Bytes", SchemaKindMismatch, "schema is not bytes"), nil
	}
	if lt := s.Logical(); lt != nil && lt.Kind != schema.LogicalNone {
		return Reject("Bytes", SchemaKindMismatch, "schema has a competing logical type"), nil
	}
	t := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		b, err := d.ReadBytes()
		if err != nil {
			return reflect.Value{}, err
		}
		return byteLikeToTarget(b, t)
	}), nil
}

// fixedCase bridges schema.Fixed{size} to the same conversion lattice as
// Bytes.
type fixedCase struct{}

func (fixedCase) Name() string { return "Fixed" }

func (fixedCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	fx, ok := s.(*schema.FixedSchema)
	if !ok {
		return Reject("Fixed", SchemaKindMismatch, "schema is not fixed"), nil
	}
	if lt := s.Logical(); lt != nil && lt.Kind != schema.LogicalNone {
		return Reject("Fixed", SchemaKindMismatch, "schema has a competing logical type"), nil
	}
	t := res.Type()
	size := fx.Size
	return Accept(func(d decoder) (reflect.Value, error) {
		b, err := d.ReadFixed(size)
		if err != nil {
			return reflect.Value{}, err
		}
		return byteLikeToTarget(b, t)
	}), nil
}

// stringCase bridges schema.String to string, UUID, time.Time, url.URL, or
// time.Duration targets, per the conversion lattice in spec §4.6.
type stringCase struct{}

func (stringCase) Name() string { return "String" }

func (stringCase) Build(res typeresolve.Resolution, s schema.Schema, ctx *Context) (Result, error) {
	if s.Kind() != schema.KindString {
		return Reject("String", SchemaKindMismatch, "schema is not string"), nil
	}
	t := res.Type()
	return Accept(func(d decoder) (reflect.Value, error) {
		str, err := d.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		return stringToTarget(str, t)
	}), nil
}

func stringToTarget(str string, t reflect.Type) (reflect.Value, error) {
	switch t {
	case uuidType:
		id, err := uuid.Parse(str)
		if err != nil {
			return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "invalid UUID string: " + err.Error()}
		}
		return reflect.ValueOf(id), nil
	case timeType:
		ts, err := time.Parse(time.RFC3339Nano, str)
		if err != nil {
			return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "invalid RFC3339 timestamp: " + err.Error()}
		}
		return reflect.ValueOf(ts), nil
	case urlType:
		u, err := url.Parse(str)
		if err != nil {
			return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "invalid URI: " + err.Error()}
		}
		return reflect.ValueOf(*u), nil
	case timeDurationType:
		dur, err := parseISO8601Duration(str)
		if err != nil {
			return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: err.Error()}
		}
		return reflect.ValueOf(dur), nil
	default:
		return convertString(str, t)
	}
}

var timeDurationType = reflect.TypeOf(time.Duration(0))

// parseISO8601Duration parses the subset of ISO-8601 durations
// (PnYnMnDTnHnMnS) the wire format's duration-as-string targets need.
// Years and months have no fixed tick length, so they are rejected rather
// than approximated (consistent with the fixed-duration logical type's own
// refusal to convert nonzero months, spec §4.12).
func parseISO8601Duration(s string) (time.Duration, error) {
	if len(s) < 2 || s[0] != 'P' {
		return 0, fmt.Errorf("not an ISO-8601 duration: %q", s)
	}
	var total time.Duration
	num := ""
	inTime := false
	for _, r := range s[1:] {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9' || r == '.':
			num += string(r)
		case r == 'Y' || r == 'M' && !inTime:
			if r == 'Y' {
				return 0, fmt.Errorf("ISO-8601 duration with a years component has no fixed length: %q", s)
			}
			return 0, fmt.Errorf("ISO-8601 duration with a months component has no fixed length: %q", s)
		case r == 'D':
			n, err := parseDurationNumber(num)
			if err != nil {
				return 0, err
			}
			total += time.Duration(n * 24 * float64(time.Hour))
			num = ""
		case r == 'H':
			n, err := parseDurationNumber(num)
			if err != nil {
				return 0, err
			}
			total += time.Duration(n * float64(time.Hour))
			num = ""
		case r == 'M' && inTime:
			n, err := parseDurationNumber(num)
			if err != nil {
				return 0, err
			}
			total += time.Duration(n * float64(time.Minute))
			num = ""
		case r == 'S':
			n, err := parseDurationNumber(num)
			if err != nil {
				return 0, err
			}
			total += time.Duration(n * float64(time.Second))
			num = ""
		default:
			return 0, fmt.Errorf("unexpected character %q in ISO-8601 duration %q", r, s)
		}
	}
	return total, nil
}

func parseDurationNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing numeric component before duration unit")
	}
	var n float64
	_, err := fmt.Sscanf(s, "%g", &n)
	return n, err
}

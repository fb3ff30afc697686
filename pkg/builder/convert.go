package builder

import (
	"fmt"
	"math"
	"reflect"
)

// convertInt performs the spec's "checked numeric conversion": x must fit in
// t without truncation. t may be any integer kind, or float32/float64
// (widening is always safe there up to the usual float precision limits,
// which this does not attempt to re-check; only integer narrowing is
// checked, matching the teacher's numeric-conversion tests).
func convertInt(x int64, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int64:
		return reflect.ValueOf(x).Convert(t), nil
	case reflect.Int8:
		if x < math.MinInt8 || x > math.MaxInt8 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d does not fit in int8", x)}
		}
		return reflect.ValueOf(int8(x)).Convert(t), nil
	case reflect.Int16:
		if x < math.MinInt16 || x > math.MaxInt16 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d does not fit in int16", x)}
		}
		return reflect.ValueOf(int16(x)).Convert(t), nil
	case reflect.Int32:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d does not fit in int32", x)}
		}
		return reflect.ValueOf(int32(x)).Convert(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if x < 0 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d is negative, cannot convert to %s", x, t)}
		}
		return convertUint(uint64(x), t)
	case reflect.Float32:
		return reflect.ValueOf(float32(x)).Convert(t), nil
	case reflect.Float64:
		return reflect.ValueOf(float64(x)).Convert(t), nil
	default:
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not an integer-compatible target"}
	}
}

func convertUint(x uint64, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return reflect.ValueOf(x).Convert(t), nil
	case reflect.Uint8:
		if x > math.MaxUint8 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d does not fit in uint8", x)}
		}
		return reflect.ValueOf(uint8(x)).Convert(t), nil
	case reflect.Uint16:
		if x > math.MaxUint16 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d does not fit in uint16", x)}
		}
		return reflect.ValueOf(uint16(x)).Convert(t), nil
	case reflect.Uint32:
		if x > math.MaxUint32 {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d does not fit in uint32", x)}
		}
		return reflect.ValueOf(uint32(x)).Convert(t), nil
	default:
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not an unsigned-integer-compatible target"}
	}
}

// convertFloat checked-converts a decoded float/double to t.
func convertFloat(x float64, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Float64:
		return reflect.ValueOf(x).Convert(t), nil
	case reflect.Float32:
		return reflect.ValueOf(float32(x)).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if x != math.Trunc(x) {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%v has a fractional part, cannot convert to %s", x, t)}
		}
		return convertInt(int64(x), t)
	default:
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not a floating-point-compatible target"}
	}
}

func convertBool(x bool, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Bool {
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not a bool-compatible target"}
	}
	return reflect.ValueOf(x).Convert(t), nil
}

func convertString(x string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.String {
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not a string-compatible target"}
	}
	return reflect.ValueOf(x).Convert(t), nil
}

func convertBytes(x []byte, t reflect.Type) (reflect.Value, error) {
	cp := make([]byte, len(x))
	copy(cp, x)
	switch {
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return reflect.ValueOf(cp).Convert(t), nil
	case t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8:
		if t.Len() != len(cp) {
			return reflect.Value{}, &OverflowError{Detail: fmt.Sprintf("%d bytes do not fit in %s", len(cp), t)}
		}
		arr := reflect.New(t).Elem()
		reflect.Copy(arr, reflect.ValueOf(cp))
		return arr, nil
	case t.Kind() == reflect.String:
		return reflect.ValueOf(string(cp)).Convert(t), nil
	default:
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Detail: "not a byte-array-compatible target"}
	}
}

// zeroValue returns the zero value for t, used by the Null case.
func zeroValue(t reflect.Type) reflect.Value { return reflect.Zero(t) }

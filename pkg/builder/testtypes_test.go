package builder

import (
	"encoding/binary"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
)

func reflectTypeOfBigRat() reflect.Type      { return reflect.TypeOf(big.Rat{}) }
func reflectTypeOfDuration() reflect.Type    { return reflect.TypeOf(time.Duration(0)) }
func reflectTypeOfTime() reflect.Type        { return reflect.TypeOf(time.Time{}) }
func reflectTypeOfStringType() reflect.Type  { return reflect.TypeOf("") }
func reflectTypeOfInt64Type() reflect.Type   { return reflect.TypeOf(int64(0)) }
func reflectTypeOfBoolType() reflect.Type    { return reflect.TypeOf(false) }
func reflectTypeOfFloat64Type() reflect.Type { return reflect.TypeOf(float64(0)) }
func reflectTypeOfByteSlice() reflect.Type   { return reflect.TypeOf([]byte(nil)) }
func reflectTypeOfUUID() reflect.Type        { return reflect.TypeOf(uuid.UUID{}) }
func reflectTypeOfInt32Slice() reflect.Type  { return reflect.TypeOf([]int32(nil)) }
func reflectTypeOfStringInt32Map() reflect.Type {
	return reflect.TypeOf(map[string]int32(nil))
}
func reflectTypeOfGadget() reflect.Type { return reflect.TypeOf(gadget{}) }
func reflectTypeOfOpaqueInterface() reflect.Type {
	return reflect.TypeOf((*any)(nil)).Elem()
}

func putLE32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

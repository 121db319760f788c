// Package format implements the byte-level action interchange format:
// fixed-width big-endian integers, a 4-byte float encoding with explicit
// special values, and the serialized multi-frame action layout.
package format

import (
	"fmt"

	motionlite "github.com/dtrn/go-motionlite"
)

// Integer covers the fixed-width integer kinds the wire format carries
type Integer interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

func intSize[T Integer]() int {
	var v T

	switch any(v).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32:
		return 4
	default:
		return 8
	}
}

func isSigned[T Integer]() bool {
	return T(0)-1 < 0
}

// IntToBytes encodes value as big-endian bytes, one byte per byte of the
// integer's width.  Negative values are encoded in two's complement.
func IntToBytes[T Integer](value T) []byte {
	size := intSize[T]()
	uvalue := uint64(value)

	out := make([]byte, size)

	for i := 0; i < size; i++ {
		out[i] = byte(uvalue >> ((size - i - 1) * 8))
	}

	return out
}

// BytesToInt decodes a big-endian integer of exactly the destination type's
// width.  For signed destinations the magnitude is saturated to the
// destination range, so the most negative two's-complement pattern decodes
// to the negated maximum.
func BytesToInt[T Integer](b []byte) (T, error) {
	size := intSize[T]()

	if len(b) != size {
		return 0, fmt.Errorf("%w: integer encoding length %d, expected %d",
			motionlite.ErrInvalidArgument, len(b), size)
	}

	var uvalue uint64

	for i := 0; i < size; i++ {
		uvalue |= uint64(b[i]) << ((size - i - 1) * 8)
	}

	if !isSigned[T]() {
		return T(uvalue), nil
	}

	bits := uint(size) * 8
	max := uint64(1)<<(bits-1) - 1

	if uvalue&(uint64(1)<<(bits-1)) != 0 {
		magnitude := (^uvalue + 1) & (uint64(1)<<bits - 1)

		if magnitude > max {
			magnitude = max
		}

		return -T(magnitude), nil
	}

	if uvalue > max {
		uvalue = max
	}

	return T(uvalue), nil
}

package format

import (
	"fmt"
	"math"

	motionlite "github.com/dtrn/go-motionlite"
)

// FloatToBytes encodes a float32 into the 4-byte interchange layout: a sign
// bit, an 8-bit exponent with bias 126 and a 24-bit integer mantissa of which
// the top bit is implicit.  NaN encodes with a quiet-bit mantissa, infinities
// with an empty mantissa, and values too small for the exponent collapse to
// signed zero.
func FloatToBytes(value float32) []byte {
	var signBit byte

	if math.Signbit(float64(value)) {
		signBit = 0x80
	}

	if math.IsNaN(float64(value)) {
		return []byte{signBit | 0x7f, 0xc0, 0, 0}
	}

	if math.IsInf(float64(value), 0) {
		return []byte{signBit | 0x7f, 0x80, 0, 0}
	}

	if value == 0 {
		return []byte{signBit, 0, 0, 0}
	}

	frac, exp := math.Frexp(math.Abs(float64(value)))

	if exp >= 0xff || frac > 1 {
		return []byte{signBit | 0x7f, 0x80, 0, 0}
	}

	frac = math.Ldexp(frac, 24)
	exp += 126

	if math.IsInf(frac, 0) || exp >= 0xff {
		return []byte{signBit | 0x7f, 0x80, 0, 0}
	}

	if exp <= 0 {
		return []byte{signBit, 0, 0, 0}
	}

	e := uint8(exp)
	mant := uint32(frac)

	return []byte{
		signBit | e>>1,
		((e << 7) & 0x80) | byte((mant>>16)&0x7f),
		byte(mant >> 8),
		byte(mant),
	}
}

// BytesToFloat decodes a 4-byte float encoding produced by FloatToBytes.
// Wire-level subnormals decode to their small value even though the encoder
// never emits them.
func BytesToFloat(b []byte) (float32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("%w: float encoding length %d",
			motionlite.ErrInvalidArgument, len(b))
	}

	num := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])

	sign := 1.0

	if num&0x80000000 != 0 {
		sign = -1.0
	}

	switch {
	case num&0x7f800000 == 0x7f800000:
		if num&0x7fffff != 0 {
			return float32(math.Copysign(math.NaN(), sign)), nil
		}

		return float32(math.Inf(int(sign))), nil
	case num&0x7f800000 == 0:
		if num&0x7fffff != 0 {
			mant := float64(num & 0x7fffff)

			return float32(math.Copysign(math.Ldexp(mant, -125-24), sign)), nil
		}

		return float32(math.Copysign(0, sign)), nil
	default:
		exp := int((num&0x7f800000)>>23) - 126 - 24
		mant := float64(num&0x7fffff | 0x800000)

		return float32(math.Copysign(math.Ldexp(mant, exp), sign)), nil
	}
}

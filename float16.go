package motionlite

import (
	"fmt"

	"github.com/x448/float16"
)

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// NewImageFromFloat16 builds an image from a raw float16 pixel buffer, the
// layout half-precision inference backends commonly hand over.  The buffer
// length must equal height*width*channels.
func NewImageFromFloat16(data []uint16, height, width, channels int) (*Image, error) {
	img, err := NewImage(height, width, channels)

	if err != nil {
		return nil, err
	}

	if len(data) != len(img.Data) {
		return nil, fmt.Errorf("%w: buffer length %d does not match %dx%dx%d",
			ErrInvalidArgument, len(data), height, width, channels)
	}

	for i, bits := range data {
		img.Data[i] = f16LookupTable[bits]
	}

	return img, nil
}

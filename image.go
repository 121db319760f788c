package motionlite

import (
	"fmt"
)

// Image defines a dense H×W×C pixel grid passed to still estimators.  Pixel
// values are float32 in row-major order: Data[(x*Width+y)*Channels+c].
// Coordinate x runs top-down and y left-right, matching BodyPart.
type Image struct {
	// Data is the pixel buffer in row-major order
	Data []float32
	// Height is the number of rows
	Height int
	// Width is the number of columns
	Width int
	// Channels is the number of channels per pixel
	Channels int
}

// NewImage allocates a zeroed image with the given dimensions
func NewImage(height, width, channels int) (*Image, error) {
	if height <= 0 || width <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%dx%d",
			ErrInvalidArgument, height, width, channels)
	}

	return &Image{
		Data:     make([]float32, height*width*channels),
		Height:   height,
		Width:    width,
		Channels: channels,
	}, nil
}

// NewImageFromData wraps an existing pixel buffer.  The buffer length must
// equal height*width*channels.
func NewImageFromData(data []float32, height, width, channels int) (*Image, error) {
	if height <= 0 || width <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: image dimensions %dx%dx%d",
			ErrInvalidArgument, height, width, channels)
	}

	if len(data) != height*width*channels {
		return nil, fmt.Errorf("%w: buffer length %d does not match %dx%dx%d",
			ErrInvalidArgument, len(data), height, width, channels)
	}

	return &Image{
		Data:     data,
		Height:   height,
		Width:    width,
		Channels: channels,
	}, nil
}

// At returns the pixel value at row x, column y, channel c
func (m *Image) At(x, y, c int) float32 {
	return m.Data[(x*m.Width+y)*m.Channels+c]
}

// Set assigns the pixel value at row x, column y, channel c
func (m *Image) Set(x, y, c int, v float32) {
	m.Data[(x*m.Width+y)*m.Channels+c] = v
}

// Empty reports whether the image has a zero dimension
func (m *Image) Empty() bool {
	return m.Height == 0 || m.Width == 0 || m.Channels == 0
}

// Package preprocess provides image resize and crop operations used by the
// motion estimator before handing frames to still estimators.
package preprocess

import (
	"fmt"

	motionlite "github.com/dtrn/go-motionlite"
)

// Resize scales an image to the target dimensions using bilinear
// interpolation.  The source image must be non-empty and the target
// dimensions positive.
func Resize(img *motionlite.Image, targetHeight, targetWidth int) (*motionlite.Image, error) {
	if img == nil || img.Empty() {
		return nil, fmt.Errorf("%w: resize of empty image", motionlite.ErrInvalidArgument)
	}

	if targetHeight <= 0 || targetWidth <= 0 {
		return nil, fmt.Errorf("%w: resize target %dx%d",
			motionlite.ErrInvalidArgument, targetHeight, targetWidth)
	}

	dst, err := motionlite.NewImage(targetHeight, targetWidth, img.Channels)

	if err != nil {
		return nil, err
	}

	xRatio := float32(img.Height) / float32(targetHeight)
	yRatio := float32(img.Width) / float32(targetWidth)

	for i := 0; i < targetHeight; i++ {
		x := img.Height * i / targetHeight
		xDiff := xRatio*float32(i) - float32(x)

		for j := 0; j < targetWidth; j++ {
			y := img.Width * j / targetWidth
			yDiff := yRatio*float32(j) - float32(y)

			for c := 0; c < img.Channels; c++ {
				var v float32

				switch {
				case x+1 < img.Height && y+1 < img.Width:
					v = img.At(x, y, c)*(1-xDiff)*(1-yDiff) +
						img.At(x, y+1, c)*(1-xDiff)*yDiff +
						img.At(x+1, y, c)*xDiff*(1-yDiff) +
						img.At(x+1, y+1, c)*xDiff*yDiff
				case x+1 < img.Height:
					v = img.At(x, y, c)*(1-xDiff) +
						img.At(x+1, y, c)*xDiff
				case y+1 < img.Width:
					v = img.At(x, y, c)*(1-yDiff) +
						img.At(x, y+1, c)*yDiff
				default:
					v = img.At(x, y, c)
				}

				dst.Set(i, j, c, v)
			}
		}
	}

	return dst, nil
}

// Crop extracts the window of at most targetHeight x targetWidth pixels whose
// top-left corner is at row x, column y.  The window is clamped to the image
// bounds, so the result may be smaller than requested or empty.
func Crop(img *motionlite.Image, x, y, targetHeight, targetWidth int) (*motionlite.Image, error) {
	if img == nil || img.Empty() {
		return nil, fmt.Errorf("%w: crop of empty image", motionlite.ErrInvalidArgument)
	}

	if x < 0 || y < 0 || targetHeight < 0 || targetWidth < 0 {
		return nil, fmt.Errorf("%w: crop window %d,%d %dx%d",
			motionlite.ErrInvalidArgument, x, y, targetHeight, targetWidth)
	}

	x1 := min(x, img.Height)
	y1 := min(y, img.Width)
	x2 := min(x1+targetHeight, img.Height)
	y2 := min(y1+targetWidth, img.Width)

	dst := &motionlite.Image{
		Data:     make([]float32, (x2-x1)*(y2-y1)*img.Channels),
		Height:   x2 - x1,
		Width:    y2 - y1,
		Channels: img.Channels,
	}

	for i := x1; i < x2; i++ {
		for j := y1; j < y2; j++ {
			for c := 0; c < img.Channels; c++ {
				dst.Set(i-x1, j-y1, c, img.At(i, j, c))
			}
		}
	}

	return dst, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

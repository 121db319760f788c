package motion

import (
	"fmt"

	motionlite "github.com/dtrn/go-motionlite"
	"github.com/dtrn/go-motionlite/preprocess"
)

// ZoomRange returns the closed range of neighboring frames whose estimates
// hint the crop region for frame pos.
func ZoomRange(pos, length, zoomRange int) (int, int, error) {
	if length <= 0 {
		return 0, 0, fmt.Errorf("%w: sequence length %d",
			motionlite.ErrInvalidArgument, length)
	}

	if pos < 0 || pos >= length {
		return 0, 0, fmt.Errorf("%w: position %d outside sequence of length %d",
			motionlite.ErrInvalidArgument, pos, length)
	}

	if zoomRange < 0 {
		return 0, 0, fmt.Errorf("%w: zoom range %d",
			motionlite.ErrInvalidArgument, zoomRange)
	}

	first := pos - zoomRange

	if first < 0 {
		first = 0
	}

	last := pos + zoomRange

	if last > length-1 {
		last = length - 1
	}

	return first, last, nil
}

type zoomBounds struct {
	x1, x2, y1, y2 float32
}

// partBounds returns the bounding box of the human's parts and their centroid.
func partBounds(human *motionlite.Human) (zoomBounds, float32, float32) {
	first := true

	var b zoomBounds
	var midX, midY float32

	count := float32(len(human.Parts))

	for _, part := range human.Parts {
		if first {
			b.x1, b.x2 = part.X, part.X
			b.y1, b.y2 = part.Y, part.Y
			first = false
		} else {
			if part.X < b.x1 {
				b.x1 = part.X
			}

			if part.X > b.x2 {
				b.x2 = part.X
			}

			if part.Y < b.y1 {
				b.y1 = part.Y
			}

			if part.Y > b.y2 {
				b.y2 = part.Y
			}
		}

		midX += part.X / count
		midY += part.Y / count
	}

	return b, midX, midY
}

func minFloat(a, b float32) float32 {
	if a < b {
		return a
	}

	return b
}

func maxFloat(a, b float32) float32 {
	if a > b {
		return a
	}

	return b
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}

// cropRegion derives the pixel crop window for the image from the estimated
// bounds and the neighboring hint estimates.
func cropRegion(
	image *motionlite.Image, bounds zoomBounds, midX, midY float32,
	hints []*motionlite.Human,
) (x1, y1, x2, y2 int, ok bool) {
	var height, width float32

	for _, hint := range hints {
		if hint == nil || len(hint.Parts) == 0 {
			continue
		}

		hintBounds, _, _ := partBounds(hint)

		height = maxFloat(height, hintBounds.x2-hintBounds.x1)
		width = maxFloat(width, hintBounds.y2-hintBounds.y1)
	}

	boundX1 := minFloat(bounds.x1, minFloat(bounds.x2-height, midX-height/2))
	boundX2 := maxFloat(bounds.x2, maxFloat(bounds.x1+height, midX+height/2))
	boundY1 := minFloat(bounds.y1, minFloat(bounds.y2-width, midY-width/2))
	boundY2 := maxFloat(bounds.y2, maxFloat(bounds.y1+width, midY+width/2))

	expandX := (boundX2 - boundX1) / 4
	expandY := (boundY2 - boundY1) / 4

	boundX1 -= expandX
	boundX2 += expandX
	boundY1 -= expandY
	boundY2 += expandY

	boundX1 = clampUnit(boundX1)
	boundX2 = clampUnit(boundX2)
	boundY1 = clampUnit(boundY1)
	boundY2 = clampUnit(boundY2)

	x1 = clampPixel(int(boundX1*float32(image.Height)), image.Height)
	x2 = clampPixel(int(boundX2*float32(image.Height)), image.Height)
	y1 = clampPixel(int(boundY1*float32(image.Width)), image.Width)
	y2 = clampPixel(int(boundY2*float32(image.Width)), image.Width)

	if x2 < x1 {
		x2 = x1
	}

	if y2 < y1 {
		y2 = y1
	}

	if x1 == x2 {
		x1, x2 = widenAxis(x1, x2, image.Height)
	}

	if y1 == y2 {
		y1, y2 = widenAxis(y1, y2, image.Width)
	}

	if x1 == x2 || y1 == y2 {
		return 0, 0, 0, 0, false
	}

	return x1, y1, x2 + 1, y2 + 1, true
}

func clampPixel(v, dim int) int {
	if v > dim-1 {
		return dim - 1
	}

	return v
}

// widenAxis grows a degenerate crop axis by a third of the image dimension on
// each side.
func widenAxis(lo, hi, dim int) (int, int) {
	change := dim / 3

	lo -= change

	if lo < 0 {
		lo = 0
	}

	hi += change
	hi = clampPixel(hi, dim)

	if hi < lo {
		hi = lo
	}

	return lo, hi
}

// ZoomEstimate re-estimates human on a crop of image focused on the region
// the initial estimate and the hint estimates suggest.  Parts found on the
// crop replace the originals when they score at least as high.  The input
// human is not modified.
func ZoomEstimate(
	image *motionlite.Image, human *motionlite.Human,
	hints []*motionlite.Human, estimator motionlite.StillEstimator,
) (*motionlite.Human, error) {
	if image == nil {
		return nil, fmt.Errorf("%w: nil image", motionlite.ErrInvalidArgument)
	}

	if human == nil {
		return nil, fmt.Errorf("%w: nil human", motionlite.ErrInvalidArgument)
	}

	if image.Empty() || len(human.Parts) == 0 {
		return human.Clone(), nil
	}

	bounds, midX, midY := partBounds(human)

	cropX1, cropY1, cropX2, cropY2, ok := cropRegion(image, bounds, midX, midY, hints)

	if !ok {
		return human.Clone(), nil
	}

	cropped, err := preprocess.Crop(image, cropX1, cropY1,
		cropX2-cropX1, cropY2-cropY1)

	if err != nil {
		return nil, err
	}

	if cropped.Empty() {
		return human.Clone(), nil
	}

	zoomed, err := estimator.Estimate(cropped)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", motionlite.ErrEstimator, err)
	}

	if len(zoomed) == 0 || zoomed[0] == nil {
		return human.Clone(), nil
	}

	result := human.Clone()

	for _, part := range zoomed[0].Parts {
		x, y := translateCoords(part.X, part.Y,
			cropX1, cropY1, cropped.Height, cropped.Width,
			image.Height, image.Width)

		translated := motionlite.BodyPart{
			Part:  part.Part,
			X:     x,
			Y:     y,
			Score: part.Score,
		}

		existing, found := result.Parts[part.Part]

		if !found || existing.Score <= part.Score {
			result.Parts[part.Part] = translated
		}
	}

	return result, nil
}

// translateCoords maps relative coordinates on the crop back to relative
// coordinates on the original image.
func translateCoords(
	x, y float32, cropX, cropY, cropHeight, cropWidth, height, width int,
) (float32, float32) {
	xi := clampPixel(int(float32(cropHeight)*x), cropHeight) + cropX
	yi := clampPixel(int(float32(cropWidth)*y), cropWidth) + cropY

	xi = clampPixel(xi, height)
	yi = clampPixel(yi, width)

	return float32(xi) / float32(height), float32(yi) / float32(width)
}

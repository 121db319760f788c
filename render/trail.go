package render

import (
	"image"
	"image/color"

	motionlite "github.com/dtrn/go-motionlite"
	"gocv.io/x/gocv"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the endpoint circle should be
	// the same color as the trail line.  If set to false then use the
	// color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    false,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail draws the movement history of a single body part across the
// estimated frames, oldest first.  Frames where the part was not detected
// are skipped.
func Trail(img *gocv.Mat, history []*motionlite.Human,
	part motionlite.PartIndex, style TrailStyle) {

	circleClr := style.CircleColor

	if style.CircleSame {
		circleClr = style.LineColor
	}

	var points []image.Point

	for _, human := range history {
		if human == nil {
			continue
		}

		bodyPart, found := human.Parts[part]

		if !found {
			continue
		}

		points = append(points, partPoint(bodyPart, img))
	}

	if len(points) < 2 {
		return
	}

	for i := 1; i < len(points); i++ {
		gocv.Line(img, points[i-1], points[i], style.LineColor,
			style.LineThickness)

		if i == len(points)-1 {
			gocv.Circle(img, points[i], style.CircleRadius, circleClr, -1)
		}
	}
}

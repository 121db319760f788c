package render

import (
	"image"
	"image/color"

	motionlite "github.com/dtrn/go-motionlite"
	"gocv.io/x/gocv"
)

// boxLabel defines where a text label should be rendered on the image
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// poseRect returns the pixel bounding box spanning every detected part
func poseRect(human *motionlite.Human, img *gocv.Mat) (image.Rectangle, bool) {
	first := true

	var rect image.Rectangle

	for _, part := range human.Parts {
		pt := partPoint(part, img)

		if first {
			rect = image.Rectangle{Min: pt, Max: pt}
			first = false

			continue
		}

		if pt.X < rect.Min.X {
			rect.Min.X = pt.X
		}

		if pt.X > rect.Max.X {
			rect.Max.X = pt.X
		}

		if pt.Y < rect.Min.Y {
			rect.Min.Y = pt.Y
		}

		if pt.Y > rect.Max.Y {
			rect.Max.Y = pt.Y
		}
	}

	return rect, !first
}

// PoseBox renders a bounding box around the detected human with a text
// label above it
func PoseBox(img *gocv.Mat, human *motionlite.Human, text string,
	boxColor color.RGBA, font Font, lineThickness int) {

	if human == nil {
		return
	}

	rect, ok := poseRect(human, img)

	if !ok {
		return
	}

	gocv.Rectangle(img, rect, boxColor, lineThickness)

	if text == "" {
		return
	}

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	label := boxLabel{
		rect: image.Rect(centerX-textSize.X/2-font.LeftPad,
			rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, rect.Min.Y),
		clr:     boxColor,
		text:    text,
		textPos: image.Pt(centerX-textSize.X/2, rect.Min.Y-font.BottomPad),
	}

	// draw box the text gets written on
	gocv.Rectangle(img, label.rect, label.clr, -1)

	// Draw the label over box
	gocv.PutTextWithParams(img, label.text, label.textPos,
		font.Face, font.Scale, font.Color, font.Thickness,
		font.LineType, false)
}

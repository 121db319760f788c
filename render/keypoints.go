package render

import (
	"image"

	motionlite "github.com/dtrn/go-motionlite"
	"gocv.io/x/gocv"
)

// skeleton defines the body part pairs to draw limb lines between
var skeleton = [][2]motionlite.PartIndex{
	{motionlite.Neck, motionlite.ShoulderR},
	{motionlite.Neck, motionlite.ShoulderL},
	{motionlite.ShoulderR, motionlite.ElbowR},
	{motionlite.ElbowR, motionlite.WristR},
	{motionlite.ShoulderL, motionlite.ElbowL},
	{motionlite.ElbowL, motionlite.WristL},
	{motionlite.Neck, motionlite.HipR},
	{motionlite.HipR, motionlite.KneeR},
	{motionlite.KneeR, motionlite.AnkleR},
	{motionlite.Neck, motionlite.HipL},
	{motionlite.HipL, motionlite.KneeL},
	{motionlite.KneeL, motionlite.AnkleL},
	{motionlite.Neck, motionlite.Nose},
	{motionlite.Nose, motionlite.EyeR},
	{motionlite.EyeR, motionlite.EarR},
	{motionlite.Nose, motionlite.EyeL},
	{motionlite.EyeL, motionlite.EarL},
}

// partPoint converts a body part's relative coordinates to a pixel point on
// the image.  Part coordinates store the vertical offset in X and the
// horizontal offset in Y.
func partPoint(part motionlite.BodyPart, img *gocv.Mat) image.Point {
	return image.Pt(
		int(part.Y*float32(img.Cols())),
		int(part.X*float32(img.Rows())),
	)
}

// Pose renders the estimated human skeleton on the image.  Limb lines are
// drawn between pairs of detected parts and a circle marks each joint.
func Pose(img *gocv.Mat, human *motionlite.Human, lineThickness int) {
	if human == nil {
		return
	}

	for i, limb := range skeleton {
		from, hasFrom := human.Parts[limb[0]]
		to, hasTo := human.Parts[limb[1]]

		if !hasFrom || !hasTo {
			continue
		}

		gocv.Line(img, partPoint(from, img), partPoint(to, img),
			limbColors[i], lineThickness)
	}

	for _, part := range human.Parts {
		gocv.Circle(img, partPoint(part, img), 3, partColors[part.Part], -1)
	}
}

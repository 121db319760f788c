package motion

import (
	"math"

	motionlite "github.com/dtrn/go-motionlite"
)

// crossingPairs lists the left/right body part pairs checked for crossing.
// The first entry of each pair is the left-side part.
var crossingPairs = [][2]motionlite.PartIndex{
	{motionlite.EyeL, motionlite.EyeR},
	{motionlite.EarL, motionlite.EarR},
	{motionlite.ShoulderL, motionlite.ShoulderR},
	{motionlite.ElbowL, motionlite.ElbowR},
	{motionlite.WristL, motionlite.WristR},
	{motionlite.HipL, motionlite.HipR},
	{motionlite.KneeL, motionlite.KneeR},
	{motionlite.AnkleL, motionlite.AnkleR},
}

func partDistance(a, b motionlite.BodyPart) float32 {
	return float32(math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y)))
}

func partHorizontalDistance(a, b motionlite.BodyPart) float32 {
	diff := a.Y - b.Y

	if diff < 0 {
		return -diff
	}

	return diff
}

// bodySize returns the longer side of the axis-aligned bounding box spanning
// every part of the human.
func bodySize(human *motionlite.Human) float32 {
	first := true

	var x1, x2, y1, y2 float32

	for _, part := range human.Parts {
		if first {
			x1, x2 = part.X, part.X
			y1, y2 = part.Y, part.Y
			first = false

			continue
		}

		if part.X < x1 {
			x1 = part.X
		}

		if part.X > x2 {
			x2 = part.X
		}

		if part.Y < y1 {
			y1 = part.Y
		}

		if part.Y > y2 {
			y2 = part.Y
		}
	}

	height := x2 - x1
	width := y2 - y1

	if height > width {
		return height
	}

	return width
}

// AntiCrossing removes left/right part pairs from target that appear to have
// swapped sides relative to the neighboring frames.  left and right are the
// estimates for the adjacent frames and may be nil at sequence boundaries.
// The returned human is a fresh copy; target is not modified.
func AntiCrossing(
	target, left, right *motionlite.Human,
) *motionlite.Human {
	result := target.Clone()

	if len(target.Parts) == 0 {
		return result
	}

	size := bodySize(target)

	for _, pair := range crossingPairs {
		t0, hasT0 := target.Parts[pair[0]]
		t1, hasT1 := target.Parts[pair[1]]

		if !hasT0 && !hasT1 {
			continue
		}

		var leftCross, rightCross bool

		for _, side := range []*motionlite.Human{left, right} {
			if side == nil {
				continue
			}

			s0, hasS0 := side.Parts[pair[0]]
			s1, hasS1 := side.Parts[pair[1]]

			if hasT0 && hasT1 {
				if hasS0 && !leftCross &&
					partDistance(t0, s0) > 4*partDistance(t0, t1) &&
					partHorizontalDistance(t0, s0) > 8*partHorizontalDistance(t0, t1) {
					leftCross = true
				}

				if hasS1 && !rightCross &&
					partDistance(t1, s1) > 4*partDistance(t0, t1) &&
					partHorizontalDistance(t1, s1) > 8*partHorizontalDistance(t0, t1) {
					rightCross = true
				}

				if hasS0 && !rightCross &&
					partDistance(t0, t1)*8 < size &&
					partHorizontalDistance(t0, t1)*16 < size &&
					partDistance(t0, s0)*4 < size &&
					partHorizontalDistance(t0, s0)*8 < size {
					rightCross = true
				}

				if hasS1 && !leftCross &&
					partDistance(t0, t1)*8 < size &&
					partHorizontalDistance(t0, t1)*16 < size &&
					partDistance(t1, s1)*4 < size &&
					partHorizontalDistance(t1, s1)*8 < size {
					leftCross = true
				}

				if hasS0 && hasS1 &&
					partDistance(t0, t1) > 3*partDistance(t0, s1) &&
					partDistance(t0, t1) > 3*partDistance(t1, s0) &&
					partHorizontalDistance(t0, t1) > 6*partHorizontalDistance(t0, s1) &&
					partHorizontalDistance(t0, t1) > 6*partHorizontalDistance(t1, s0) {
					leftCross = true
					rightCross = true
				}
			} else if hasT0 {
				if hasS0 && hasS1 && !leftCross &&
					partDistance(t0, s0) > 3.2*partDistance(t0, s1) &&
					partHorizontalDistance(t0, s0) > 6.4*partHorizontalDistance(t0, s1) {
					leftCross = true
				}
			} else {
				if hasS0 && hasS1 && !rightCross &&
					partDistance(t1, s1) > 3.2*partDistance(t1, s0) &&
					partHorizontalDistance(t1, s1) > 6.4*partHorizontalDistance(t1, s0) {
					rightCross = true
				}
			}

			if leftCross && rightCross {
				break
			}
		}

		if leftCross {
			delete(result.Parts, pair[0])
		}

		if rightCross {
			delete(result.Parts, pair[1])
		}
	}

	return result
}

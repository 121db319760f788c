// Package motion turns per-frame still estimations into temporally coherent
// single person poses.  It fills missing keypoints by interpolating through
// neighboring frames, recovers low resolution keypoints with zoomed
// re-estimation, suppresses left/right limb swaps, and scores motions against
// a reference.
package motion

import (
	"fmt"
	"math"

	motionlite "github.com/dtrn/go-motionlite"
)

// FuzzCallback resolves a frame relative to the target frame.  left selects
// the side and relativePos the distance; relativePos 0 addresses the target
// itself.  The first return value reports whether the frame is in bounds.
// The human may be nil when the person is absent from the frame.
type FuzzCallback func(relativePos int, left bool) (bool, *motionlite.Human, error)

// relativeRecipe lists anchor to target pairs tried when the target frame
// already has the anchor.  Ordered by decreasing geometric reliability.
var relativeRecipe = [][2]motionlite.PartIndex{
	// same name
	{motionlite.EyeR, motionlite.EyeL},
	{motionlite.EyeL, motionlite.EyeR},
	{motionlite.ShoulderR, motionlite.ShoulderL},
	{motionlite.ShoulderL, motionlite.ShoulderR},
	{motionlite.EarR, motionlite.EarL},
	{motionlite.EarL, motionlite.EarR},
	{motionlite.HipR, motionlite.HipL},
	{motionlite.HipL, motionlite.HipR},
	// same side / both no side
	{motionlite.EyeR, motionlite.EarR},
	{motionlite.EyeL, motionlite.EarL},
	{motionlite.KneeR, motionlite.AnkleR},
	{motionlite.KneeL, motionlite.AnkleL},
	{motionlite.ShoulderR, motionlite.HipR},
	{motionlite.ShoulderL, motionlite.HipL},
	{motionlite.HipR, motionlite.KneeR},
	{motionlite.HipL, motionlite.KneeL},
	{motionlite.KneeR, motionlite.HipR},
	{motionlite.KneeL, motionlite.HipL},
	{motionlite.HipR, motionlite.ShoulderR},
	{motionlite.HipL, motionlite.ShoulderL},
	{motionlite.AnkleR, motionlite.KneeR},
	{motionlite.AnkleL, motionlite.KneeL},
	{motionlite.EarR, motionlite.EyeR},
	{motionlite.EarL, motionlite.EyeL},
	{motionlite.ShoulderR, motionlite.ElbowR},
	{motionlite.ShoulderL, motionlite.ElbowL},
	{motionlite.ElbowR, motionlite.ShoulderR},
	{motionlite.ElbowL, motionlite.ShoulderL},
	{motionlite.Nose, motionlite.Neck},
	{motionlite.Neck, motionlite.Nose},
	{motionlite.ElbowR, motionlite.WristR},
	{motionlite.ElbowL, motionlite.WristL},
	{motionlite.WristR, motionlite.ElbowR},
	{motionlite.WristL, motionlite.ElbowL},
	// side to no side
	{motionlite.EyeR, motionlite.Nose},
	{motionlite.EyeL, motionlite.Nose},
	{motionlite.EarR, motionlite.Nose},
	{motionlite.EarL, motionlite.Nose},
	{motionlite.ShoulderR, motionlite.Neck},
	{motionlite.ShoulderL, motionlite.Neck},
	{motionlite.EyeR, motionlite.Neck},
	{motionlite.EyeL, motionlite.Neck},
	{motionlite.EarR, motionlite.Neck},
	{motionlite.EarL, motionlite.Neck},
	{motionlite.HipR, motionlite.Neck},
	{motionlite.HipL, motionlite.Neck},
	// no side to side
	{motionlite.Neck, motionlite.ShoulderR},
	{motionlite.Neck, motionlite.ShoulderL},
	{motionlite.Nose, motionlite.EarR},
	{motionlite.Nose, motionlite.EarL},
	{motionlite.Nose, motionlite.EyeR},
	{motionlite.Nose, motionlite.EyeL},
	{motionlite.Neck, motionlite.EarR},
	{motionlite.Neck, motionlite.EarL},
	{motionlite.Neck, motionlite.EyeR},
	{motionlite.Neck, motionlite.EyeL},
	// different sides
	{motionlite.EyeR, motionlite.EarL},
	{motionlite.EyeL, motionlite.EarR},
	{motionlite.ShoulderR, motionlite.HipL},
	{motionlite.ShoulderL, motionlite.HipR},
	{motionlite.HipR, motionlite.ShoulderL},
	{motionlite.HipL, motionlite.ShoulderR},
	{motionlite.EarR, motionlite.EyeL},
	{motionlite.EarL, motionlite.EyeR},
}

// absoluteRecipe lists parts tried by direct interpolation between the two
// neighboring frames, in priority order.
var absoluteRecipe = []motionlite.PartIndex{
	motionlite.AnkleR,
	motionlite.AnkleL,
	motionlite.Neck,
	motionlite.ShoulderR,
	motionlite.ShoulderL,
	motionlite.HipR,
	motionlite.HipL,
	motionlite.KneeR,
	motionlite.KneeL,
	motionlite.Nose,
	motionlite.EyeR,
	motionlite.EyeL,
	motionlite.EarR,
	motionlite.EarL,
	motionlite.ElbowR,
	motionlite.ElbowL,
	motionlite.WristR,
	motionlite.WristL,
}

// FuzzRange returns the inclusive left and right frame bounds fuzz could
// consult for the frame at pos in a sequence of length frames.  With a zero
// fuzzRange both bounds equal pos.
func FuzzRange(pos, length, fuzzRange int) (int, int, error) {
	if length <= 0 {
		return 0, 0, fmt.Errorf("%w: sequence length %d", motionlite.ErrInvalidArgument, length)
	}

	if pos < 0 || pos >= length {
		return 0, 0, fmt.Errorf("%w: frame %d of %d", motionlite.ErrInvalidArgument, pos, length)
	}

	l := pos
	r := pos

	if fuzzRange != 0 {
		if pos >= fuzzRange-1 {
			l = pos - (fuzzRange - 1)
		} else {
			l = 0
		}

		if length-pos > fuzzRange-1 {
			r = pos + (fuzzRange - 1)
		} else {
			r = length - 1
		}
	}

	return l, r, nil
}

func hasParts(human *motionlite.Human, parts []motionlite.PartIndex) bool {
	for _, part := range parts {
		if !human.Has(part) {
			return false
		}
	}

	return true
}

// searchForParts finds the nearest left frame containing all parts, then the
// nearest right frame within the remaining range.  A (0, 0) result means no
// usable pair exists.  Hitting a sequence bound stops the scan on that side.
func searchForParts(fuzzRange int, parts []motionlite.PartIndex,
	callback FuzzCallback) (int, int, error) {

	if fuzzRange < 2 {
		return 0, 0, nil
	}

	found := false
	loff := 1

	for ; loff < fuzzRange; loff++ {
		valid, human, err := callback(loff, true)

		if err != nil {
			return 0, 0, err
		}

		if !valid {
			found = false
			break
		}

		if human != nil && hasParts(human, parts) {
			found = true
			break
		}
	}

	if !found {
		return 0, 0, nil
	}

	found = false
	roff := 1

	for ; roff <= fuzzRange-loff; roff++ {
		valid, human, err := callback(roff, false)

		if err != nil {
			return 0, 0, err
		}

		if !valid {
			found = false
			break
		}

		if human != nil && hasParts(human, parts) {
			found = true
			break
		}
	}

	if !found {
		return 0, 0, nil
	}

	return loff, roff, nil
}

func relativeFuzzScore(loff, roff int, left, right, target *motionlite.Human,
	anchor, part motionlite.PartIndex) float32 {

	score := float32(1)

	score *= left.Parts[anchor].Score
	score *= left.Parts[part].Score
	score *= right.Parts[anchor].Score
	score *= right.Parts[part].Score
	score *= target.Parts[anchor].Score

	return score / float32(loff+roff)
}

func absoluteFuzzScore(loff, roff int, left, right *motionlite.Human,
	part motionlite.PartIndex) float32 {

	score := float32(1) / 3

	score *= left.Parts[part].Score
	score *= right.Parts[part].Score

	return score / float32(loff+roff)
}

func relativeFuzzPart(loff, roff int, left, right, target *motionlite.Human,
	anchor, part motionlite.PartIndex, score float32) motionlite.BodyPart {

	leftAnchor := left.Parts[anchor]
	leftTarget := left.Parts[part]

	xLeftDiff := leftTarget.X - leftAnchor.X
	yLeftDiff := leftTarget.Y - leftAnchor.Y

	var leftAngle float32

	if yLeftDiff != 0 || xLeftDiff != 0 {
		leftAngle = float32(math.Atan2(float64(yLeftDiff), float64(xLeftDiff)))
	}

	leftLength := float32(math.Sqrt(
		float64(xLeftDiff*xLeftDiff + yLeftDiff*yLeftDiff)))

	rightAnchor := right.Parts[anchor]
	rightTarget := right.Parts[part]

	xRightDiff := rightTarget.X - rightAnchor.X
	yRightDiff := rightTarget.Y - rightAnchor.Y

	var rightAngle float32

	if yRightDiff != 0 || xRightDiff != 0 {
		rightAngle = float32(math.Atan2(float64(yRightDiff), float64(xRightDiff)))
	}

	rightLength := float32(math.Sqrt(
		float64(xRightDiff*xRightDiff + yRightDiff*yRightDiff)))

	// a degenerate side adopts the other side's angle
	if yLeftDiff == 0 && xLeftDiff == 0 && (yRightDiff != 0 || xRightDiff != 0) {
		leftAngle = rightAngle
	} else if yRightDiff == 0 && xRightDiff == 0 && (yLeftDiff != 0 || xLeftDiff != 0) {
		rightAngle = leftAngle
	}

	// keep the two angles on the same side of the branch cut before averaging
	if leftAngle > 0 && rightAngle < 0 {
		if leftAngle-rightAngle > math.Pi {
			rightAngle += 2 * math.Pi
		}
	} else if leftAngle < 0 && rightAngle > 0 {
		if rightAngle-leftAngle > math.Pi {
			leftAngle += 2 * math.Pi
		}
	}

	lf := float32(loff)
	rf := float32(roff)
	tf := lf + rf

	angle := leftAngle/tf*rf + rightAngle/tf*lf
	length := leftLength/tf*rf + rightLength/tf*lf

	anchorPart := target.Parts[anchor]
	x := anchorPart.X + length*float32(math.Cos(float64(angle)))
	y := anchorPart.Y + length*float32(math.Sin(float64(angle)))

	return motionlite.BodyPart{Part: part, X: x, Y: y, Score: score}
}

func absoluteFuzzPart(loff, roff int, left, right *motionlite.Human,
	part motionlite.PartIndex, score float32) motionlite.BodyPart {

	leftPart := left.Parts[part]
	rightPart := right.Parts[part]

	lf := float32(loff)
	rf := float32(roff)
	tf := lf + rf

	x := leftPart.X/tf*rf + rightPart.X/tf*lf
	y := leftPart.Y/tf*rf + rightPart.Y/tf*lf

	return motionlite.BodyPart{Part: part, X: x, Y: y, Score: score}
}

// Fuzz fills missing body parts of the target frame by greedy best-score
// interpolation over the neighboring frames.  Relative recipes extrapolate a
// missing part from an anchor the target already has; absolute recipes
// interpolate the part directly between the two neighbors and can construct a
// new human when the target frame has none.  The distance between the left
// and right neighbor used by any recipe is at most fuzzRange, so a fuzzRange
// of 0 or 1 leaves the target unchanged.
func Fuzz(fuzzRange int, callback FuzzCallback) (*motionlite.Human, error) {
	valid, original, err := callback(0, false)

	if err != nil {
		return nil, err
	}

	if !valid {
		return nil, fmt.Errorf("%w: fuzz target out of range", motionlite.ErrInvariant)
	}

	var target *motionlite.Human

	if original != nil {
		target = original.Clone()
	}

	for {
		var (
			useRelative, useAbsolute bool

			relLoff, relRoff int
			relRule          [2]motionlite.PartIndex

			absLoff, absRoff int
			absRule          motionlite.PartIndex
		)

		score := float32(-1)

		if target != nil {
			for _, rule := range relativeRecipe {
				if target.Has(rule[1]) || !target.Has(rule[0]) {
					continue
				}

				loff, roff, err := searchForParts(fuzzRange, rule[:], callback)

				if err != nil {
					return nil, err
				}

				if loff == 0 {
					continue
				}

				_, left, err := callback(loff, true)

				if err != nil {
					return nil, err
				}

				_, right, err := callback(roff, false)

				if err != nil {
					return nil, err
				}

				current := relativeFuzzScore(loff, roff, left, right, target,
					rule[0], rule[1])

				if current > score {
					score = current
					useRelative = true
					relLoff, relRoff = loff, roff
					relRule = rule
				}
			}
		}

		if !useRelative {
			for _, rule := range absoluteRecipe {
				if target != nil && target.Has(rule) {
					continue
				}

				loff, roff, err := searchForParts(fuzzRange,
					[]motionlite.PartIndex{rule}, callback)

				if err != nil {
					return nil, err
				}

				if loff == 0 {
					continue
				}

				_, left, err := callback(loff, true)

				if err != nil {
					return nil, err
				}

				_, right, err := callback(roff, false)

				if err != nil {
					return nil, err
				}

				current := absoluteFuzzScore(loff, roff, left, right, rule)

				if current > score {
					score = current
					useAbsolute = true
					absLoff, absRoff = loff, roff
					absRule = rule
				}
			}
		}

		switch {
		case target != nil && useRelative:
			_, left, err := callback(relLoff, true)

			if err != nil {
				return nil, err
			}

			_, right, err := callback(relRoff, false)

			if err != nil {
				return nil, err
			}

			part := relativeFuzzPart(relLoff, relRoff, left, right, target,
				relRule[0], relRule[1], score)

			target.Parts[relRule[1]] = part
		case useAbsolute:
			_, left, err := callback(absLoff, true)

			if err != nil {
				return nil, err
			}

			_, right, err := callback(absRoff, false)

			if err != nil {
				return nil, err
			}

			part := absoluteFuzzPart(absLoff, absRoff, left, right, absRule, score)

			if target != nil {
				target.Parts[absRule] = part
			} else {
				target = motionlite.NewHuman([]motionlite.BodyPart{part})
			}
		default:
			return target, nil
		}
	}
}

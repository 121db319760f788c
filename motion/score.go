package motion

import (
	"math"

	motionlite "github.com/dtrn/go-motionlite"
	"gonum.org/v1/gonum/floats"
)

// Connection identifies a scored link between two body parts.
type Connection struct {
	From motionlite.PartIndex
	To   motionlite.PartIndex
}

// scoredConnections lists every connection compared between two poses.
var scoredConnections = []Connection{
	{motionlite.ShoulderR, motionlite.ElbowR},
	{motionlite.ShoulderL, motionlite.ElbowL},
	{motionlite.ShoulderR, motionlite.ShoulderL},
	{motionlite.ShoulderR, motionlite.Neck},
	{motionlite.ShoulderL, motionlite.Neck},
	{motionlite.ShoulderR, motionlite.Nose},
	{motionlite.ShoulderL, motionlite.Nose},
	{motionlite.ShoulderR, motionlite.HipR},
	{motionlite.ShoulderL, motionlite.HipL},
	{motionlite.Neck, motionlite.Nose},
	{motionlite.ElbowR, motionlite.WristR},
	{motionlite.ElbowL, motionlite.WristL},
	{motionlite.Nose, motionlite.EyeR},
	{motionlite.Nose, motionlite.EyeL},
	{motionlite.Nose, motionlite.EarR},
	{motionlite.Nose, motionlite.EarL},
	{motionlite.EyeR, motionlite.EyeL},
	{motionlite.EarR, motionlite.EarL},
	{motionlite.HipR, motionlite.HipL},
	{motionlite.HipR, motionlite.KneeR},
	{motionlite.HipL, motionlite.KneeL},
	{motionlite.KneeR, motionlite.AnkleR},
	{motionlite.KneeL, motionlite.AnkleL},
}

// yRangeExcluded marks parts whose vertical spread is too volatile to gauge
// the pose height from.
var yRangeExcluded = map[motionlite.PartIndex]bool{
	motionlite.WristR: true,
	motionlite.WristL: true,
	motionlite.ElbowR: true,
	motionlite.ElbowL: true,
	motionlite.AnkleR: true,
	motionlite.AnkleL: true,
	motionlite.KneeR:  true,
	motionlite.KneeL:  true,
}

func coordRange(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	return floats.Max(values) - floats.Min(values)
}

// sigRanges returns the characteristic x and y spans of the pose.  The y span
// ignores limb extremities.  A zero span on one axis borrows the other.
func sigRanges(human *motionlite.Human) (float64, float64) {
	var xs, ys []float64

	for _, part := range human.Parts {
		xs = append(xs, float64(part.X))

		if !yRangeExcluded[part.Part] {
			ys = append(ys, float64(part.Y))
		}
	}

	xRange := coordRange(xs)
	yRange := coordRange(ys)

	if xRange == 0 {
		xRange = yRange
	} else if yRange == 0 {
		yRange = xRange
	}

	return xRange, yRange
}

func angleDiff(x1, y1, x2, y2 float64) float64 {
	if (x1 == 0 && y1 == 0) || (x2 == 0 && y2 == 0) {
		return 0
	}

	diff := math.Abs(math.Atan2(y1, x1) - math.Atan2(y2, x2))

	if 2*math.Pi-diff < diff {
		diff = 2 * math.Pi - diff
	}

	return diff
}

// connectionVectors returns the scaled displacement vectors of a connection
// on both poses.  The x axis is stretched fourfold so vertical agreement
// dominates.
func connectionVectors(
	conn Connection, human1, human2 *motionlite.Human,
	xRange1, yRange1, xRange2, yRange2 float64,
) (x1, y1, x2, y2 float64) {
	from1 := human1.Parts[conn.From]
	to1 := human1.Parts[conn.To]
	from2 := human2.Parts[conn.From]
	to2 := human2.Parts[conn.To]

	x1 = float64(to1.X-from1.X) * 4 / xRange1
	y1 = float64(to1.Y-from1.Y) / yRange1
	x2 = float64(to2.X-from2.X) * 4 / xRange2
	y2 = float64(to2.Y-from2.Y) / yRange2

	return x1, y1, x2, y2
}

func angleScore(
	conn Connection, human1, human2 *motionlite.Human,
	xRange1, yRange1, xRange2, yRange2 float64,
) float64 {
	if xRange1 == 0 || yRange1 == 0 || xRange2 == 0 || yRange2 == 0 {
		return 0
	}

	x1, y1, x2, y2 := connectionVectors(conn, human1, human2,
		xRange1, yRange1, xRange2, yRange2)

	return angleDiff(x1, y1, x2, y2) / math.Pi
}

func distanceScore(
	conn Connection, human1, human2 *motionlite.Human,
	xRange1, yRange1, xRange2, yRange2 float64,
) float64 {
	if xRange1 == 0 || yRange1 == 0 || xRange2 == 0 || yRange2 == 0 {
		return 0
	}

	x1, y1, x2, y2 := connectionVectors(conn, human1, human2,
		xRange1, yRange1, xRange2, yRange2)

	d1 := math.Hypot(x1, y1)
	d2 := math.Hypot(x2, y2)

	if d1+d2 <= 0 {
		return 0
	}

	return math.Abs(d2-d1) / (d1 + d2)
}

// Score compares the pose of human2 against human1 connection by
// connection.  Each present connection maps to a similarity from 0 to 128,
// higher meaning closer agreement.
func Score(human1, human2 *motionlite.Human) map[Connection]uint8 {
	scores := make(map[Connection]uint8)

	if human1 == nil || human2 == nil {
		return scores
	}

	xRange1, yRange1 := sigRanges(human1)
	xRange2, yRange2 := sigRanges(human2)

	for _, conn := range scoredConnections {
		if !human1.Has(conn.From) || !human1.Has(conn.To) ||
			!human2.Has(conn.From) || !human2.Has(conn.To) {
			continue
		}

		angle := angleScore(conn, human1, human2,
			xRange1, yRange1, xRange2, yRange2)
		distance := distanceScore(conn, human1, human2,
			xRange1, yRange1, xRange2, yRange2)

		scores[conn] = uint8(128 - math.Round((angle+distance)/2*128))
	}

	return scores
}

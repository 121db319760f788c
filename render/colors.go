package render

import (
	"image/color"

	motionlite "github.com/dtrn/go-motionlite"
)

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}
	Pink   = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}

	// posePalette are the colors used for the skeleton/pose
	posePalette = []color.RGBA{
		{R: 255, G: 128, B: 0, A: 255},
		{R: 255, G: 153, B: 51, A: 255},
		{R: 255, G: 178, B: 102, A: 255},
		{R: 230, G: 230, B: 0, A: 255},
		{R: 255, G: 153, B: 255, A: 255},
		{R: 153, G: 204, B: 255, A: 255},
		{R: 255, G: 102, B: 255, A: 255},
		{R: 255, G: 51, B: 255, A: 255},
		{R: 102, G: 178, B: 255, A: 255},
		{R: 51, G: 153, B: 255, A: 255},
		{R: 255, G: 153, B: 153, A: 255},
		{R: 255, G: 102, B: 102, A: 255},
		{R: 255, G: 51, B: 51, A: 255},
		{R: 153, G: 255, B: 153, A: 255},
		{R: 102, G: 255, B: 102, A: 255},
		{R: 51, G: 255, B: 51, A: 255},
		{R: 0, G: 255, B: 0, A: 255},
		{R: 0, G: 0, B: 255, A: 255},
		{R: 255, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}

	// partColors are the colors used to render the joint circles, one per
	// body part index
	partColors = map[motionlite.PartIndex]color.RGBA{
		motionlite.Nose:      posePalette[16],
		motionlite.Neck:      posePalette[16],
		motionlite.ShoulderR: posePalette[9],
		motionlite.ElbowR:    posePalette[9],
		motionlite.WristR:    posePalette[9],
		motionlite.ShoulderL: posePalette[9],
		motionlite.ElbowL:    posePalette[9],
		motionlite.WristL:    posePalette[9],
		motionlite.HipR:      posePalette[0],
		motionlite.KneeR:     posePalette[0],
		motionlite.AnkleR:    posePalette[0],
		motionlite.HipL:      posePalette[0],
		motionlite.KneeL:     posePalette[0],
		motionlite.AnkleL:    posePalette[0],
		motionlite.EyeR:      posePalette[16],
		motionlite.EyeL:      posePalette[16],
		motionlite.EarR:      posePalette[16],
		motionlite.EarL:      posePalette[16],
	}

	// limbColors correspond to the lines drawn between the key points
	// on the skeleton/pose, one per skeleton limb
	limbColors = []color.RGBA{
		posePalette[7], posePalette[7],
		posePalette[9], posePalette[9], posePalette[9], posePalette[9],
		posePalette[0], posePalette[0], posePalette[0],
		posePalette[0], posePalette[0], posePalette[0],
		posePalette[16], posePalette[16], posePalette[16],
		posePalette[16], posePalette[16],
	}
)

package motionlite

// PartIndex identifies a keypoint of the human body
type PartIndex int

// Body part indices follow the COCO ordering with an added neck point
const (
	Nose PartIndex = iota
	Neck
	ShoulderR
	ElbowR
	WristR
	ShoulderL
	ElbowL
	WristL
	HipR
	KneeR
	AnkleR
	HipL
	KneeL
	AnkleL
	EyeR
	EyeL
	EarR
	EarL
	// PartIndexEnd is the sentinel marking the number of valid parts
	PartIndexEnd
)

var partNames = [PartIndexEnd]string{
	"nose", "neck",
	"shoulder_r", "elbow_r", "wrist_r",
	"shoulder_l", "elbow_l", "wrist_l",
	"hip_r", "knee_r", "ankle_r",
	"hip_l", "knee_l", "ankle_l",
	"eye_r", "eye_l", "ear_r", "ear_l",
}

// String returns the lowercase name of the body part
func (p PartIndex) String() string {
	if p < 0 || p >= PartIndexEnd {
		return "end"
	}
	return partNames[p]
}

// BodyPart defines a single detected keypoint.  X is the normalized top-down
// coordinate and Y the normalized left-right coordinate, both in [0,1).
// Score is the confidence of the estimation in [0,1].
type BodyPart struct {
	// Part is the index of the body part
	Part PartIndex
	// X is the top-down coordinate
	X float32
	// Y is the left-right coordinate
	Y float32
	// Score is the confidence of the estimation
	Score float32
}

// Human defines a single person's pose as a mapping from part index to its
// detected keypoint
type Human struct {
	// Parts maps each part index to its body part
	Parts map[PartIndex]BodyPart
}

// NewHuman creates a Human from a list of body parts.  When two parts share
// the same part index the later one wins.
func NewHuman(parts []BodyPart) *Human {
	h := &Human{
		Parts: make(map[PartIndex]BodyPart, len(parts)),
	}

	for _, part := range parts {
		h.Parts[part.Part] = part
	}

	return h
}

// Has reports whether the human contains the given body part
func (h *Human) Has(part PartIndex) bool {
	_, ok := h.Parts[part]
	return ok
}

// Clone returns an independent copy of the human
func (h *Human) Clone() *Human {
	c := &Human{
		Parts: make(map[PartIndex]BodyPart, len(h.Parts)),
	}

	for idx, part := range h.Parts {
		c.Parts[idx] = part
	}

	return c
}

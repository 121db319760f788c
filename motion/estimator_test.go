package motion

import (
	"errors"
	"sync"
	"testing"

	motionlite "github.com/dtrn/go-motionlite"
)

// countingEstimator returns a fixed pose and counts how often it ran
type countingEstimator struct {
	mu    sync.Mutex
	calls int
	human *motionlite.Human
	err   error
}

func (c *countingEstimator) Estimate(img *motionlite.Image) ([]*motionlite.Human, error) {
	c.mu.Lock()
	c.calls += 1
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}

	if c.human == nil {
		return nil, nil
	}

	return []*motionlite.Human{c.human.Clone()}, nil
}

func (c *countingEstimator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

func countingPool(t *testing.T, size int, human *motionlite.Human) (*motionlite.EstimatorPool, []*countingEstimator) {
	t.Helper()

	var stills []*countingEstimator

	pool, err := motionlite.NewEstimatorPool(size,
		func(i int) (motionlite.StillEstimator, error) {
			still := &countingEstimator{human: human}
			stills = append(stills, still)

			return still, nil
		}, nil)

	if err != nil {
		t.Fatalf("NewEstimatorPool failed: %v", err)
	}

	return pool, stills
}

func totalCalls(stills []*countingEstimator) int {
	total := 0

	for _, still := range stills {
		total += still.count()
	}

	return total
}

// sequenceCallback serves synthetic frame images and records access flags
type sequenceCallback struct {
	mu         sync.Mutex
	length     int
	lastAccess map[int][]bool
}

func newSequenceCallback(length int) *sequenceCallback {
	return &sequenceCallback{
		length:     length,
		lastAccess: make(map[int][]bool),
	}
}

func (s *sequenceCallback) get(pos int, lastAccess bool) (*motionlite.Image, error) {
	s.mu.Lock()
	s.lastAccess[pos] = append(s.lastAccess[pos], lastAccess)
	s.mu.Unlock()

	if pos < 0 || pos >= s.length {
		return nil, errors.New("frame out of range")
	}

	img, err := motionlite.NewImage(4, 4, 1)

	if err != nil {
		return nil, err
	}

	img.Data[0] = float32(pos)

	return img, nil
}

func standingPose() *motionlite.Human {
	return motionlite.NewHuman([]motionlite.BodyPart{
		{Part: motionlite.Nose, X: 0.2, Y: 0.5, Score: 0.9},
		{Part: motionlite.Neck, X: 0.3, Y: 0.5, Score: 0.9},
		{Part: motionlite.HipR, X: 0.5, Y: 0.45, Score: 0.9},
		{Part: motionlite.HipL, X: 0.5, Y: 0.55, Score: 0.9},
	})
}

func TestEstimateValidation(t *testing.T) {
	pool, _ := countingPool(t, 1, standingPose())
	callback := newSequenceCallback(5)
	est := NewEstimator()

	tests := []struct {
		name   string
		pos    int
		length int
		opts   EstimateOptions
	}{
		{"negative pos", -1, 5, EstimateOptions{FuzzRange: 1}},
		{"pos past end", 5, 5, EstimateOptions{FuzzRange: 1}},
		{"zero length", 0, 0, EstimateOptions{FuzzRange: 1}},
		{"negative fuzz range", 2, 5, EstimateOptions{FuzzRange: -1}},
		{"zoom without rate", 2, 5, EstimateOptions{FuzzRange: 1, Zoom: true}},
		{"negative zoom range", 2, 5, EstimateOptions{
			FuzzRange: 1, Zoom: true, ZoomRate: 1, ZoomRange: -1}},
	}

	for _, tc := range tests {
		_, err := est.Estimate(tc.pos, tc.length, tc.opts, pool, callback.get)

		if !errors.Is(err, motionlite.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}

	if _, err := est.Estimate(2, 5, EstimateOptions{FuzzRange: 1}, nil,
		callback.get); !errors.Is(err, motionlite.ErrInvalidArgument) {
		t.Errorf("nil pool: expected ErrInvalidArgument, got %v", err)
	}
}

func TestEstimateSingleHandle(t *testing.T) {
	pool, stills := countingPool(t, 1, standingPose())
	callback := newSequenceCallback(5)
	est := NewEstimator()

	humans, err := est.Estimate(2, 5, EstimateOptions{FuzzRange: 2}, pool,
		callback.get)

	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	human, found := humans[0]

	if !found || human == nil {
		t.Fatal("expected an estimated human at index 0")
	}

	if !human.Has(motionlite.Nose) {
		t.Error("expected estimated pose to carry the nose")
	}

	// only the target frame runs when it has all recipe anchors satisfied
	// by its own estimate or none of the neighbors improve on it
	if totalCalls(stills) == 0 {
		t.Fatal("estimator never ran")
	}

	before := totalCalls(stills)

	// estimates are cached, a repeat estimation runs nothing new
	if _, err := est.Estimate(2, 5, EstimateOptions{FuzzRange: 2}, pool,
		callback.get); err != nil {
		t.Fatalf("repeat Estimate failed: %v", err)
	}

	if got := totalCalls(stills); got != before {
		t.Errorf("expected no further estimator calls, got %d more", got-before)
	}
}

func TestEstimateSingleHandleLastAccess(t *testing.T) {
	pool, _ := countingPool(t, 1, standingPose())
	callback := newSequenceCallback(5)
	est := NewEstimator()

	if _, err := est.Estimate(2, 5, EstimateOptions{FuzzRange: 1}, pool,
		callback.get); err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	// without zooming every image read is final
	for pos, flags := range callback.lastAccess {
		for _, last := range flags {
			if !last {
				t.Errorf("frame %d: expected lastAccess read", pos)
			}
		}
	}
}

func TestEstimatePoolFillsWindow(t *testing.T) {
	pool, _ := countingPool(t, 3, standingPose())
	callback := newSequenceCallback(5)
	est := NewEstimator()

	humans, err := est.Estimate(2, 5, EstimateOptions{
		FuzzRange:    2,
		AntiCrossing: true,
	}, pool, callback.get)

	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if humans[0] == nil {
		t.Fatal("expected an estimated human at index 0")
	}

	// the fuzz window plus the anti crossing margin spans the whole
	// sequence here, so every frame is cached
	est.mu.Lock()
	cached := len(est.stillPoses)
	est.mu.Unlock()

	if cached != 5 {
		t.Errorf("expected 5 cached frames, got %d", cached)
	}
}

func TestEstimatePoolPropagatesError(t *testing.T) {
	var stills []*countingEstimator

	pool, err := motionlite.NewEstimatorPool(2,
		func(i int) (motionlite.StillEstimator, error) {
			still := &countingEstimator{err: errors.New("model failure")}
			stills = append(stills, still)

			return still, nil
		}, nil)

	if err != nil {
		t.Fatalf("NewEstimatorPool failed: %v", err)
	}

	callback := newSequenceCallback(5)
	est := NewEstimator()

	_, err = est.Estimate(2, 5, EstimateOptions{FuzzRange: 2}, pool,
		callback.get)

	if !errors.Is(err, motionlite.ErrEstimator) {
		t.Errorf("expected ErrEstimator, got %v", err)
	}
}

func TestEstimateNoHumanFound(t *testing.T) {
	pool, _ := countingPool(t, 1, nil)
	callback := newSequenceCallback(3)
	est := NewEstimator()

	humans, err := est.Estimate(1, 3, EstimateOptions{FuzzRange: 1}, pool,
		callback.get)

	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if len(humans) != 0 {
		t.Errorf("expected empty result, got %d humans", len(humans))
	}
}

func TestEstimateZoomUnzoomedReadsNotFinal(t *testing.T) {
	pool, _ := countingPool(t, 1, standingPose())
	callback := newSequenceCallback(4)
	est := NewEstimator()

	if _, err := est.Estimate(0, 4, EstimateOptions{
		FuzzRange: 1,
		Zoom:      true,
		ZoomRange: 0,
		ZoomRate:  2,
	}, pool, callback.get); err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	// frame 0 is zoom selected, its first read feeds the unzoomed pass and
	// must not be final
	flags := callback.lastAccess[0]

	if len(flags) == 0 {
		t.Fatal("frame 0 never read")
	}

	if flags[0] {
		t.Error("expected first read of a zoom frame to keep the image")
	}
}

func TestEstimateMaxLengths(t *testing.T) {
	pose := motionlite.NewHuman([]motionlite.BodyPart{
		{Part: motionlite.Nose, X: 0.1, Y: 0.5, Score: 0.9},
		{Part: motionlite.Neck, X: 0.9, Y: 0.5, Score: 0.9},
	})

	pool, _ := countingPool(t, 1, pose)
	callback := newSequenceCallback(1)
	est := NewEstimator()

	humans, err := est.Estimate(0, 1, EstimateOptions{
		MaxLengths: []MaxLength{
			{From: motionlite.Nose, To: motionlite.Neck, Max: 0.5},
		},
	}, pool, callback.get)

	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	human := humans[0]

	if human.Has(motionlite.Neck) {
		t.Error("expected overstretched neck to be dropped")
	}

	if !human.Has(motionlite.Nose) {
		t.Error("expected nose to survive")
	}
}

// poseByFrame serves a frame specific pose keyed by the image's first pixel
type poseByFrame struct {
	mu    sync.Mutex
	poses map[int]*motionlite.Human
}

func (p *poseByFrame) Estimate(img *motionlite.Image) ([]*motionlite.Human, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	human := p.poses[int(img.Data[0])]

	if human == nil {
		return nil, nil
	}

	return []*motionlite.Human{human.Clone()}, nil
}

func TestEstimateNeighborAntiCrossing(t *testing.T) {
	// the neighbors carry a stationary wrist pair whose right wrist crosses
	// against the target frame's lone left wrist, so each neighbor loses its
	// right wrist in its own anti-crossing pass and interpolation has nothing
	// to fill the target's right wrist from
	neighbor := motionlite.NewHuman([]motionlite.BodyPart{
		{Part: motionlite.Nose, X: 0.1, Y: 0.5, Score: 0.9},
		{Part: motionlite.WristL, X: 0.5, Y: 0.52, Score: 0.9},
		{Part: motionlite.WristR, X: 0.5, Y: 0.5, Score: 0.9},
	})

	target := motionlite.NewHuman([]motionlite.BodyPart{
		{Part: motionlite.Nose, X: 0.1, Y: 0.5, Score: 0.9},
		{Part: motionlite.WristL, X: 0.5, Y: 0.54, Score: 0.9},
	})

	still := &poseByFrame{poses: map[int]*motionlite.Human{
		0: neighbor,
		1: target,
		2: neighbor,
	}}

	pool, err := motionlite.NewEstimatorPool(1,
		func(i int) (motionlite.StillEstimator, error) {
			return still, nil
		}, nil)

	if err != nil {
		t.Fatalf("NewEstimatorPool failed: %v", err)
	}

	callback := newSequenceCallback(3)
	est := NewEstimator()

	humans, err := est.Estimate(1, 3, EstimateOptions{
		FuzzRange:    2,
		AntiCrossing: true,
	}, pool, callback.get)

	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	human := humans[0]

	if human == nil {
		t.Fatal("expected an estimated human")
	}

	if human.Has(motionlite.WristR) {
		t.Error("expected the neighbors' crossed right wrist to stay out of the result")
	}

	if !human.Has(motionlite.WristL) {
		t.Error("expected the target's left wrist to survive")
	}
}

func TestEstimateReset(t *testing.T) {
	pool, stills := countingPool(t, 1, standingPose())
	callback := newSequenceCallback(3)
	est := NewEstimator()

	if _, err := est.Estimate(1, 3, EstimateOptions{}, pool,
		callback.get); err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	before := totalCalls(stills)

	est.Reset()

	if _, err := est.Estimate(1, 3, EstimateOptions{}, pool,
		callback.get); err != nil {
		t.Fatalf("Estimate after Reset failed: %v", err)
	}

	if got := totalCalls(stills); got <= before {
		t.Error("expected estimator to run again after Reset")
	}
}

package motion

import (
	"fmt"
	"math"
	"sync"

	motionlite "github.com/dtrn/go-motionlite"
)

// MaxLength caps the allowed distance between two connected body parts.
// When the connection stretches past Max the To part is discarded.
type MaxLength struct {
	From motionlite.PartIndex
	To   motionlite.PartIndex
	Max  float32
}

// EstimateOptions control a single frame estimation.
type EstimateOptions struct {
	// FuzzRange is the number of neighboring frames consulted when
	// interpolating missing parts.  Zero disables fuzzing beyond the
	// target frame.
	FuzzRange int
	// MaxLengths lists connection length caps applied to the target frame
	MaxLengths []MaxLength
	// AntiCrossing removes left/right part pairs that appear to have
	// swapped sides relative to the adjacent frames
	AntiCrossing bool
	// Zoom enables crop-based re-estimation on selected frames
	Zoom bool
	// ZoomRange is the number of neighboring frames hinting the crop
	ZoomRange int
	// ZoomRate selects every ZoomRate-th frame for zoom re-estimation
	ZoomRate int
}

// Estimator estimates a single person's pose on frames of a motion
// sequence.  Estimates are cached across calls, so walking a sequence frame
// by frame only runs the underlying still estimators on frames not yet seen.
// Reset discards the caches when switching to a different sequence.
type Estimator struct {
	mu sync.Mutex

	// unzoomedStillPoses caches the initial estimate of frames selected
	// for zoom re-estimation.  A present nil value records that no human
	// was found.
	unzoomedStillPoses map[int]*motionlite.Human

	// stillPoses caches the final single-frame estimate
	stillPoses map[int]*motionlite.Human
}

// NewEstimator returns an Estimator with empty caches
func NewEstimator() *Estimator {
	return &Estimator{
		unzoomedStillPoses: make(map[int]*motionlite.Human),
		stillPoses:         make(map[int]*motionlite.Human),
	}
}

// Reset discards all cached estimates
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.unzoomedStillPoses = make(map[int]*motionlite.Human)
	e.stillPoses = make(map[int]*motionlite.Human)
}

type frameTask struct {
	frame  int
	zoomed bool
}

// schedule tracks the work queues shared by the estimation workers
type schedule struct {
	estimator *Estimator
	cond      *sync.Cond

	length   int
	opts     EstimateOptions
	callback motionlite.ImageCallback

	required []frameTask
	extra    []frameTask

	queuedUnzoomed map[int]bool
	queuedZoomed   map[int]bool

	err error
}

// Estimate estimates the pose at frame pos of a sequence of the given
// length.  The callback supplies frame images on demand; its lastAccess
// argument is true when the estimator will not request that frame's image
// again for this cache generation.  The pool's estimators run concurrently
// when it holds more than one, so the callback must be safe for concurrent
// use.  The result maps person index 0 to the estimated human, or is empty
// when nothing was found.
func (e *Estimator) Estimate(
	pos, length int, opts EstimateOptions,
	pool *motionlite.EstimatorPool, callback motionlite.ImageCallback,
) (map[int]*motionlite.Human, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: sequence length %d",
			motionlite.ErrInvalidArgument, length)
	}

	if pos < 0 || pos >= length {
		return nil, fmt.Errorf("%w: position %d outside sequence of length %d",
			motionlite.ErrInvalidArgument, pos, length)
	}

	if opts.FuzzRange < 0 {
		return nil, fmt.Errorf("%w: fuzz range %d",
			motionlite.ErrInvalidArgument, opts.FuzzRange)
	}

	if opts.Zoom {
		if opts.ZoomRate < 1 {
			return nil, fmt.Errorf("%w: zoom rate %d",
				motionlite.ErrInvalidArgument, opts.ZoomRate)
		}

		if opts.ZoomRange < 0 {
			return nil, fmt.Errorf("%w: zoom range %d",
				motionlite.ErrInvalidArgument, opts.ZoomRange)
		}
	}

	if pool == nil || pool.Size() == 0 {
		return nil, fmt.Errorf("%w: empty estimator pool",
			motionlite.ErrInvalidArgument)
	}

	if pool.Size() > 1 {
		if err := e.runWorkers(pos, length, opts, pool, callback); err != nil {
			return nil, err
		}
	}

	return e.assemble(pos, length, opts, pool, callback)
}

func (e *Estimator) needsZoom(opts EstimateOptions, frame int) bool {
	return opts.Zoom && frame%opts.ZoomRate == 0
}

// requiredWindow is the frame range the current estimation must have
// cached before assembly.
func (e *Estimator) requiredWindow(
	pos, length int, opts EstimateOptions,
) (int, int, error) {
	first, last, err := FuzzRange(pos, length, opts.FuzzRange)

	if err != nil {
		return 0, 0, err
	}

	if opts.AntiCrossing {
		if first > 0 {
			first--
		}

		if last < length-1 {
			last++
		}
	}

	return first, last, nil
}

func (e *Estimator) runWorkers(
	pos, length int, opts EstimateOptions,
	pool *motionlite.EstimatorPool, callback motionlite.ImageCallback,
) error {
	first, last, err := e.requiredWindow(pos, length, opts)

	if err != nil {
		return err
	}

	s := &schedule{
		estimator:      e,
		cond:           sync.NewCond(&e.mu),
		length:         length,
		opts:           opts,
		callback:       callback,
		queuedUnzoomed: make(map[int]bool),
		queuedZoomed:   make(map[int]bool),
	}

	e.mu.Lock()

	for frame := first; frame <= last; frame++ {
		s.required = append(s.required, s.frameTasks(frame)...)
	}

	// speculative work beyond the required window keeps idle estimators
	// busy, radiating outward from the window
	for offset := 1; ; offset++ {
		right := last + offset
		left := first - offset

		if right >= length && left < 0 {
			break
		}

		if right < length {
			s.extra = append(s.extra, s.frameTasks(right)...)
		}

		if left >= 0 {
			s.extra = append(s.extra, s.frameTasks(left)...)
		}
	}

	e.mu.Unlock()

	var wg sync.WaitGroup

	for i := 0; i < pool.Size(); i++ {
		wg.Add(1)

		go func(still, zoomStill motionlite.StillEstimator) {
			defer wg.Done()

			s.work(still, zoomStill)
		}(pool.Stills()[i], pool.ZoomStills()[i])
	}

	wg.Wait()

	e.mu.Lock()
	err = s.err
	e.mu.Unlock()

	return err
}

// frameTasks returns the not yet queued tasks needed to finalize the frame.
// Callers must hold the estimator lock.
func (s *schedule) frameTasks(frame int) []frameTask {
	e := s.estimator

	if _, done := e.stillPoses[frame]; done {
		return nil
	}

	if !e.needsZoom(s.opts, frame) {
		if s.queuedUnzoomed[frame] {
			return nil
		}

		s.queuedUnzoomed[frame] = true

		return []frameTask{{frame: frame}}
	}

	var tasks []frameTask

	hintFirst, hintLast, err := ZoomRange(frame, s.length, s.opts.ZoomRange)

	if err != nil {
		return nil
	}

	for hint := hintFirst; hint <= hintLast; hint++ {
		if s.covered(hint) || s.queuedUnzoomed[hint] {
			continue
		}

		s.queuedUnzoomed[hint] = true
		tasks = append(tasks, frameTask{frame: hint})
	}

	if !s.queuedZoomed[frame] {
		s.queuedZoomed[frame] = true
		tasks = append(tasks, frameTask{frame: frame, zoomed: true})
	}

	return tasks
}

// covered reports whether the frame's estimate needed for zoom hinting is
// already cached.  Callers must hold the estimator lock.
func (s *schedule) covered(frame int) bool {
	e := s.estimator

	if e.needsZoom(s.opts, frame) {
		_, found := e.unzoomedStillPoses[frame]

		return found
	}

	_, found := e.stillPoses[frame]

	return found
}

// ready reports whether the task can run now.  Callers must hold the
// estimator lock.
func (s *schedule) ready(task frameTask) bool {
	if !task.zoomed {
		return true
	}

	hintFirst, hintLast, err := ZoomRange(task.frame, s.length, s.opts.ZoomRange)

	if err != nil {
		return false
	}

	for hint := hintFirst; hint <= hintLast; hint++ {
		if !s.covered(hint) {
			return false
		}
	}

	return true
}

// claim removes and returns the first runnable task, preferring required
// work.  Callers must hold the estimator lock.
func (s *schedule) claim() (frameTask, bool) {
	for _, queue := range []*[]frameTask{&s.required, &s.extra} {
		for i, task := range *queue {
			if !s.ready(task) {
				continue
			}

			*queue = append((*queue)[:i], (*queue)[i+1:]...)

			return task, true
		}
	}

	return frameTask{}, false
}

func (s *schedule) fail(err error) {
	if s.err == nil {
		s.err = err
	}

	s.required = nil
	s.extra = nil
	s.cond.Broadcast()
}

func (s *schedule) work(still, zoomStill motionlite.StillEstimator) {
	e := s.estimator

	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		if s.err != nil || len(s.required) == 0 {
			return
		}

		task, ok := s.claim()

		if !ok {
			s.cond.Wait()

			continue
		}

		var err error

		if task.zoomed {
			err = s.runZoomed(task.frame, zoomStill)
		} else {
			err = s.runUnzoomed(task.frame, still)
		}

		if err != nil {
			s.fail(err)

			return
		}

		s.cond.Broadcast()
	}
}

// runUnzoomed estimates the frame without zooming.  Called with the
// estimator lock held; the lock is released during image retrieval and
// estimation.
func (s *schedule) runUnzoomed(frame int, still motionlite.StillEstimator) error {
	e := s.estimator
	zoom := e.needsZoom(s.opts, frame)

	e.mu.Unlock()

	human, err := estimateFrame(frame, !zoom, still, s.callback)

	e.mu.Lock()

	if err != nil {
		return err
	}

	if zoom {
		e.unzoomedStillPoses[frame] = human
	} else {
		e.stillPoses[frame] = human
	}

	return nil
}

// runZoomed re-estimates the frame on a crop hinted by the neighboring
// estimates.  Called with the estimator lock held; the lock is released
// during image retrieval and estimation.
func (s *schedule) runZoomed(frame int, zoomStill motionlite.StillEstimator) error {
	e := s.estimator

	base, found := e.unzoomedStillPoses[frame]

	if !found {
		return fmt.Errorf("%w: missing initial estimate for frame %d",
			motionlite.ErrInvariant, frame)
	}

	if base == nil {
		e.stillPoses[frame] = nil

		return nil
	}

	hints := s.zoomHints(frame)

	e.mu.Unlock()

	human, err := zoomFrame(frame, base, hints, zoomStill, s.callback)

	e.mu.Lock()

	if err != nil {
		return err
	}

	e.stillPoses[frame] = human

	return nil
}

// zoomHints collects the cached neighboring estimates guiding the crop.
// Callers must hold the estimator lock.
func (s *schedule) zoomHints(frame int) []*motionlite.Human {
	e := s.estimator

	hintFirst, hintLast, err := ZoomRange(frame, s.length, s.opts.ZoomRange)

	if err != nil {
		return nil
	}

	var hints []*motionlite.Human

	for hint := hintFirst; hint <= hintLast; hint++ {
		if hint == frame {
			continue
		}

		if e.needsZoom(s.opts, hint) {
			hints = append(hints, e.unzoomedStillPoses[hint])
		} else {
			hints = append(hints, e.stillPoses[hint])
		}
	}

	return hints
}

// estimateFrame runs a plain still estimation on the frame's image
func estimateFrame(
	frame int, lastAccess bool, still motionlite.StillEstimator,
	callback motionlite.ImageCallback,
) (*motionlite.Human, error) {
	img, err := callback(frame, lastAccess)

	if err != nil {
		return nil, err
	}

	if img == nil {
		return nil, fmt.Errorf("%w: no image for frame %d",
			motionlite.ErrIO, frame)
	}

	humans, err := still.Estimate(img)

	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v",
			motionlite.ErrEstimator, frame, err)
	}

	if len(humans) == 0 {
		return nil, nil
	}

	return humans[0], nil
}

// zoomFrame runs the crop-based re-estimation on the frame's image
func zoomFrame(
	frame int, base *motionlite.Human, hints []*motionlite.Human,
	zoomStill motionlite.StillEstimator, callback motionlite.ImageCallback,
) (*motionlite.Human, error) {
	img, err := callback(frame, true)

	if err != nil {
		return nil, err
	}

	if img == nil {
		return nil, fmt.Errorf("%w: no image for frame %d",
			motionlite.ErrIO, frame)
	}

	return ZoomEstimate(img, base, hints, zoomStill)
}

// resolve returns the final estimate for the frame, computing and caching
// anything missing on the calling goroutine with the pool's first handles.
func (e *Estimator) resolve(
	frame, length int, opts EstimateOptions,
	pool *motionlite.EstimatorPool, callback motionlite.ImageCallback,
) (*motionlite.Human, error) {
	if human, found := e.stillPoses[frame]; found {
		return human, nil
	}

	still := pool.Stills()[0]

	if !e.needsZoom(opts, frame) {
		human, err := estimateFrame(frame, true, still, callback)

		if err != nil {
			return nil, err
		}

		e.stillPoses[frame] = human

		return human, nil
	}

	hintFirst, hintLast, err := ZoomRange(frame, length, opts.ZoomRange)

	if err != nil {
		return nil, err
	}

	for hint := hintFirst; hint <= hintLast; hint++ {
		if e.needsZoom(opts, hint) {
			if _, found := e.unzoomedStillPoses[hint]; found {
				continue
			}

			human, err := estimateFrame(hint, false, still, callback)

			if err != nil {
				return nil, err
			}

			e.unzoomedStillPoses[hint] = human
		} else {
			if _, found := e.stillPoses[hint]; found {
				continue
			}

			human, err := estimateFrame(hint, true, still, callback)

			if err != nil {
				return nil, err
			}

			e.stillPoses[hint] = human
		}
	}

	base := e.unzoomedStillPoses[frame]

	if base == nil {
		e.stillPoses[frame] = nil

		return nil, nil
	}

	var hints []*motionlite.Human

	for hint := hintFirst; hint <= hintLast; hint++ {
		if hint == frame {
			continue
		}

		if e.needsZoom(opts, hint) {
			hints = append(hints, e.unzoomedStillPoses[hint])
		} else {
			hints = append(hints, e.stillPoses[hint])
		}
	}

	human, err := zoomFrame(frame, base, hints, pool.ZoomStills()[0], callback)

	if err != nil {
		return nil, err
	}

	e.stillPoses[frame] = human

	return human, nil
}

// assemble builds the final estimate for pos from the cached still poses,
// applying anti-crossing, length caps and fuzzing.
func (e *Estimator) assemble(
	pos, length int, opts EstimateOptions,
	pool *motionlite.EstimatorPool, callback motionlite.ImageCallback,
) (map[int]*motionlite.Human, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// anti-crossing and length caps apply to every frame fuzzing consults,
	// each frame checked against its own adjacent frames
	processed := make(map[int]*motionlite.Human)

	frameEstimate := func(frame int) (*motionlite.Human, error) {
		if human, found := processed[frame]; found {
			return human, nil
		}

		human, err := e.resolve(frame, length, opts, pool, callback)

		if err != nil {
			return nil, err
		}

		if human != nil {
			human = human.Clone()

			if opts.AntiCrossing {
				var left, right *motionlite.Human

				if frame > 0 {
					left, err = e.resolve(frame-1, length, opts, pool, callback)

					if err != nil {
						return nil, err
					}
				}

				if frame+1 < length {
					right, err = e.resolve(frame+1, length, opts, pool, callback)

					if err != nil {
						return nil, err
					}
				}

				human = AntiCrossing(human, left, right)
			}

			applyMaxLengths(human, opts.MaxLengths)
		}

		processed[frame] = human

		return human, nil
	}

	fuzzed, err := Fuzz(opts.FuzzRange, func(
		relativePos int, left bool,
	) (bool, *motionlite.Human, error) {
		frame := pos + relativePos

		if left {
			frame = pos - relativePos
		}

		if frame < 0 || frame >= length {
			return false, nil, nil
		}

		human, err := frameEstimate(frame)

		if err != nil {
			return false, nil, err
		}

		return true, human, nil
	})

	if err != nil {
		return nil, err
	}

	result := make(map[int]*motionlite.Human)

	if fuzzed != nil && len(fuzzed.Parts) > 0 {
		result[0] = fuzzed
	}

	return result, nil
}

// applyMaxLengths drops the To part of connections stretched past their cap
func applyMaxLengths(human *motionlite.Human, maxLengths []MaxLength) {
	for _, ml := range maxLengths {
		from, hasFrom := human.Parts[ml.From]
		to, hasTo := human.Parts[ml.To]

		if !hasFrom || !hasTo {
			continue
		}

		dist := math.Hypot(float64(from.X-to.X), float64(from.Y-to.Y))

		if dist > float64(ml.Max) {
			delete(human.Parts, ml.To)
		}
	}
}

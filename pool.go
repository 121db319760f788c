package motionlite

import (
	"fmt"
)

// EstimatorFactory opens a fresh still estimator handle.  i is the slot
// number within the pool, letting implementations pin handles to specific
// accelerator cores.
type EstimatorFactory func(i int) (StillEstimator, error)

// EstimatorPool holds matched sets of still estimator handles for unzoomed
// and zoomed estimation.  Implementers may want a smaller model for zoomed
// calls; the two sets must have equal size but need not share handles.
type EstimatorPool struct {
	// stills are the handles used for unzoomed estimation
	stills []StillEstimator
	// zoomStills are the handles used for zoomed estimation
	zoomStills []StillEstimator
}

// NewEstimatorPool opens size still handles with stillFactory and size zoom
// handles with zoomFactory.  If zoomFactory is nil the still handles are
// shared for zoomed calls.
func NewEstimatorPool(size int, stillFactory, zoomFactory EstimatorFactory) (*EstimatorPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: pool size %d", ErrInvalidArgument, size)
	}

	p := &EstimatorPool{
		stills:     make([]StillEstimator, 0, size),
		zoomStills: make([]StillEstimator, 0, size),
	}

	for i := 0; i < size; i++ {
		still, err := stillFactory(i)

		if err != nil {
			return nil, fmt.Errorf("error opening still estimator %d: %w", i, err)
		}

		p.stills = append(p.stills, still)

		if zoomFactory == nil {
			p.zoomStills = append(p.zoomStills, still)
			continue
		}

		zoom, err := zoomFactory(i)

		if err != nil {
			return nil, fmt.Errorf("error opening zoom estimator %d: %w", i, err)
		}

		p.zoomStills = append(p.zoomStills, zoom)
	}

	return p, nil
}

// Size returns the number of handle pairs in the pool
func (p *EstimatorPool) Size() int {
	return len(p.stills)
}

// Stills returns the unzoomed estimation handles
func (p *EstimatorPool) Stills() []StillEstimator {
	return p.stills
}

// ZoomStills returns the zoomed estimation handles
func (p *EstimatorPool) ZoomStills() []StillEstimator {
	return p.zoomStills
}

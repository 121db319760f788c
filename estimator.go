package motionlite

// StillEstimator is the capability boundary to the underlying neural-network
// pose estimator.  Given an image it returns the detected humans; the motion
// core consumes only the first element.  The estimator is expected to resize
// the image internally to its input tensor size.
//
// A StillEstimator handle is not assumed to be safe for concurrent use; the
// motion estimator calls into a given handle from one goroutine at a time.
type StillEstimator interface {
	Estimate(img *Image) ([]*Human, error)
}

// ImageCallback supplies the full image for a frame.  lastAccess is true only
// when the caller promises no further read of this frame's image during the
// current estimation, allowing the callback to release I/O resources.
// Returning a nil image without an error is treated as an I/O failure.
//
// The callback may be invoked concurrently from different workers, possibly
// with the same pos, and must be reentrant.
type ImageCallback func(pos int, lastAccess bool) (*Image, error)

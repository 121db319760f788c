/*
go-motionlite turns per-frame keypoint inferences from an external pose
estimator into a temporally coherent description of a single person's motion.

Missing keypoints are filled in by interpolating through neighboring frames
(fuzz), keypoints lost at low resolution are recovered by re-running the
estimator on an adaptively cropped region (zoom), and left/right limb swaps
introduced by the underlying network are suppressed (anti-crossing).  The
resulting motion can be scored against a reference motion to report sustained
deviations (missed moves).

The neural-network backend is abstracted behind the StillEstimator interface;
any model that returns a list of humans with normalized 2D keypoints can be
plugged in.  See example code and usage in the example subdirectory.
*/
package motionlite

package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"sync"
	"time"

	motionlite "github.com/dtrn/go-motionlite"
	"github.com/dtrn/go-motionlite/format"
	"github.com/dtrn/go-motionlite/motion"
	"github.com/dtrn/go-motionlite/render"
	"gocv.io/x/gocv"
)

// estimator input size of the pose model
const (
	netHeight = 368
	netWidth  = 368
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/pose.caffemodel", "Pose estimation model file")
	configFile := flag.String("c", "../data/pose.prototxt", "Pose estimation model config file")
	videoFile := flag.String("v", "../data/dance.mp4", "Video file to run estimation on")
	saveFile := flag.String("o", "../data/dance-out.mp4", "Output video file with rendered poses")
	actionFile := flag.String("a", "", "Optional output file the serialized action data is written to")
	poolSize := flag.Int("s", 2, "Number of estimators to run concurrently")
	fuzzRange := flag.Int("f", 10, "Number of neighboring frames used to interpolate missing parts")
	useZoom := flag.Bool("z", false, "Re-estimate on a cropped region around the person")
	zoomRate := flag.Int("zr", 5, "Re-estimate every Nth frame when zooming")
	platform := flag.String("p", "", "Optional Rockchip platform (rk3562|rk3566|rk3568|rk3576|rk3582|rk3588) to pin the process to the fast CPU cores of")

	flag.Parse()

	if *platform != "" {
		err := motionlite.SetCPUAffinityByPlatform(*platform,
			motionlite.FastCores)

		if err != nil {
			log.Fatal("Failed to set CPU affinity: ", err)
		}
	}

	err := runEstimation(*modelFile, *configFile, *videoFile, *saveFile,
		*actionFile, *poolSize, *fuzzRange, *useZoom, *zoomRate)

	if err != nil {
		log.Fatal(err)
	}
}

func runEstimation(modelFile, configFile, videoFile, saveFile,
	actionFile string, poolSize, fuzzRange int, useZoom bool,
	zoomRate int) error {

	// load video frames
	frames, fps, err := loadVideo(videoFile)

	if err != nil {
		return fmt.Errorf("error loading video: %w", err)
	}

	defer func() {
		for _, frame := range frames {
			frame.Close()
		}
	}()

	log.Printf("Loaded %d frames from %s\n", len(frames), videoFile)

	// create estimator pool, all estimators share the same model so the
	// zoom estimators reuse the plain ones
	pool, err := motionlite.NewEstimatorPool(poolSize,
		func(i int) (motionlite.StillEstimator, error) {
			return newDNNEstimator(modelFile, configFile)
		}, nil)

	if err != nil {
		return fmt.Errorf("error creating estimator pool: %w", err)
	}

	defer closePool(pool)

	cache := newFrameCache(frames)

	est := motion.NewEstimator()

	opts := motion.EstimateOptions{
		FuzzRange:    fuzzRange,
		AntiCrossing: true,
		Zoom:         useZoom,
		ZoomRange:    1,
		ZoomRate:     zoomRate,
	}

	writer, err := gocv.VideoWriterFile(saveFile, "mp4v", fps,
		frames[0].Cols(), frames[0].Rows(), true)

	if err != nil {
		return fmt.Errorf("error creating video writer: %w", err)
	}

	defer writer.Close()

	font := render.DefaultFont()
	action := make([]map[int]*motionlite.Human, 0, len(frames))
	history := make([]*motionlite.Human, 0, len(frames))

	start := time.Now()

	for pos := 0; pos < len(frames); pos++ {
		humans, err := est.Estimate(pos, len(frames), opts, pool, cache.get)

		if err != nil {
			return fmt.Errorf("error estimating frame %d: %w", pos, err)
		}

		action = append(action, humans)
		history = append(history, humans[0])

		// render pose onto output frame
		out := frames[pos].Clone()

		render.Pose(&out, humans[0], 2)
		render.PoseBox(&out, humans[0], fmt.Sprintf("frame %d", pos),
			render.Yellow, font, 1)
		render.Trail(&out, history, motionlite.WristR,
			render.DefaultTrailStyle())

		if err := writer.Write(out); err != nil {
			out.Close()

			return fmt.Errorf("error writing output frame: %w", err)
		}

		out.Close()
	}

	log.Printf("Estimated %d frames in %s\n", len(frames),
		time.Since(start).String())

	if actionFile != "" {
		if err := saveAction(actionFile, action); err != nil {
			return err
		}

		log.Printf("Wrote action data to %s\n", actionFile)
	}

	return nil
}

// loadVideo reads all frames of the video file into memory
func loadVideo(videoFile string) ([]gocv.Mat, float64, error) {

	capture, err := gocv.VideoCaptureFile(videoFile)

	if err != nil {
		return nil, 0, err
	}

	defer capture.Close()

	fps := capture.Get(gocv.VideoCaptureFPS)

	var frames []gocv.Mat

	for {
		frame := gocv.NewMat()

		if ok := capture.Read(&frame); !ok {
			frame.Close()
			break
		}

		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		return nil, 0, fmt.Errorf("video has no frames")
	}

	return frames, fps, nil
}

func saveAction(actionFile string, action []map[int]*motionlite.Human) error {

	f, err := os.Create(actionFile)

	if err != nil {
		return fmt.Errorf("error creating action file: %w", err)
	}

	defer f.Close()

	if err := format.WriteAction(f, action); err != nil {
		return fmt.Errorf("error writing action data: %w", err)
	}

	return nil
}

func closePool(pool *motionlite.EstimatorPool) {
	for _, still := range pool.Stills() {
		if est, ok := still.(*dnnEstimator); ok {
			est.Close()
		}
	}
}

// frameCache converts video frames to estimator images on demand and drops
// the conversion once the estimator signals its last access
type frameCache struct {
	mu     sync.Mutex
	frames []gocv.Mat
	images map[int]*motionlite.Image
}

func newFrameCache(frames []gocv.Mat) *frameCache {
	return &frameCache{
		frames: frames,
		images: make(map[int]*motionlite.Image),
	}
}

func (c *frameCache) get(pos int, lastAccess bool) (*motionlite.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.frames) {
		return nil, fmt.Errorf("no frame at position %d", pos)
	}

	img, found := c.images[pos]

	if !found {
		var err error

		img, err = matToImage(c.frames[pos])

		if err != nil {
			return nil, err
		}

		c.images[pos] = img
	}

	if lastAccess {
		delete(c.images, pos)
	}

	return img, nil
}

// matToImage converts a BGR Mat to the estimator's image layout
func matToImage(mat gocv.Mat) (*motionlite.Image, error) {

	data := mat.ToBytes()

	pixels := make([]float32, len(data))

	for i, b := range data {
		pixels[i] = float32(b)
	}

	return motionlite.NewImageFromData(pixels, mat.Rows(), mat.Cols(), 3)
}

// imageToMat converts the estimator's image layout back to a BGR Mat
func imageToMat(img *motionlite.Image) (gocv.Mat, error) {

	data := make([]byte, len(img.Data))

	for i, v := range img.Data {
		data[i] = byte(v)
	}

	return gocv.NewMatFromBytes(img.Height, img.Width, gocv.MatTypeCV8UC3, data)
}

// dnnEstimator runs single person pose estimation using an OpenPose style
// heatmap model through the OpenCV DNN module
type dnnEstimator struct {
	net gocv.Net
}

func newDNNEstimator(modelFile, configFile string) (*dnnEstimator, error) {

	net := gocv.ReadNet(modelFile, configFile)

	if net.Empty() {
		return nil, fmt.Errorf("error reading model %s", modelFile)
	}

	return &dnnEstimator{net: net}, nil
}

func (d *dnnEstimator) Close() error {
	return d.net.Close()
}

// Estimate runs the pose model on the image and decodes the part heatmaps.
// At most one human is returned.
func (d *dnnEstimator) Estimate(img *motionlite.Image) ([]*motionlite.Human, error) {

	mat, err := imageToMat(img)

	if err != nil {
		return nil, fmt.Errorf("error converting image: %w", err)
	}

	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(netWidth, netHeight), gocv.NewScalar(0, 0, 0, 0),
		false, false)

	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")

	defer output.Close()

	// heatmap output has shape [1, parts, h, w]
	sizes := output.Size()

	if len(sizes) != 4 {
		return nil, fmt.Errorf("unexpected model output shape %v", sizes)
	}

	mapHeight := sizes[2]
	mapWidth := sizes[3]

	reshaped := output.Reshape(1, sizes[1])

	defer reshaped.Close()

	var parts []motionlite.BodyPart

	for i := 0; i < int(motionlite.PartIndexEnd) && i < sizes[1]; i++ {

		// find the heatmap peak for this part
		row := reshaped.RowRange(i, i+1)
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(row)
		row.Close()

		if maxVal < 0.1 {
			continue
		}

		parts = append(parts, motionlite.BodyPart{
			Part:  motionlite.PartIndex(i),
			X:     float32(maxLoc.X/mapWidth) / float32(mapHeight),
			Y:     float32(maxLoc.X%mapWidth) / float32(mapWidth),
			Score: maxVal,
		})
	}

	if len(parts) == 0 {
		return nil, nil
	}

	return []*motionlite.Human{motionlite.NewHuman(parts)}, nil
}

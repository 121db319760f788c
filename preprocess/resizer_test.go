package preprocess

import (
	"errors"
	"math"
	"testing"

	motionlite "github.com/dtrn/go-motionlite"
)

const epsilon = 1e-5

func nearlyEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

// gradientImage builds a single channel image whose pixel value at (x, y) is
// x*width+y, convenient for checking interpolation by hand.
func gradientImage(t *testing.T, height, width int) *motionlite.Image {
	t.Helper()

	img, err := motionlite.NewImage(height, width, 1)

	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	for x := 0; x < height; x++ {
		for y := 0; y < width; y++ {
			img.Set(x, y, 0, float32(x*width+y))
		}
	}

	return img
}

func TestResizeIdentity(t *testing.T) {
	src := gradientImage(t, 4, 6)

	dst, err := Resize(src, 4, 6)

	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	for i, v := range dst.Data {
		if !nearlyEqual(v, src.Data[i]) {
			t.Fatalf("pixel %d: expected %f, got %f", i, src.Data[i], v)
		}
	}
}

func TestResizeUpscale(t *testing.T) {
	src, err := motionlite.NewImage(2, 2, 1)

	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	src.Set(0, 0, 0, 0)
	src.Set(0, 1, 0, 2)
	src.Set(1, 0, 0, 4)
	src.Set(1, 1, 0, 6)

	dst, err := Resize(src, 4, 4)

	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	if dst.Height != 4 || dst.Width != 4 {
		t.Fatalf("expected 4x4 result, got %dx%d", dst.Height, dst.Width)
	}

	// corner pixel maps straight onto source (0,0)
	if !nearlyEqual(dst.At(0, 0, 0), 0) {
		t.Errorf("corner pixel: expected 0, got %f", dst.At(0, 0, 0))
	}

	// (1,1) sits at source coordinate (0.5, 0.5), the mean of all four pixels
	if !nearlyEqual(dst.At(1, 1, 0), 3) {
		t.Errorf("center pixel: expected 3, got %f", dst.At(1, 1, 0))
	}

	// (2,0) sits at source coordinate (1.0, 0.0)
	if !nearlyEqual(dst.At(2, 0, 0), 4) {
		t.Errorf("row pixel: expected 4, got %f", dst.At(2, 0, 0))
	}
}

func TestResizeDownscale(t *testing.T) {
	src := gradientImage(t, 4, 4)

	dst, err := Resize(src, 2, 2)

	if err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	if dst.Height != 2 || dst.Width != 2 {
		t.Fatalf("expected 2x2 result, got %dx%d", dst.Height, dst.Width)
	}

	// target (0,0) samples source (0,0) exactly
	if !nearlyEqual(dst.At(0, 0, 0), 0) {
		t.Errorf("expected 0, got %f", dst.At(0, 0, 0))
	}

	// target (1,1) samples source (2,2) exactly
	if !nearlyEqual(dst.At(1, 1, 0), 10) {
		t.Errorf("expected 10, got %f", dst.At(1, 1, 0))
	}
}

func TestResizeInvalid(t *testing.T) {
	src := gradientImage(t, 2, 2)

	if _, err := Resize(src, 0, 4); !errors.Is(err, motionlite.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for zero height, got %v", err)
	}

	if _, err := Resize(nil, 4, 4); !errors.Is(err, motionlite.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil image, got %v", err)
	}
}

func TestCrop(t *testing.T) {
	src := gradientImage(t, 4, 5)

	tests := []struct {
		name         string
		x, y         int
		h, w         int
		wantH, wantW int
	}{
		{"interior", 1, 1, 2, 2, 2, 2},
		{"clamped", 2, 3, 10, 10, 2, 2},
		{"origin past end", 10, 10, 2, 2, 0, 0},
		{"zero size", 0, 0, 0, 0, 0, 0},
	}

	for _, tc := range tests {
		dst, err := Crop(src, tc.x, tc.y, tc.h, tc.w)

		if err != nil {
			t.Fatalf("%s: Crop failed: %v", tc.name, err)
		}

		if dst.Height != tc.wantH || dst.Width != tc.wantW {
			t.Errorf("%s: expected %dx%d, got %dx%d",
				tc.name, tc.wantH, tc.wantW, dst.Height, dst.Width)
		}

		for i := 0; i < dst.Height; i++ {
			for j := 0; j < dst.Width; j++ {
				want := src.At(tc.x+i, tc.y+j, 0)

				if !nearlyEqual(dst.At(i, j, 0), want) {
					t.Errorf("%s: pixel (%d,%d): expected %f, got %f",
						tc.name, i, j, want, dst.At(i, j, 0))
				}
			}
		}
	}
}

func TestCropInvalid(t *testing.T) {
	src := gradientImage(t, 2, 2)

	if _, err := Crop(src, -1, 0, 1, 1); !errors.Is(err, motionlite.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative origin, got %v", err)
	}

	if _, err := Crop(nil, 0, 0, 1, 1); !errors.Is(err, motionlite.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil image, got %v", err)
	}
}

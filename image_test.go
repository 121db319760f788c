package motionlite

import (
	"errors"
	"testing"
)

func TestNewImage(t *testing.T) {
	img, err := NewImage(4, 3, 2)

	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	if len(img.Data) != 24 {
		t.Errorf("expected 24 pixel values, got %d", len(img.Data))
	}

	if img.Empty() {
		t.Error("expected non-empty image")
	}
}

func TestNewImageInvalidDimensions(t *testing.T) {
	for _, dims := range [][3]int{{0, 3, 2}, {4, 0, 2}, {4, 3, 0}, {-1, 3, 2}} {
		_, err := NewImage(dims[0], dims[1], dims[2])

		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%v: expected ErrInvalidArgument, got %v", dims, err)
		}
	}
}

func TestImageAtSet(t *testing.T) {
	img, err := NewImage(4, 3, 2)

	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}

	img.Set(2, 1, 1, 0.5)

	if got := img.At(2, 1, 1); got != 0.5 {
		t.Errorf("expected 0.5, got %g", got)
	}

	// row-major layout: (x*Width + y)*Channels + c
	if got := img.Data[(2*3+1)*2+1]; got != 0.5 {
		t.Errorf("expected value at flat index, got %g", got)
	}
}

func TestNewImageFromData(t *testing.T) {
	data := make([]float32, 12)
	data[5] = 1.5

	img, err := NewImageFromData(data, 2, 3, 2)

	if err != nil {
		t.Fatalf("NewImageFromData failed: %v", err)
	}

	if got := img.At(0, 2, 1); got != 1.5 {
		t.Errorf("expected wrapped buffer value 1.5, got %g", got)
	}

	if _, err := NewImageFromData(data, 3, 3, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for short buffer, got %v", err)
	}
}

func TestNewImageFromFloat16(t *testing.T) {
	// 0x3c00 is 1.0, 0xc000 is -2.0, 0x0000 is 0.0 in binary16
	data := []uint16{0x3c00, 0xc000, 0x0000, 0x3800}

	img, err := NewImageFromFloat16(data, 2, 2, 1)

	if err != nil {
		t.Fatalf("NewImageFromFloat16 failed: %v", err)
	}

	expected := []float32{1, -2, 0, 0.5}

	for i, want := range expected {
		if img.Data[i] != want {
			t.Errorf("pixel %d: expected %g, got %g", i, want, img.Data[i])
		}
	}
}

func TestNewImageFromFloat16WrongLength(t *testing.T) {
	if _, err := NewImageFromFloat16([]uint16{0}, 2, 2, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

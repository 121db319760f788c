package format

import (
	"bytes"
	"errors"
	"math"
	"testing"

	motionlite "github.com/dtrn/go-motionlite"
)

func TestFloatToBytesSpecials(t *testing.T) {
	tests := []struct {
		name     string
		value    float32
		expected []byte
	}{
		{"positive zero", 0, []byte{0, 0, 0, 0}},
		{"negative zero", float32(math.Copysign(0, -1)), []byte{0x80, 0, 0, 0}},
		{"positive infinity", float32(math.Inf(1)), []byte{0x7f, 0x80, 0, 0}},
		{"negative infinity", float32(math.Inf(-1)), []byte{0xff, 0x80, 0, 0}},
		{"nan", float32(math.NaN()), []byte{0x7f, 0xc0, 0, 0}},
		{"one", 1, []byte{0x3f, 0x80, 0, 0}},
		{"minus two point five", -2.5, []byte{0xc0, 0x20, 0, 0}},
	}

	for _, tc := range tests {
		if got := FloatToBytes(tc.value); !bytes.Equal(got, tc.expected) {
			t.Errorf("%s: expected %x, got %x", tc.name, tc.expected, got)
		}
	}
}

func TestFloatToBytesSubnormalCollapses(t *testing.T) {
	// values below the smallest normal encode as zero
	if got := FloatToBytes(1e-41); !bytes.Equal(got, []byte{0, 0, 0, 0}) {
		t.Errorf("expected zero encoding, got %x", got)
	}

	if got := FloatToBytes(-1e-41); !bytes.Equal(got, []byte{0x80, 0, 0, 0}) {
		t.Errorf("expected negative zero encoding, got %x", got)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	values := []float32{
		0, 1, -1, 0.5, -0.5, 0.25, 3.1415927, -123456.78,
		1.1754944e-38, 3.4028235e38, 1e-3, 7,
	}

	for _, v := range values {
		got, err := BytesToFloat(FloatToBytes(v))

		if err != nil {
			t.Fatalf("decode of %f failed: %v", v, err)
		}

		if got != v {
			t.Errorf("round trip of %g returned %g", v, got)
		}
	}
}

func TestBytesToFloatSpecials(t *testing.T) {
	if got, err := BytesToFloat([]byte{0x7f, 0x80, 0, 0}); err != nil || !math.IsInf(float64(got), 1) {
		t.Errorf("expected +Inf, got %g (%v)", got, err)
	}

	if got, err := BytesToFloat([]byte{0xff, 0x80, 0, 0}); err != nil || !math.IsInf(float64(got), -1) {
		t.Errorf("expected -Inf, got %g (%v)", got, err)
	}

	if got, err := BytesToFloat([]byte{0x7f, 0xc0, 0, 0}); err != nil || !math.IsNaN(float64(got)) {
		t.Errorf("expected NaN, got %g (%v)", got, err)
	}

	// wire-level subnormal decodes to the smallest magnitudes
	got, err := BytesToFloat([]byte{0, 0, 0, 1})

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if got != float32(math.Ldexp(1, -149)) {
		t.Errorf("expected smallest subnormal, got %g", got)
	}

	zero, err := BytesToFloat([]byte{0x80, 0, 0, 0})

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if zero != 0 || !math.Signbit(float64(zero)) {
		t.Errorf("expected negative zero, got %g", zero)
	}
}

func TestBytesToFloatWrongLength(t *testing.T) {
	if _, err := BytesToFloat([]byte{1, 2, 3}); !errors.Is(err, motionlite.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

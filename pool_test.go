package motionlite

import (
	"errors"
	"testing"
)

type nopEstimator struct{ id int }

func (n *nopEstimator) Estimate(img *Image) ([]*Human, error) {
	return nil, nil
}

func TestNewEstimatorPoolSharedZoomHandles(t *testing.T) {
	pool, err := NewEstimatorPool(3, func(i int) (StillEstimator, error) {
		return &nopEstimator{id: i}, nil
	}, nil)

	if err != nil {
		t.Fatalf("NewEstimatorPool failed: %v", err)
	}

	if pool.Size() != 3 {
		t.Fatalf("expected size 3, got %d", pool.Size())
	}

	for i := range pool.Stills() {
		if pool.Stills()[i] != pool.ZoomStills()[i] {
			t.Errorf("slot %d: expected shared zoom handle", i)
		}
	}
}

func TestNewEstimatorPoolSeparateZoomHandles(t *testing.T) {
	pool, err := NewEstimatorPool(2, func(i int) (StillEstimator, error) {
		return &nopEstimator{id: i}, nil
	}, func(i int) (StillEstimator, error) {
		return &nopEstimator{id: 100 + i}, nil
	})

	if err != nil {
		t.Fatalf("NewEstimatorPool failed: %v", err)
	}

	for i := range pool.Stills() {
		if pool.Stills()[i] == pool.ZoomStills()[i] {
			t.Errorf("slot %d: expected distinct zoom handle", i)
		}
	}
}

func TestNewEstimatorPoolInvalidSize(t *testing.T) {
	_, err := NewEstimatorPool(0, func(i int) (StillEstimator, error) {
		return &nopEstimator{}, nil
	}, nil)

	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewEstimatorPoolFactoryError(t *testing.T) {
	boom := errors.New("no accelerator")

	_, err := NewEstimatorPool(2, func(i int) (StillEstimator, error) {
		if i == 1 {
			return nil, boom
		}

		return &nopEstimator{}, nil
	}, nil)

	if !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}

package vulkan

import (
	"errors"
	"testing"

	"github.com/vireo3d/vireo/engine/core"
)

func TestDynamicBufferFits(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		count    int
		ok       bool
	}{
		{"under capacity", 4, 3, true},
		{"at capacity", 4, 4, true},
		{"over capacity", 4, 5, false},
		{"empty write", 4, 0, true},
		{"single record", 1, 1, true},
	}
	for _, tc := range tests {
		b := &DynamicBuffer[int32]{capacity: tc.capacity}
		err := b.fits(tc.count)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, core.ErrBufferTooSmall) {
			t.Errorf("%s: error = %v, want ErrBufferTooSmall", tc.name, err)
		}
	}
}

func TestDynamicBufferWriteRejectsOverflowBeforeMapping(t *testing.T) {
	// The buffer has no device behind it, so an overflowing write must fail
	// on the capacity check alone and never reach the mapped memory path.
	b := &DynamicBuffer[int32]{capacity: 2}

	err := b.Write([]int32{1, 2, 3})
	if !errors.Is(err, core.ErrBufferTooSmall) {
		t.Fatalf("Write error = %v, want ErrBufferTooSmall", err)
	}

	// A zero-length write is a no-op regardless of backing storage.
	if err := b.Write(nil); err != nil {
		t.Errorf("empty Write: %v", err)
	}
}

func TestDynamicBufferGrownCapacityAcceptsFormerOverflow(t *testing.T) {
	b := &DynamicBuffer[int32]{capacity: 2}
	if err := b.fits(5); err == nil {
		t.Fatal("five records fit a two-record buffer")
	}

	// Resize records the fresh allocation's capacity; the same count must
	// pass the bounds check afterwards.
	b.capacity = 5
	if err := b.fits(5); err != nil {
		t.Errorf("five records rejected after growth: %v", err)
	}
}

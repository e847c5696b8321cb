package vulkan

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
)

var handleSlab [6]int

func fakeCommandBuffer(n int) vk.CommandBuffer {
	return vk.CommandBuffer(unsafe.Pointer(&handleSlab[n]))
}

func fakeFence(n int) vk.Fence {
	return vk.Fence(unsafe.Pointer(&handleSlab[n]))
}

func TestDeviceFrameSlotCycling(t *testing.T) {
	// Recording and submission must target the same slot: the command
	// buffer BeginFrame opens is the one EndFrame submits, guarded by the
	// fence of that slot, until NextFrame moves the cursor on.
	d := &Device{
		framesInFlight: 3,
		commandBuffers: []vk.CommandBuffer{fakeCommandBuffer(0), fakeCommandBuffer(1), fakeCommandBuffer(2)},
		fences:         []vk.Fence{fakeFence(3), fakeFence(4), fakeFence(5)},
	}

	for i := 0; i < 7; i++ {
		want := i % 3
		if got := d.CurrentFrame(); got != want {
			t.Fatalf("frame %d: cursor = %d, want %d", i, got, want)
		}
		if got := d.CommandBuffer(); got != d.commandBuffers[want] {
			t.Errorf("frame %d: command buffer does not track the cursor", i)
		}
		if got := d.frameFence(); got != d.fences[want] {
			t.Errorf("frame %d: fence does not track the cursor", i)
		}
		d.NextFrame()
	}
}

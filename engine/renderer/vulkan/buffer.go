package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

type BufferUsage int

const (
	BufferUsageUniform BufferUsage = iota
	BufferUsageVertex
	BufferUsageIndex
)

func (u BufferUsage) flags() vk.BufferUsageFlags {
	switch u {
	case BufferUsageVertex:
		return vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	case BufferUsageIndex:
		return vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	default:
		return vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit)
	}
}

// DynamicBuffer is a host-visible GPU buffer typed over a fixed-layout record.
// Writes go straight into mapped memory, so the caller must guarantee no
// in-flight GPU read of the written region; the engine's frame-in-flight
// discipline provides that.
type DynamicBuffer[T any] struct {
	handle   vk.Buffer
	memory   vk.DeviceMemory
	usage    BufferUsage
	capacity int
	device   *Device
}

// NewDynamicBuffer allocates memory for capacity records of T.
func NewDynamicBuffer[T any](device *Device, usage BufferUsage, capacity int) (*DynamicBuffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("buffer capacity must be >= 1, got %d", capacity)
	}

	var record T
	size := vk.DeviceSize(uintptr(capacity) * unsafe.Sizeof(record))

	handle, memory, err := device.allocateBuffer(size, usage.flags(),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}

	return &DynamicBuffer[T]{
		handle:   handle,
		memory:   memory,
		usage:    usage,
		capacity: capacity,
		device:   device,
	}, nil
}

// fits reports whether count records fit the current allocation.
func (b *DynamicBuffer[T]) fits(count int) error {
	if count > b.capacity {
		return fmt.Errorf("writing %d records into a buffer sized for %d: %w", count, b.capacity, core.ErrBufferTooSmall)
	}
	return nil
}

// Write copies data into the mapped allocation. The data must fit the current
// capacity; callers grow the buffer with Resize first.
func (b *DynamicBuffer[T]) Write(data []T) error {
	if err := b.fits(len(data)); err != nil {
		core.LogError(err.Error())
		return err
	}
	if len(data) == 0 {
		return nil
	}

	size := vk.DeviceSize(uintptr(len(data)) * unsafe.Sizeof(data[0]))
	return b.device.MapMemory(b.memory, size, func(ptr unsafe.Pointer) {
		mapped := unsafe.Slice((*T)(ptr), len(data))
		copy(mapped, data)
	})
}

// Resize reallocates the buffer for capacity records. The old allocation is
// destroyed, which invalidates any descriptor still referencing it; the caller
// must rebind and must have drained in-flight frames that read the buffer.
func (b *DynamicBuffer[T]) Resize(capacity int) error {
	fresh, err := NewDynamicBuffer[T](b.device, b.usage, capacity)
	if err != nil {
		return err
	}

	b.device.freeBuffer(b.handle, b.memory)
	b.handle = fresh.handle
	b.memory = fresh.memory
	b.capacity = fresh.capacity
	return nil
}

func (b *DynamicBuffer[T]) Destroy() {
	b.device.freeBuffer(b.handle, b.memory)
	b.handle = vk.NullBuffer
	b.memory = vk.NullDeviceMemory
	b.capacity = 0
}

// Capacity is the number of records the allocation can hold.
func (b *DynamicBuffer[T]) Capacity() int {
	return b.capacity
}

func (b *DynamicBuffer[T]) SizeBytes() vk.DeviceSize {
	var record T
	return vk.DeviceSize(uintptr(b.capacity) * unsafe.Sizeof(record))
}

func (b *DynamicBuffer[T]) Handle() vk.Buffer {
	return b.handle
}

// Equal compares by underlying allocation identity.
func (b *DynamicBuffer[T]) Equal(other *DynamicBuffer[T]) bool {
	return other != nil && b.handle == other.handle
}

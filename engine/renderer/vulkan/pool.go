package vulkan

import "sync"

type LockGroup string

// Command recording is single threaded per frame, but the shader hot-reload
// watcher touches pipelines and the device from its own goroutine. Grouped
// locks serialize those call sites without one global lock.
const (
	BufferManagement     LockGroup = "buffer_management"
	DescriptorManagement LockGroup = "descriptor_management"
	PipelineManagement   LockGroup = "pipeline_management"
	DeviceManagement     LockGroup = "device_management"
	QueueManagement      LockGroup = "queue_management"
)

type VulkanLockPool struct {
	locks map[LockGroup]*sync.Mutex
	mu    sync.Mutex // Protects access to the locks map
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

func (vs *VulkanLockPool) setLock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if _, exists := vs.locks[group]; !exists {
		vs.locks[group] = &sync.Mutex{}
	}
	vs.locks[group].Lock()

	return vs.locks[group]
}

func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.setLock(group)
	defer l.Unlock()

	return fn()
}

var lockPool = NewVulkanLockPool()

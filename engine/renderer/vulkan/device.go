package vulkan

import (
	"fmt"
	"math"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

// Device wraps pre-created Vulkan handles with everything the renderer needs:
// per-frame command buffers, memory allocation, descriptor updates and command
// recording. Instance and logical device creation belong to the embedder.
type Device struct {
	physical         vk.PhysicalDevice
	logical          vk.Device
	queue            vk.Queue
	queueFamilyIndex uint32

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer
	fences         []vk.Fence

	framesInFlight int
	currentFrame   int
}

type DeviceOptions struct {
	PhysicalDevice   vk.PhysicalDevice
	LogicalDevice    vk.Device
	Queue            vk.Queue
	QueueFamilyIndex uint32
	// Number of frames that may be recorded ahead of GPU completion.
	FramesInFlight int
}

func NewDevice(opts DeviceOptions) (*Device, error) {
	if opts.FramesInFlight < 1 {
		opts.FramesInFlight = 2
	}

	d := &Device{
		physical:         opts.PhysicalDevice,
		logical:          opts.LogicalDevice,
		queue:            opts.Queue,
		queueFamilyIndex: opts.QueueFamilyIndex,
		framesInFlight:   opts.FramesInFlight,
	}

	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queueFamilyIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(d.logical, &poolCreateInfo, nil, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create command pool: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}
	d.commandPool = pool

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(d.framesInFlight),
	}
	d.commandBuffers = make([]vk.CommandBuffer, d.framesInFlight)
	if res := vk.AllocateCommandBuffers(d.logical, &allocateInfo, d.commandBuffers); res != vk.Success {
		err := fmt.Errorf("failed to allocate command buffers: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}

	// Signaled at creation so the first BeginFrame of each slot does not
	// block on a submission that never happened.
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	d.fences = make([]vk.Fence, d.framesInFlight)
	for i := range d.fences {
		if res := vk.CreateFence(d.logical, &fenceCreateInfo, nil, &d.fences[i]); res != vk.Success {
			err := fmt.Errorf("failed to create frame fence: %s", VulkanResultString(res, false))
			core.LogError(err.Error())
			d.Destroy()
			return nil, err
		}
	}

	core.LogDebug("device ready with %d frames in flight", d.framesInFlight)
	return d, nil
}

func (d *Device) Destroy() {
	for _, fence := range d.fences {
		if fence != vk.NullFence {
			vk.DestroyFence(d.logical, fence, nil)
		}
	}
	d.fences = nil
	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.logical, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
}

func (d *Device) FramesInFlight() int {
	return d.framesInFlight
}

// CurrentFrame is the frame-in-flight index that new commands record into.
func (d *Device) CurrentFrame() int {
	return d.currentFrame
}

// NextFrame advances the frame-in-flight index. The presentation layer calls
// this once per submitted frame.
func (d *Device) NextFrame() {
	d.currentFrame = (d.currentFrame + 1) % d.framesInFlight
}

// CommandBuffer returns the command buffer recording the current frame.
func (d *Device) CommandBuffer() vk.CommandBuffer {
	return d.commandBuffers[d.currentFrame]
}

// frameFence guards the current frame's slot: EndFrame signals it on
// submission, BeginFrame waits on it before reusing the slot's resources.
func (d *Device) frameFence() vk.Fence {
	return d.fences[d.currentFrame]
}

// BeginFrame blocks until the GPU has drained the previous submission of
// this frame's slot, then opens its command buffer for recording.
func (d *Device) BeginFrame() error {
	fence := d.frameFence()
	if res := vk.WaitForFences(d.logical, 1, []vk.Fence{fence}, vk.True, math.MaxUint64); res != vk.Success {
		err := fmt.Errorf("failed to wait for frame fence: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}
	if res := vk.ResetFences(d.logical, 1, []vk.Fence{fence}); res != vk.Success {
		err := fmt.Errorf("failed to reset frame fence: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(d.CommandBuffer(), &beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin frame command buffer: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}
	return nil
}

// EndFrame closes the current command buffer and submits it, signalling the
// frame's fence when the GPU finishes. The caller advances with NextFrame.
func (d *Device) EndFrame() error {
	cmd := d.CommandBuffer()
	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		err := fmt.Errorf("failed to end frame command buffer: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	return lockPool.SafeCall(QueueManagement, func() error {
		if res := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{submitInfo}, d.frameFence()); res != vk.Success {
			err := fmt.Errorf("failed to submit frame commands: %s", VulkanResultString(res, false))
			core.LogError(err.Error())
			return err
		}
		return nil
	})
}

func (d *Device) WaitIdle() error {
	return lockPool.SafeCall(DeviceManagement, func() error {
		if res := vk.DeviceWaitIdle(d.logical); res != vk.Success {
			err := fmt.Errorf("device wait idle failed: %s", VulkanResultString(res, false))
			core.LogError(err.Error())
			return err
		}
		return nil
	})
}

func (d *Device) UpdateDescriptorSets(writes []vk.WriteDescriptorSet) {
	_ = lockPool.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(d.logical, uint32(len(writes)), writes, 0, nil)
		return nil
	})
}

func (d *Device) findMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.physical, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("unable to find suitable memory type")
	return -1
}

// allocateBuffer creates a buffer with backing memory of the given properties.
func (d *Device) allocateBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (vk.Buffer, vk.DeviceMemory, error) {
	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var buffer vk.Buffer
	var memory vk.DeviceMemory
	err := lockPool.SafeCall(BufferManagement, func() error {
		if res := vk.CreateBuffer(d.logical, &bufferCreateInfo, nil, &buffer); res != vk.Success {
			return fmt.Errorf("failed to create buffer: %s: %w", VulkanResultString(res, false), core.ErrOutOfDeviceMemory)
		}

		var requirements vk.MemoryRequirements
		vk.GetBufferMemoryRequirements(d.logical, buffer, &requirements)
		requirements.Deref()

		memoryIndex := d.findMemoryIndex(requirements.MemoryTypeBits, properties)
		if memoryIndex < 0 {
			vk.DestroyBuffer(d.logical, buffer, nil)
			return fmt.Errorf("no suitable memory type for buffer: %w", core.ErrOutOfDeviceMemory)
		}

		allocateInfo := vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  requirements.Size,
			MemoryTypeIndex: uint32(memoryIndex),
		}
		if res := vk.AllocateMemory(d.logical, &allocateInfo, nil, &memory); res != vk.Success {
			vk.DestroyBuffer(d.logical, buffer, nil)
			return fmt.Errorf("failed to allocate buffer memory: %s: %w", VulkanResultString(res, false), core.ErrOutOfDeviceMemory)
		}
		if res := vk.BindBufferMemory(d.logical, buffer, memory, 0); res != vk.Success {
			vk.FreeMemory(d.logical, memory, nil)
			vk.DestroyBuffer(d.logical, buffer, nil)
			return fmt.Errorf("failed to bind buffer memory: %s: %w", VulkanResultString(res, false), core.ErrOutOfDeviceMemory)
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return vk.NullBuffer, vk.NullDeviceMemory, err
	}
	return buffer, memory, nil
}

func (d *Device) freeBuffer(buffer vk.Buffer, memory vk.DeviceMemory) {
	_ = lockPool.SafeCall(BufferManagement, func() error {
		if buffer != vk.NullBuffer {
			vk.DestroyBuffer(d.logical, buffer, nil)
		}
		if memory != vk.NullDeviceMemory {
			vk.FreeMemory(d.logical, memory, nil)
		}
		return nil
	})
}

// runSingleUse records fn into a one-shot command buffer, submits it and
// waits for the queue to drain. Used for uploads, not per-frame work.
func (d *Device) runSingleUse(fn func(cmd vk.CommandBuffer)) error {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cmds := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(d.logical, &allocateInfo, cmds); res != vk.Success {
		err := fmt.Errorf("failed to allocate single use command buffer: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}
	cmd := cmds[0]
	defer vk.FreeCommandBuffers(d.logical, d.commandPool, 1, cmds)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmd, &beginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin single use command buffer: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}

	fn(cmd)

	if res := vk.EndCommandBuffer(cmd); res != vk.Success {
		err := fmt.Errorf("failed to end single use command buffer: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}
	return lockPool.SafeCall(QueueManagement, func() error {
		if res := vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			err := fmt.Errorf("failed to submit single use commands: %s", VulkanResultString(res, false))
			core.LogError(err.Error())
			return err
		}
		if res := vk.QueueWaitIdle(d.queue); res != vk.Success {
			err := fmt.Errorf("queue failed to wait in idle mode: %s", VulkanResultString(res, false))
			core.LogError(err.Error())
			return err
		}
		return nil
	})
}

// MapMemory maps a host-visible region and hands the pointer to fn, unmapping
// afterwards. The pointer must not escape fn.
func (d *Device) MapMemory(memory vk.DeviceMemory, size vk.DeviceSize, fn func(ptr unsafe.Pointer)) error {
	var ptr unsafe.Pointer
	if res := vk.MapMemory(d.logical, memory, 0, size, 0, &ptr); res != vk.Success {
		err := fmt.Errorf("failed to map memory: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return err
	}
	fn(ptr)
	vk.UnmapMemory(d.logical, memory)
	return nil
}

func (d *Device) CmdBindDescriptor(cmd vk.CommandBuffer, descriptor Descriptor, layout *ShaderLayout) {
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, layout.PipelineLayout(),
		descriptor.Set, 1, []vk.DescriptorSet{descriptor.Handle}, 0, nil)
}

func (d *Device) CmdBindShader(cmd vk.CommandBuffer, shader *Shader) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, shader.Pipeline())
}

func (d *Device) CmdPushConstants(cmd vk.CommandBuffer, layout *ShaderLayout, data unsafe.Pointer, size uint32) {
	vk.CmdPushConstants(cmd, layout.PipelineLayout(),
		vk.ShaderStageFlags(vk.ShaderStageVertexBit)|vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		0, size, data)
}

func (d *Device) CmdBindVertexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{0})
}

func (d *Device) CmdBindIndexBuffer(cmd vk.CommandBuffer, buffer vk.Buffer) {
	vk.CmdBindIndexBuffer(cmd, buffer, 0, vk.IndexTypeUint32)
}

func (d *Device) CmdDraw(cmd vk.CommandBuffer, indexCount uint32) {
	vk.CmdDrawIndexed(cmd, indexCount, 1, 0, 0, 0)
}

func (d *Device) CmdBeginRenderPass(cmd vk.CommandBuffer, framebuffer *Framebuffer, clear [4]float32) {
	clearValues := framebuffer.clearValues(clear)

	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  framebuffer.RenderPass().Handle,
		Framebuffer: framebuffer.Handle(),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: framebuffer.Width(), Height: framebuffer.Height()},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cmd, &beginInfo, vk.SubpassContentsInline)
}

func (d *Device) CmdEndRenderPass(cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
}

func (d *Device) CmdSetView(cmd vk.CommandBuffer, width, height uint32) {
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{scissor})
}

func (d *Device) CmdSetLineWidth(cmd vk.CommandBuffer, width float32) {
	vk.CmdSetLineWidth(cmd, width)
}

// Logical exposes the raw device handle to sibling wrappers.
func (d *Device) Logical() vk.Device {
	return d.logical
}

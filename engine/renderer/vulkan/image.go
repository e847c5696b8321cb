package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

type AttachmentType int

const (
	AttachmentColor AttachmentType = iota
	AttachmentDepth
)

// Image is a GPU image with its backing memory and sampled view.
type Image struct {
	handle vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	width  uint32
	height uint32
	format vk.Format
	device *Device
}

func (t AttachmentType) format() vk.Format {
	if t == AttachmentDepth {
		return vk.FormatD32Sfloat
	}
	return vk.FormatR8g8b8a8Unorm
}

func (t AttachmentType) usage() vk.ImageUsageFlags {
	if t == AttachmentDepth {
		return vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}
	return vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit)
}

func (t AttachmentType) aspect() vk.ImageAspectFlags {
	if t == AttachmentDepth {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

// NewAttachmentImage creates an image usable both as a render target and as a
// sampled shader input.
func NewAttachmentImage(device *Device, attachmentType AttachmentType, width, height uint32) (*Image, error) {
	return newImage(device, attachmentType.format(), attachmentType.usage(), attachmentType.aspect(), width, height)
}

// NewTextureImage creates a sampled image and uploads RGBA pixels through a
// staging buffer.
func NewTextureImage(device *Device, pixels []uint8, width, height uint32) (*Image, error) {
	if uint32(len(pixels)) < width*height*4 {
		return nil, fmt.Errorf("texture upload needs %d bytes of RGBA pixels, got %d", width*height*4, len(pixels))
	}

	img, err := newImage(device, vk.FormatR8g8b8a8Unorm,
		vk.ImageUsageFlags(vk.ImageUsageSampledBit)|vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit), width, height)
	if err != nil {
		return nil, err
	}

	size := vk.DeviceSize(width * height * 4)
	staging, stagingMemory, err := device.allocateBuffer(size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		img.Destroy()
		return nil, err
	}
	defer device.freeBuffer(staging, stagingMemory)

	if err := device.MapMemory(stagingMemory, size, func(ptr unsafe.Pointer) {
		mapped := unsafe.Slice((*uint8)(ptr), int(size))
		copy(mapped, pixels)
	}); err != nil {
		img.Destroy()
		return nil, err
	}

	err = device.runSingleUse(func(cmd vk.CommandBuffer) {
		img.transitionLayout(cmd, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)

		region := vk.BufferImageCopy{
			BufferOffset:      0,
			BufferRowLength:   0,
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				MipLevel:       0,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
			ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
		}
		vk.CmdCopyBufferToImage(cmd, staging, img.handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})

		img.transitionLayout(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		img.Destroy()
		return nil, err
	}

	return img, nil
}

func newImage(device *Device, format vk.Format, usage vk.ImageUsageFlags, aspect vk.ImageAspectFlags, width, height uint32) (*Image, error) {
	imageCreateInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var handle vk.Image
	if res := vk.CreateImage(device.Logical(), &imageCreateInfo, nil, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create image: %s: %w", VulkanResultString(res, false), core.ErrOutOfDeviceMemory)
		core.LogError(err.Error())
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device.Logical(), handle, &requirements)
	requirements.Deref()

	memoryIndex := device.findMemoryIndex(requirements.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if memoryIndex < 0 {
		vk.DestroyImage(device.Logical(), handle, nil)
		err := fmt.Errorf("no suitable memory type for image: %w", core.ErrOutOfDeviceMemory)
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(device.Logical(), &allocateInfo, nil, &memory); res != vk.Success {
		vk.DestroyImage(device.Logical(), handle, nil)
		err := fmt.Errorf("failed to allocate image memory: %s: %w", VulkanResultString(res, false), core.ErrOutOfDeviceMemory)
		core.LogError(err.Error())
		return nil, err
	}
	if res := vk.BindImageMemory(device.Logical(), handle, memory, 0); res != vk.Success {
		vk.FreeMemory(device.Logical(), memory, nil)
		vk.DestroyImage(device.Logical(), handle, nil)
		err := fmt.Errorf("failed to bind image memory: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}

	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(device.Logical(), &viewCreateInfo, nil, &view); res != vk.Success {
		vk.FreeMemory(device.Logical(), memory, nil)
		vk.DestroyImage(device.Logical(), handle, nil)
		err := fmt.Errorf("failed to create image view: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}

	return &Image{
		handle: handle,
		memory: memory,
		view:   view,
		width:  width,
		height: height,
		format: format,
		device: device,
	}, nil
}

func (i *Image) transitionLayout(cmd vk.CommandBuffer, from, to vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               i.handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	srcStage := vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	dstStage := vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	if from == vk.ImageLayoutTransferDstOptimal {
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		srcStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dstStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	} else {
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
	}

	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (i *Image) View() vk.ImageView {
	return i.view
}

func (i *Image) Width() uint32 {
	return i.width
}

func (i *Image) Height() uint32 {
	return i.height
}

func (i *Image) Destroy() {
	dev := i.device.Logical()
	if i.view != vk.NullImageView {
		vk.DestroyImageView(dev, i.view, nil)
		i.view = vk.NullImageView
	}
	if i.handle != vk.NullImage {
		vk.DestroyImage(dev, i.handle, nil)
		i.handle = vk.NullImage
	}
	if i.memory != vk.NullDeviceMemory {
		vk.FreeMemory(dev, i.memory, nil)
		i.memory = vk.NullDeviceMemory
	}
}
